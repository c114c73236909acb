package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/ratchet"
)

func sendCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Encrypt a message for a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			peer := args[0]

			sess, err := loadSession(peer)
			if err != nil {
				return err
			}
			msg, err := sess.Encrypt([]byte(args[1]))
			if err != nil {
				return err
			}
			// Persist the advanced ratchet state before emitting the
			// ciphertext; replaying an old state would reuse keys.
			if err := saveSession(peer, sess); err != nil {
				return err
			}
			return writeJSONOutput(out, msg)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the encrypted message to a file instead of stdout")
	return cmd
}

func loadSession(peer string) (*ratchet.Session, error) {
	blob, ok, err := wire.Sessions.Load(passphrase, peer)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no session with %q; run handshake-init or handshake-accept first", peer)
	}
	return ratchet.Import(blob)
}

func saveSession(peer string, sess *ratchet.Session) error {
	blob, err := sess.Export()
	if err != nil {
		return err
	}
	return wire.Sessions.Save(passphrase, peer, blob)
}
