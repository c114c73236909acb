package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/ratchet"
)

func recvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recv <peer> <message-file>",
		Short: "Decrypt a message from a peer",
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
			var msg domain.EncryptedMessage
			if err := readJSONFile(args[1], &msg); err != nil {
				return err
			}

			plaintext, event, err := sess.Decrypt(msg)
			if err != nil {
				return err
			}
			if err := saveSession(peer, sess); err != nil {
				return err
			}

			switch event {
			case ratchet.EventRatcheted:
				fmt.Fprintln(cmd.ErrOrStderr(), "(ratchet advanced)")
			case ratchet.EventUsedSkippedKey:
				fmt.Fprintln(cmd.ErrOrStderr(), "(out-of-order message, cached key used)")
			}
			fmt.Println(string(plaintext))
			return nil
		},
	}
}
