package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/identity"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/ratchet"
)

// handshake-init runs sender-side X3DH against a peer's bundle, stores
// the new session, and emits the handshake message the peer needs to
// initialize its side.
func handshakeInitCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "handshake-init <peer> <bundle-file>",
		Short: "Establish a session against a peer's pre-key bundle",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.LoadIdentity(passphrase); err != nil {
				return err
			}
			peer := args[0]

			var doc bundleDocument
			if err := readJSONFile(args[1], &doc); err != nil {
				return err
			}
			if !identity.VerifyPreKeyBundle(doc.Bundle, doc.SigningKey) {
				return fmt.Errorf("bundle signature verification failed; refusing handshake")
			}

			local, err := wire.Manager.IdentityKeyPair()
			if err != nil {
				return err
			}
			sess, eph, usedOneTime, err := ratchet.InitializeSender(local, doc.Bundle)
			if err != nil {
				return err
			}

			blob, err := sess.Export()
			if err != nil {
				return err
			}
			if err := wire.Sessions.Save(passphrase, peer, blob); err != nil {
				return err
			}

			msg := domain.HandshakeMessage{
				IdentityKey:  local.PublicKey,
				EphemeralKey: eph,
			}
			if usedOneTime {
				msg.OneTimePreKey = doc.Bundle.OneTimePreKey
			}
			if err := writeJSONOutput(out, msg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Session %s established with %s\n", sess.SessionID(), peer)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the handshake message to a file instead of stdout")
	return cmd
}

// handshake-accept runs receiver-side X3DH from a handshake message,
// marks the consumed one-time pre-key used, and stores the new session.
func handshakeAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handshake-accept <peer> <handshake-file>",
		Short: "Accept a handshake targeting our pre-keys",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.LoadIdentity(passphrase); err != nil {
				return err
			}
			peer := args[0]

			var msg domain.HandshakeMessage
			if err := readJSONFile(args[1], &msg); err != nil {
				return err
			}

			local, err := wire.Manager.IdentityKeyPair()
			if err != nil {
				return err
			}
			spk, err := wire.Manager.SignedPreKeyPair()
			if err != nil {
				return err
			}

			var oneTimePriv *domain.X25519Private
			if msg.OneTimePreKey != nil {
				otk, ok := wire.Manager.OneTimePreKeyByPublic(*msg.OneTimePreKey)
				if !ok {
					return fmt.Errorf("handshake references an unknown one-time pre-key")
				}
				priv := otk.PrivateKey
				oneTimePriv = &priv
			}

			sess, err := ratchet.InitializeReceiver(
				local,
				domain.KeyPair{PublicKey: spk.PublicKey, PrivateKey: spk.PrivateKey},
				oneTimePriv,
				msg.IdentityKey,
				msg.EphemeralKey,
			)
			if err != nil {
				return err
			}

			if msg.OneTimePreKey != nil {
				if err := wire.Manager.MarkOneTimePreKeyUsed(*msg.OneTimePreKey); err != nil {
					return err
				}
				if err := wire.SaveIdentity(passphrase); err != nil {
					return err
				}
			}

			blob, err := sess.Export()
			if err != nil {
				return err
			}
			if err := wire.Sessions.Save(passphrase, peer, blob); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Session %s established with %s\n", sess.SessionID(), peer)
			return nil
		},
	}
}
