package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate-spk",
		Short: "Replace the active signed pre-key",
		Long: "Replace the active signed pre-key with a fresh one under the next key id.\n" +
			"The previous key is discarded, so redistribute the bundle promptly:\n" +
			"handshakes initiated against the old bundle will fail.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.LoadIdentity(passphrase); err != nil {
				return err
			}
			id, err := wire.Manager.RotateSignedPreKey()
			if err != nil {
				return err
			}
			if err := wire.SaveIdentity(passphrase); err != nil {
				return err
			}
			fmt.Printf("Signed pre-key rotated. New id: %d\n", id)
			return nil
		},
	}
}
