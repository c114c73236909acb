package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// bundle issues the public pre-key bundle a peer needs to initiate a
// handshake. Issuing does not consume the one-time pre-key; that
// happens when a handshake actually targets it.
func bundleCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Write the public pre-key bundle for distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.LoadIdentity(passphrase); err != nil {
				return err
			}
			bundle := wire.Manager.PreKeyBundle()
			if bundle == nil {
				return fmt.Errorf("no identity; run init first")
			}
			signing, err := wire.Manager.SigningPublicKey()
			if err != nil {
				return err
			}
			return writeJSONOutput(out, bundleDocument{Bundle: *bundle, SigningKey: signing})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the bundle document to a file instead of stdout")
	return cmd
}
