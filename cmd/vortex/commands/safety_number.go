package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/identity"
)

func safetyNumberCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "safety-number <bundle-file>",
		Short: "Print the safety number for a peer's bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.LoadIdentity(passphrase); err != nil {
				return err
			}
			var doc bundleDocument
			if err := readJSONFile(args[0], &doc); err != nil {
				return err
			}
			if !identity.VerifyPreKeyBundle(doc.Bundle, doc.SigningKey) {
				return fmt.Errorf("bundle signature verification failed")
			}
			sn, err := wire.Manager.SafetyNumber(doc.Bundle.IdentityKey)
			if err != nil {
				return err
			}
			fmt.Printf("Safety number:\n%s\n", sn)
			return nil
		},
	}
}
