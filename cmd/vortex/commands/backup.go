package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func exportIdentityCmd() *cobra.Command {
	var backupPass string
	cmd := &cobra.Command{
		Use:   "export-identity <out-file>",
		Short: "Write an encrypted identity backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			if err := wire.LoadIdentity(passphrase); err != nil {
				return err
			}
			pass := backupPass
			if pass == "" {
				pass = passphrase
			}
			blob, err := wire.Manager.Export(pass)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], blob, 0o600); err != nil {
				return err
			}
			fmt.Printf("Backup written to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&backupPass, "backup-passphrase", "", "passphrase for the backup (defaults to -p)")
	return cmd
}

func importIdentityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-identity <backup-file>",
		Short: "Restore an identity from an encrypted backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := wire.Manager.Import(blob, passphrase); err != nil {
				return err
			}
			if err := wire.SaveIdentity(passphrase); err != nil {
				return err
			}
			fp, err := wire.Manager.Fingerprint()
			if err != nil {
				return err
			}
			fmt.Printf("Identity restored.\nFingerprint: %s\n", fp)
			return nil
		},
	}
}
