package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/ratchet"
)

func cleanupCmd() *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup <peer>",
		Short: "Drop stale cached skipped message keys for a peer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			peer := args[0]

			sess, err := loadSession(peer)
			if err != nil {
				return err
			}
			removed := sess.CleanupSkippedKeys(maxAge)
			if err := saveSession(peer, sess); err != nil {
				return err
			}
			fmt.Printf("Removed %d skipped key(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", ratchet.DefaultSkippedKeyMaxAge, "drop cached keys older than this")
	return cmd
}
