package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/app"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
)

var (
	home       string
	passphrase string
	wire       *app.Wire
)

// bundleDocument is the file exchanged out of band so a peer can both
// run X3DH against the bundle and verify its signature.
type bundleDocument struct {
	Bundle     domain.PreKeyBundle  `json:"bundle"`
	SigningKey domain.Ed25519Public `json:"signingKey"`
}

// Execute runs the CLI.
func Execute() error {
	root := &cobra.Command{
		Use:   "vortex",
		Short: "End-to-end encrypted messaging engine (X3DH + Double Ratchet)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".vortex")
			}
			var err error
			wire, err = app.NewWire(app.Config{Home: home})
			return err
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "state dir (default ~/.vortex)")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase protecting local state")

	root.AddCommand(
		initCmd(),
		fingerprintCmd(),
		bundleCmd(),
		rotateCmd(),
		safetyNumberCmd(),
		exportIdentityCmd(),
		importIdentityCmd(),
		handshakeInitCmd(),
		handshakeAcceptCmd(),
		sendCmd(),
		recvCmd(),
		cleanupCmd(),
	)
	return root.Execute()
}

func requirePassphrase() error {
	if passphrase == "" {
		return fmt.Errorf("passphrase required (-p)")
	}
	return nil
}

func readJSONFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func writeJSONOutput(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(b))
		return nil
	}
	return os.WriteFile(path, b, 0o600)
}
