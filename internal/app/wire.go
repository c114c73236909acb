package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/identity"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/store"
)

// ErrNoIdentityOnDisk is returned when a command needs an identity and
// no backup has been written yet.
var ErrNoIdentityOnDisk = errors.New("app: no identity found; run init first")

// Config holds runtime wiring options.
type Config struct {
	Home string // state directory, e.g. $HOME/.vortex
}

// Wire bundles the manager and stores for the CLI.
type Wire struct {
	Manager  *identity.Manager
	Backups  *store.BackupFileStore
	Sessions *store.SessionFileStore
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return nil, err
	}
	return &Wire{
		Manager:  identity.NewManager(),
		Backups:  store.NewBackupFileStore(cfg.Home),
		Sessions: store.NewSessionFileStore(cfg.Home),
	}, nil
}

// LoadIdentity restores the manager from the on-disk backup blob.
func (w *Wire) LoadIdentity(password string) error {
	blob, ok, err := w.Backups.Load()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoIdentityOnDisk
	}
	return w.Manager.Import(blob, password)
}

// SaveIdentity exports the manager state and writes the backup blob.
// Called after every mutation the caller considers durable (pre-key
// consumption, rotation).
func (w *Wire) SaveIdentity(password string) error {
	blob, err := w.Manager.Export(password)
	if err != nil {
		return fmt.Errorf("app: exporting identity: %w", err)
	}
	return w.Backups.Save(blob)
}
