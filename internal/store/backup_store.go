package store

import (
	"path/filepath"
	"sync"
)

const backupFilename = "identity.backup"

// BackupFileStore persists the identity backup blob. The blob is
// already sealed by the identity manager; this store treats it as
// opaque bytes.
type BackupFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewBackupFileStore returns a BackupFileStore rooted at dir.
func NewBackupFileStore(dir string) *BackupFileStore {
	return &BackupFileStore{dir: dir}
}

// Save writes the backup blob.
func (s *BackupFileStore) Save(blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFile(filepath.Join(s.dir, backupFilename), blob, 0o600)
}

// Load reads the backup blob; the second return is false when none
// exists.
func (s *BackupFileStore) Load() ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return readFile(filepath.Join(s.dir, backupFilename))
}
