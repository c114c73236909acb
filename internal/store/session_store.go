package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SessionFileStore persists per-peer session exports, each sealed in a
// passphrase envelope, one file per peer id.
type SessionFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewSessionFileStore returns a SessionFileStore rooted at dir.
func NewSessionFileStore(dir string) *SessionFileStore {
	return &SessionFileStore{dir: dir}
}

// Save seals blob under passphrase and writes it for peer.
func (s *SessionFileStore) Save(passphrase, peer string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, err := seal(passphrase, blob)
	if err != nil {
		return err
	}
	return writeFile(s.path(peer), sealed, 0o600)
}

// Load returns the decrypted session export for peer. The second return
// is false when no session is stored.
func (s *SessionFileStore) Load(passphrase, peer string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sealed, ok, err := readFile(s.path(peer))
	if err != nil || !ok {
		return nil, false, err
	}
	blob, err := open(passphrase, sealed)
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Delete removes the stored session for peer.
func (s *SessionFileStore) Delete(peer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(peer))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *SessionFileStore) path(peer string) string {
	// Peer ids come from user input; keep them path-safe.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, peer)
	return filepath.Join(s.dir, fmt.Sprintf("session-%s.enc", safe))
}
