package identity

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/util/memzero"
)

// backupVersion tags the encrypted backup blob format.
const backupVersion = 1

// Argon2id parameters for the backup key.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
)

// backupBlob is the opaque export carrying everything needed to
// re-derive the key and authenticate the ciphertext.
type backupBlob struct {
	Version int          `json:"v"`
	Salt    domain.Bytes `json:"salt"`
	Nonce   domain.Bytes `json:"nonce"`
	Cipher  domain.Bytes `json:"cipher"`
}

// Export serializes the full identity store, including the signing key
// pair, and seals it under a key derived from password with a fresh
// random salt and nonce.
func (m *Manager) Export(password string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil, ErrNoIdentity
	}

	raw, err := json.Marshal(m.store)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(raw)

	salt, err := crypto.RandomBytes(crypto.SaltBytes)
	if err != nil {
		return nil, err
	}
	nonce, err := crypto.RandomNonce()
	if err != nil {
		return nil, err
	}

	key := deriveBackupKey(password, salt)
	defer memzero.Zero(key)

	cipher, err := crypto.Seal(key, nonce, raw, nil)
	if err != nil {
		return nil, err
	}
	return json.Marshal(backupBlob{
		Version: backupVersion,
		Salt:    salt,
		Nonce:   nonce,
		Cipher:  cipher,
	})
}

// Import restores an identity from an Export blob. A wrong password and
// a corrupted blob are indistinguishable; no partial state is ever
// installed.
func (m *Manager) Import(blob []byte, password string) error {
	var b backupBlob
	if err := json.Unmarshal(blob, &b); err != nil {
		return fmt.Errorf("identity: parsing backup: %w", err)
	}
	if b.Version != backupVersion {
		return fmt.Errorf("%w: %d", ErrBackupVersionMismatch, b.Version)
	}

	key := deriveBackupKey(password, b.Salt)
	defer memzero.Zero(key)

	raw, err := crypto.Open(key, b.Nonce, b.Cipher, nil)
	if err != nil {
		return ErrBackupAuthenticationFailure
	}
	defer memzero.Zero(raw)

	var store domain.IdentityStore
	if err := json.Unmarshal(raw, &store); err != nil {
		return fmt.Errorf("identity: parsing backup payload: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = &store
	return nil
}

func deriveBackupKey(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, crypto.KeyBytes)
}
