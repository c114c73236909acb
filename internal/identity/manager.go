package identity

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
)

const (
	// registrationIDMax bounds the random registration id, [1, 16380].
	registrationIDMax = 16380

	// initialOneTimePreKeys is the pool size at identity creation.
	initialOneTimePreKeys = 100

	// lowWaterMark triggers pool replenishment when the unused count
	// drops below it.
	lowWaterMark = 20

	// replenishBatch is how many one-time pre-keys a replenishment adds.
	replenishBatch = 50
)

// Manager holds the local identity and pre-key pool. Plain value with
// explicit lifetime: construct one per identity, never a process-wide
// singleton.
type Manager struct {
	mu    sync.Mutex
	store *domain.IdentityStore
}

// NewManager returns an empty manager; call Generate or Import next.
func NewManager() *Manager { return &Manager{} }

// Generate creates a fresh identity: X25519 identity pair, Ed25519
// signing pair, random registration id, signed pre-key id 1 and a pool
// of one-time pre-keys ids 1..100. Returns the identity fingerprint.
func (m *Manager) Generate() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idPriv, idPub, err := crypto.GenerateX25519()
	if err != nil {
		return "", err
	}
	signPriv, signPub, err := crypto.GenerateEd25519()
	if err != nil {
		return "", err
	}
	regID, err := randomRegistrationID()
	if err != nil {
		return "", err
	}

	store := &domain.IdentityStore{
		IdentityKeyPair: domain.KeyPair{PublicKey: idPub, PrivateKey: idPriv},
		SigningPublic:   signPub,
		SigningPrivate:  signPriv,
		RegistrationID:  regID,
		CreatedAt:       time.Now().UnixMilli(),
		Fingerprint:     crypto.Fingerprint(idPub.Slice()),
	}

	spk, err := generateSignedPreKey(signPriv, 1)
	if err != nil {
		return "", err
	}
	store.SignedPreKey = spk

	pool, err := generateOneTimePreKeys(initialOneTimePreKeys, 1)
	if err != nil {
		return "", err
	}
	store.OneTimePreKeys = pool

	m.store = store
	return store.Fingerprint, nil
}

// IdentityKeyPair returns the long-term X25519 pair.
func (m *Manager) IdentityKeyPair() (domain.KeyPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return domain.KeyPair{}, ErrNoIdentity
	}
	return m.store.IdentityKeyPair, nil
}

// SigningPublicKey returns the Ed25519 public key peers verify bundle
// signatures with.
func (m *Manager) SigningPublicKey() (domain.Ed25519Public, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return domain.Ed25519Public{}, ErrNoIdentity
	}
	return m.store.SigningPublic, nil
}

// SignedPreKeyPair returns the active signed pre-key with its private
// half, as needed to answer a handshake targeting it.
func (m *Manager) SignedPreKeyPair() (domain.SignedPreKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return domain.SignedPreKey{}, ErrNoIdentity
	}
	return m.store.SignedPreKey, nil
}

// OneTimePreKeyByPublic finds the pre-key pair for pub, used or not.
func (m *Manager) OneTimePreKeyByPublic(pub domain.X25519Public) (domain.OneTimePreKey, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return domain.OneTimePreKey{}, false
	}
	for _, k := range m.store.OneTimePreKeys {
		if crypto.EqualKeys(k.PublicKey.Slice(), pub.Slice()) {
			return k, true
		}
	}
	return domain.OneTimePreKey{}, false
}

// RotateSignedPreKey replaces the active signed pre-key with a fresh one
// under the next key id and returns the new id. The old key is
// discarded immediately; a handshake initiated against the previous
// bundle will fail. Distributing the new bundle is the caller's job.
func (m *Manager) RotateSignedPreKey() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return 0, ErrNoIdentity
	}
	spk, err := generateSignedPreKey(m.store.SigningPrivate, m.store.SignedPreKey.ID+1)
	if err != nil {
		return 0, err
	}
	m.store.SignedPreKey = spk
	return spk.ID, nil
}

// PreKeyBundle snapshots the public handshake material: identity key,
// active signed pre-key with signature, the first unused one-time
// pre-key if any remain, and the registration id. Nil when no identity
// exists.
func (m *Manager) PreKeyBundle() *domain.PreKeyBundle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return nil
	}
	bundle := &domain.PreKeyBundle{
		IdentityKey:     m.store.IdentityKeyPair.PublicKey,
		SignedPreKey:    m.store.SignedPreKey.PublicKey,
		SignedPreKeySig: domain.Bytes(m.store.SignedPreKey.Signature),
		RegistrationID:  m.store.RegistrationID,
	}
	for _, k := range m.store.OneTimePreKeys {
		if !k.Used {
			pub := k.PublicKey
			bundle.OneTimePreKey = &pub
			break
		}
	}
	return bundle
}

// MarkOneTimePreKeyUsed flags the pre-key matching pub as consumed and
// replenishes the pool when fewer than lowWaterMark unused keys remain,
// continuing ids from the current maximum.
func (m *Manager) MarkOneTimePreKeyUsed(pub domain.X25519Public) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return ErrNoIdentity
	}

	for i := range m.store.OneTimePreKeys {
		if crypto.EqualKeys(m.store.OneTimePreKeys[i].PublicKey.Slice(), pub.Slice()) {
			m.store.OneTimePreKeys[i].Used = true
			break
		}
	}

	unused := 0
	var maxID uint32
	for _, k := range m.store.OneTimePreKeys {
		if !k.Used {
			unused++
		}
		if k.ID > maxID {
			maxID = k.ID
		}
	}
	if unused >= lowWaterMark {
		return nil
	}
	batch, err := generateOneTimePreKeys(replenishBatch, maxID+1)
	if err != nil {
		return err
	}
	m.store.OneTimePreKeys = append(m.store.OneTimePreKeys, batch...)
	return nil
}

// UnusedOneTimePreKeyCount reports how many pool keys remain issuable.
func (m *Manager) UnusedOneTimePreKeyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return 0
	}
	n := 0
	for _, k := range m.store.OneTimePreKeys {
		if !k.Used {
			n++
		}
	}
	return n
}

// Fingerprint returns the identity fingerprint.
func (m *Manager) Fingerprint() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return "", ErrNoIdentity
	}
	return m.store.Fingerprint, nil
}

// RegistrationID returns the local registration id.
func (m *Manager) RegistrationID() (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return 0, ErrNoIdentity
	}
	return m.store.RegistrationID, nil
}

// SafetyNumber computes the number both peers compare out of band.
// Symmetric: A computing about B equals B computing about A.
func (m *Manager) SafetyNumber(theirIdentityKey domain.X25519Public) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.store == nil {
		return "", ErrNoIdentity
	}
	return crypto.SafetyNumber(m.store.IdentityKeyPair.PublicKey.Slice(), theirIdentityKey.Slice()), nil
}

// VerifyPreKeyBundle checks the Ed25519 signature over the signed
// pre-key bytes. Malformed input yields false, never a panic.
func VerifyPreKeyBundle(bundle domain.PreKeyBundle, signingKey domain.Ed25519Public) bool {
	return crypto.VerifyEd25519(signingKey, bundle.SignedPreKey.Slice(), bundle.SignedPreKeySig)
}

func generateSignedPreKey(signPriv domain.Ed25519Private, id uint32) (domain.SignedPreKey, error) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.SignedPreKey{}, err
	}
	return domain.SignedPreKey{
		ID:         id,
		PublicKey:  pub,
		PrivateKey: priv,
		Signature:  crypto.SignEd25519(signPriv, pub.Slice()),
		CreatedAt:  time.Now().UnixMilli(),
	}, nil
}

func generateOneTimePreKeys(count int, startID uint32) ([]domain.OneTimePreKey, error) {
	out := make([]domain.OneTimePreKey, 0, count)
	for i := 0; i < count; i++ {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return nil, err
		}
		out = append(out, domain.OneTimePreKey{
			ID:         startID + uint32(i),
			PublicKey:  pub,
			PrivateKey: priv,
		})
	}
	return out, nil
}

func randomRegistrationID() (uint32, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:])%registrationIDMax + 1, nil
}
