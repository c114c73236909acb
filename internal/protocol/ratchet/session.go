package ratchet

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/x3dh"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/util/memzero"
)

// Role says which side of the X3DH handshake this session took.
type Role int

const (
	// RoleSender initiated the handshake against a peer's bundle.
	RoleSender Role = iota
	// RoleReceiver answered a handshake targeting its own pre-keys.
	RoleReceiver
)

// Event tells the caller what Decrypt did beyond producing plaintext, so
// a DH ratchet step cannot pass unnoticed.
type Event int

const (
	// EventNone: the message advanced the current receiving chain.
	EventNone Event = iota
	// EventRatcheted: the message carried a new ratchet key and a DH
	// ratchet step was performed.
	EventRatcheted
	// EventUsedSkippedKey: an out-of-order message was decrypted with a
	// cached skipped key.
	EventUsedSkippedKey
)

// Session is the Double Ratchet state machine for one peer
// relationship. It has no internal locking; callers must serialize
// Encrypt/Decrypt per session.
type Session struct {
	id    string
	role  Role
	ready bool
	st    state
}

// InitializeSender runs the initiator side of X3DH against a peer's
// pre-key bundle and returns the new session, the ephemeral public key
// to transmit, and whether the bundle's one-time pre-key was consumed
// (so the caller can tell the identity manager to mark it used).
func InitializeSender(local domain.KeyPair, bundle domain.PreKeyBundle) (*Session, domain.X25519Public, bool, error) {
	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return nil, domain.X25519Public{}, false, err
	}
	sk, err := x3dh.InitiatorSecret(local.PrivateKey, ephPriv, bundle.IdentityKey, bundle.SignedPreKey, bundle.OneTimePreKey)
	memzero.Zero(ephPriv[:])
	if err != nil {
		return nil, domain.X25519Public{}, false, err
	}

	dhsPriv, dhsPub, err := crypto.GenerateX25519()
	if err != nil {
		memzero.Zero(sk)
		return nil, domain.X25519Public{}, false, err
	}
	dhr := bundle.SignedPreKey // the peer's signed pre-key is its first ratchet key
	dhOut, err := crypto.DH(dhsPriv, dhr)
	if err != nil {
		memzero.Zero(sk)
		return nil, domain.X25519Public{}, false, err
	}
	rk, cks, hks := kdfRK(sk, dhOut[:])
	memzero.Zero(sk)
	memzero.Zero(dhOut[:])

	s, err := newSession(RoleSender)
	if err != nil {
		return nil, domain.X25519Public{}, false, err
	}
	s.st = state{
		DHs:            domain.KeyPair{PublicKey: dhsPub, PrivateKey: dhsPriv},
		DHr:            &dhr,
		RK:             rk,
		CKs:            cks,
		HKs:            hks,
		Skipped:        make(map[string]skippedKey),
		LocalIdentity:  local.PublicKey,
		RemoteIdentity: bundle.IdentityKey,
	}
	s.ready = true
	return s, ephPub, bundle.OneTimePreKey != nil, nil
}

// InitializeReceiver runs the responder side of X3DH. The signed pre-key
// pair the handshake targeted becomes this session's first ratchet key
// pair; the receiving chain stays unset until the first message arrives
// and triggers a DH ratchet step.
func InitializeReceiver(
	local domain.KeyPair,
	signedPreKey domain.KeyPair,
	oneTime *domain.X25519Private,
	remoteIdentity domain.X25519Public,
	remoteEphemeral domain.X25519Public,
) (*Session, error) {
	sk, err := x3dh.ResponderSecret(local.PrivateKey, signedPreKey.PrivateKey, oneTime, remoteIdentity, remoteEphemeral)
	if err != nil {
		return nil, err
	}

	s, err := newSession(RoleReceiver)
	if err != nil {
		memzero.Zero(sk)
		return nil, err
	}
	s.st = state{
		DHs:            signedPreKey,
		RK:             sk,
		Skipped:        make(map[string]skippedKey),
		LocalIdentity:  local.PublicKey,
		RemoteIdentity: remoteIdentity,
	}
	s.ready = true
	return s, nil
}

func newSession(role Role) (*Session, error) {
	raw, err := crypto.RandomBytes(16)
	if err != nil {
		return nil, err
	}
	return &Session{id: hex.EncodeToString(raw), role: role}, nil
}

// SessionID returns the session's random identifier.
func (s *Session) SessionID() string { return s.id }

// IsReady reports whether the handshake has completed.
func (s *Session) IsReady() bool { return s.ready }

// Role returns which handshake side this session took.
func (s *Session) Role() Role { return s.role }

// Encrypt steps the sending chain once and produces a wire message. The
// header travels in the clear and, encrypted under the sending header
// key (or the message key itself when no header key is set), bound into
// the payload's associated data.
func (s *Session) Encrypt(plaintext []byte) (domain.EncryptedMessage, error) {
	if !s.ready {
		return domain.EncryptedMessage{}, ErrNotInitialized
	}
	if s.st.CKs == nil {
		// The responder has no sending chain until its first received
		// message performs the initial DH ratchet step.
		return domain.EncryptedMessage{}, fmt.Errorf("%w: no sending chain yet", errChainUninitialized)
	}

	mk, next := kdfCK(s.st.CKs)
	memzero.Zero(s.st.CKs)
	s.st.CKs = next

	header := domain.MessageHeader{DH: s.st.DHs.PublicKey, PN: s.st.PN, N: s.st.Ns}
	headerKey := s.st.HKs
	if len(headerKey) == 0 {
		headerKey = mk
	}
	headerNonce, err := crypto.RandomNonce()
	if err != nil {
		memzero.Zero(mk)
		return domain.EncryptedMessage{}, err
	}
	headerBytes := encodeHeader(header)
	headerCipher, err := crypto.Seal(headerKey, headerNonce, headerBytes, nil)
	if err != nil {
		memzero.Zero(mk)
		return domain.EncryptedMessage{}, err
	}

	nonce, err := crypto.RandomNonce()
	if err != nil {
		memzero.Zero(mk)
		return domain.EncryptedMessage{}, err
	}
	ad := associatedData(s.st.LocalIdentity, s.st.RemoteIdentity, headerCipher)
	ciphertext, err := crypto.Seal(mk, nonce, plaintext, ad)
	memzero.Zero(mk)
	if err != nil {
		return domain.EncryptedMessage{}, err
	}

	s.st.Ns++
	return domain.EncryptedMessage{
		Header:       header,
		HeaderCipher: headerCipher,
		HeaderNonce:  headerNonce,
		Ciphertext:   ciphertext,
		Nonce:        nonce,
	}, nil
}

// Decrypt processes a wire message: cached skipped key first, then a DH
// ratchet step if the header carries a new ratchet key, then the normal
// chain step. All mutations are staged on a copy of the state and
// committed only after the AEAD tag verifies, so any error leaves the
// session exactly as it was.
func (s *Session) Decrypt(msg domain.EncryptedMessage) ([]byte, Event, error) {
	if !s.ready {
		return nil, EventNone, ErrNotInitialized
	}

	st := s.st.clone()
	ad := associatedData(st.RemoteIdentity, st.LocalIdentity, msg.HeaderCipher)

	// Out-of-order message whose key was cached before an intervening
	// ratchet.
	if entry, ok := st.Skipped[skippedKeyID(msg.Header.DH, msg.Header.N)]; ok {
		plaintext, err := crypto.Open(entry.MessageKey, msg.Nonce, msg.Ciphertext, ad)
		if err != nil {
			return nil, EventNone, fmt.Errorf("%w: %v", ErrAuthenticationFailure, err)
		}
		memzero.Zero(entry.MessageKey)
		delete(st.Skipped, skippedKeyID(msg.Header.DH, msg.Header.N))
		s.st = st
		return plaintext, EventUsedSkippedKey, nil
	}

	event := EventNone
	if st.DHr == nil || *st.DHr != msg.Header.DH {
		// The sender ratcheted: finish the old receiving chain, then
		// step both directions.
		if err := st.skipMessageKeys(msg.Header.PN); err != nil {
			return nil, EventNone, err
		}
		if err := st.dhRatchet(msg.Header.DH); err != nil {
			return nil, EventNone, err
		}
		event = EventRatcheted
	}

	if err := st.skipMessageKeys(msg.Header.N); err != nil {
		return nil, EventNone, err
	}
	if st.CKr == nil {
		return nil, EventNone, fmt.Errorf("%w: no receiving chain", errChainUninitialized)
	}

	mk, next := kdfCK(st.CKr)
	memzero.Zero(st.CKr)
	st.CKr = next

	plaintext, err := crypto.Open(mk, msg.Nonce, msg.Ciphertext, ad)
	memzero.Zero(mk)
	if err != nil {
		return nil, EventNone, fmt.Errorf("%w: %v", ErrAuthenticationFailure, err)
	}
	st.Nr++
	s.st = st
	return plaintext, event, nil
}

// CleanupSkippedKeys drops cached skipped message keys older than
// maxAge, bounding growth when a peer's earlier messages never arrive.
// It returns how many entries were removed.
func (s *Session) CleanupSkippedKeys(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge).UnixMilli()
	removed := 0
	for k, v := range s.st.Skipped {
		if v.Timestamp < cutoff {
			memzero.Zero(v.MessageKey)
			delete(s.st.Skipped, k)
			removed++
		}
	}
	return removed
}

// skipMessageKeys advances the receiving chain up to (not including)
// until, caching each derived message key. A gap larger than MaxSkip is
// rejected before any derivation work.
func (st *state) skipMessageKeys(until uint32) error {
	if until > st.Nr && until-st.Nr > MaxSkip {
		return ErrTooManySkippedMessages
	}
	if st.CKr == nil || st.DHr == nil {
		return nil
	}
	for st.Nr < until {
		mk, next := kdfCK(st.CKr)
		memzero.Zero(st.CKr)
		st.CKr = next
		if len(st.Skipped) >= maxSkippedKeys {
			st.evictOldestSkipped()
		}
		st.Skipped[skippedKeyID(*st.DHr, st.Nr)] = skippedKey{
			MessageKey: mk,
			Timestamp:  time.Now().UnixMilli(),
		}
		st.Nr++
	}
	return nil
}

func (st *state) evictOldestSkipped() {
	var oldestKey string
	var oldestAt int64
	for k, v := range st.Skipped {
		if oldestKey == "" || v.Timestamp < oldestAt {
			oldestKey, oldestAt = k, v.Timestamp
		}
	}
	if oldestKey != "" {
		memzero.Zero(st.Skipped[oldestKey].MessageKey)
		delete(st.Skipped, oldestKey)
	}
}

// dhRatchet performs a full DH ratchet step: derive the new receiving
// chain from the peer's fresh ratchet key, then generate our own fresh
// pair and derive the new sending chain.
func (st *state) dhRatchet(remote domain.X25519Public) error {
	st.PN = st.Ns
	st.Ns, st.Nr = 0, 0
	dhr := remote
	st.DHr = &dhr

	dhOut, err := crypto.DH(st.DHs.PrivateKey, remote)
	if err != nil {
		return err
	}
	rk, ckr, hkr := kdfRK(st.RK, dhOut[:])
	memzero.Zero(dhOut[:])

	newPriv, newPub, err := crypto.GenerateX25519()
	if err != nil {
		memzero.Zero(rk)
		memzero.Zero(ckr)
		return err
	}
	dhOut2, err := crypto.DH(newPriv, remote)
	if err != nil {
		memzero.Zero(rk)
		memzero.Zero(ckr)
		return err
	}
	rk2, cks, hks := kdfRK(rk, dhOut2[:])
	memzero.Zero(dhOut2[:])
	memzero.Zero(rk)

	memzero.Zero(st.RK)
	st.RK = rk2
	st.CKr, st.HKr = ckr, hkr
	st.CKs, st.HKs = cks, hks
	st.DHs = domain.KeyPair{PublicKey: newPub, PrivateKey: newPriv}
	return nil
}

// associatedData binds both identities and the encrypted header copy to
// the payload. The sender lists its own identity first; the receiver
// mirrors the order.
func associatedData(first, second domain.X25519Public, headerCipher []byte) []byte {
	ad := make([]byte, 0, 64+len(headerCipher))
	ad = append(ad, first[:]...)
	ad = append(ad, second[:]...)
	ad = append(ad, headerCipher...)
	return ad
}
