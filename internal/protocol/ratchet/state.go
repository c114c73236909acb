package ratchet

import (
	"encoding/binary"
	"time"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
)

const (
	// MaxSkip bounds how many receive-chain steps a single header may
	// force. Anything beyond it is rejected outright.
	MaxSkip = 1000

	// maxSkippedKeys caps the cached skipped-key map; the oldest entry
	// is evicted when the cap is hit.
	maxSkippedKeys = 2000

	// DefaultSkippedKeyMaxAge is the default retention for cached
	// skipped message keys.
	DefaultSkippedKeyMaxAge = 7 * 24 * time.Hour
)

// skippedKey is a derived-but-unconsumed message key, cached so an
// out-of-order message can still be decrypted after the chain moved past
// it.
type skippedKey struct {
	MessageKey []byte
	Timestamp  int64 // unix milliseconds
}

// state is the mutable ratchet state for one peer relationship.
type state struct {
	DHs domain.KeyPair       // our current ratchet pair, always present
	DHr *domain.X25519Public // peer's current ratchet key, nil until first receive

	RK  []byte // root key
	CKs []byte // sending chain key, nil until the sending chain starts
	CKr []byte // receiving chain key, nil until the receiving chain starts
	HKs []byte // sending header key
	HKr []byte // receiving header key

	Ns uint32 // messages sent in the current sending chain
	Nr uint32 // messages received in the current receiving chain
	PN uint32 // length of the previous sending chain

	Skipped map[string]skippedKey

	LocalIdentity  domain.X25519Public
	RemoteIdentity domain.X25519Public
}

// clone returns a deep copy. Decrypt mutates the copy and commits it
// only after the AEAD tag verifies.
func (st *state) clone() state {
	out := state{
		DHs:            st.DHs,
		RK:             append([]byte(nil), st.RK...),
		CKs:            cloneBytes(st.CKs),
		CKr:            cloneBytes(st.CKr),
		HKs:            cloneBytes(st.HKs),
		HKr:            cloneBytes(st.HKr),
		Ns:             st.Ns,
		Nr:             st.Nr,
		PN:             st.PN,
		Skipped:        make(map[string]skippedKey, len(st.Skipped)),
		LocalIdentity:  st.LocalIdentity,
		RemoteIdentity: st.RemoteIdentity,
	}
	if st.DHr != nil {
		dhr := *st.DHr
		out.DHr = &dhr
	}
	for k, v := range st.Skipped {
		out.Skipped[k] = skippedKey{
			MessageKey: append([]byte(nil), v.MessageKey...),
			Timestamp:  v.Timestamp,
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// skippedKeyID indexes the skipped map by sender ratchet key and message
// number.
func skippedKeyID(dh domain.X25519Public, n uint32) string {
	b := make([]byte, 36)
	copy(b, dh[:])
	binary.BigEndian.PutUint32(b[32:], n)
	return string(b)
}

// encodeHeader serializes a header for header encryption: 32-byte
// ratchet key followed by big-endian pn and n.
func encodeHeader(h domain.MessageHeader) []byte {
	out := make([]byte, 40)
	copy(out, h.DH[:])
	binary.BigEndian.PutUint32(out[32:36], h.PN)
	binary.BigEndian.PutUint32(out[36:40], h.N)
	return out
}
