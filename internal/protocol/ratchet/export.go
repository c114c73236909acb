package ratchet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
)

// exportVersion tags the session export format.
const exportVersion = 1

// skippedEntryExport is one cached message key on the wire.
type skippedEntryExport struct {
	MessageKey domain.Bytes `json:"messageKey"`
	Timestamp  int64        `json:"timestamp"`
}

// skippedPairExport flattens one MKSKIPPED entry into a [key, entry]
// pair.
type skippedPairExport struct {
	Key   domain.Bytes
	Entry skippedEntryExport
}

// MarshalJSON implements json.Marshaler.
func (p skippedPairExport) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Key, p.Entry})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *skippedPairExport) UnmarshalJSON(data []byte) error {
	var raw [2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &p.Key); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &p.Entry)
}

type sessionExport struct {
	Version        int                  `json:"version"`
	SessionID      string               `json:"sessionId"`
	Role           Role                 `json:"role"`
	DHsPublic      domain.X25519Public  `json:"dhsPublic"`
	DHsPrivate     domain.X25519Private `json:"dhsPrivate"`
	DHr            *domain.X25519Public `json:"dhr,omitempty"`
	RK             domain.Bytes         `json:"rk"`
	CKs            domain.Bytes         `json:"cks,omitempty"`
	CKr            domain.Bytes         `json:"ckr,omitempty"`
	HKs            domain.Bytes         `json:"hks,omitempty"`
	HKr            domain.Bytes         `json:"hkr,omitempty"`
	Ns             uint32               `json:"ns"`
	Nr             uint32               `json:"nr"`
	PN             uint32               `json:"pn"`
	MKSkipped      []skippedPairExport  `json:"mkSkipped"`
	LocalIdentity  domain.X25519Public  `json:"localIdentity"`
	RemoteIdentity domain.X25519Public  `json:"remoteIdentity"`
}

// Export serializes the full session state to a versioned JSON document.
// This is the only sanctioned way session state leaves the core; the
// caller owns encrypting and persisting the blob.
func (s *Session) Export() ([]byte, error) {
	if !s.ready {
		return nil, ErrNotInitialized
	}
	exp := sessionExport{
		Version:        exportVersion,
		SessionID:      s.id,
		Role:           s.role,
		DHsPublic:      s.st.DHs.PublicKey,
		DHsPrivate:     s.st.DHs.PrivateKey,
		DHr:            s.st.DHr,
		RK:             domain.Bytes(s.st.RK),
		CKs:            domain.Bytes(s.st.CKs),
		CKr:            domain.Bytes(s.st.CKr),
		HKs:            domain.Bytes(s.st.HKs),
		HKr:            domain.Bytes(s.st.HKr),
		Ns:             s.st.Ns,
		Nr:             s.st.Nr,
		PN:             s.st.PN,
		MKSkipped:      make([]skippedPairExport, 0, len(s.st.Skipped)),
		LocalIdentity:  s.st.LocalIdentity,
		RemoteIdentity: s.st.RemoteIdentity,
	}
	for k, v := range s.st.Skipped {
		exp.MKSkipped = append(exp.MKSkipped, skippedPairExport{
			Key: domain.Bytes(k),
			Entry: skippedEntryExport{
				MessageKey: domain.Bytes(v.MessageKey),
				Timestamp:  v.Timestamp,
			},
		})
	}
	// Deterministic output: map iteration order must not leak into the
	// blob.
	sort.Slice(exp.MKSkipped, func(i, j int) bool {
		return bytes.Compare(exp.MKSkipped[i].Key, exp.MKSkipped[j].Key) < 0
	})
	return json.Marshal(exp)
}

// Import reconstructs a session from an Export blob and marks it ready.
func Import(blob []byte) (*Session, error) {
	var exp sessionExport
	if err := json.Unmarshal(blob, &exp); err != nil {
		return nil, fmt.Errorf("ratchet: parsing session export: %w", err)
	}
	if exp.Version != exportVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedExportVersion, exp.Version)
	}

	s := &Session{
		id:    exp.SessionID,
		role:  exp.Role,
		ready: true,
		st: state{
			DHs:            domain.KeyPair{PublicKey: exp.DHsPublic, PrivateKey: exp.DHsPrivate},
			DHr:            exp.DHr,
			RK:             []byte(exp.RK),
			CKs:            []byte(exp.CKs),
			CKr:            []byte(exp.CKr),
			HKs:            []byte(exp.HKs),
			HKr:            []byte(exp.HKr),
			Ns:             exp.Ns,
			Nr:             exp.Nr,
			PN:             exp.PN,
			Skipped:        make(map[string]skippedKey, len(exp.MKSkipped)),
			LocalIdentity:  exp.LocalIdentity,
			RemoteIdentity: exp.RemoteIdentity,
		},
	}
	for _, p := range exp.MKSkipped {
		s.st.Skipped[string(p.Key)] = skippedKey{
			MessageKey: []byte(p.Entry.MessageKey),
			Timestamp:  p.Entry.Timestamp,
		}
	}
	return s, nil
}
