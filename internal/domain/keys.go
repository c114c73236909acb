package domain

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// wireEncoding is the byte encoding used for every JSON wire field.
var wireEncoding = base64.RawURLEncoding

// Bytes is a []byte that marshals to URL-safe unpadded base64.
type Bytes []byte

// MarshalJSON implements json.Marshaler.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEncoding.EncodeToString(b))
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := wireEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	*b = raw
	return nil
}

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// MarshalJSON implements json.Marshaler.
func (p X25519Public) MarshalJSON() ([]byte, error) { return marshalFixed(p[:]) }

// UnmarshalJSON implements json.Unmarshaler.
func (p *X25519Public) UnmarshalJSON(data []byte) error { return unmarshalFixed(data, p[:]) }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// MarshalJSON implements json.Marshaler.
func (k X25519Private) MarshalJSON() ([]byte, error) { return marshalFixed(k[:]) }

// UnmarshalJSON implements json.Unmarshaler.
func (k *X25519Private) UnmarshalJSON(data []byte) error { return unmarshalFixed(data, k[:]) }

// Ed25519Public is an Ed25519 signing public key.
type Ed25519Public [32]byte

// Slice returns the key as a []byte.
func (p Ed25519Public) Slice() []byte { return p[:] }

// MarshalJSON implements json.Marshaler.
func (p Ed25519Public) MarshalJSON() ([]byte, error) { return marshalFixed(p[:]) }

// UnmarshalJSON implements json.Unmarshaler.
func (p *Ed25519Public) UnmarshalJSON(data []byte) error { return unmarshalFixed(data, p[:]) }

// Ed25519Private is an Ed25519 signing private key (seed plus public half).
type Ed25519Private [64]byte

// Slice returns the key as a []byte.
func (k Ed25519Private) Slice() []byte { return k[:] }

// MarshalJSON implements json.Marshaler.
func (k Ed25519Private) MarshalJSON() ([]byte, error) { return marshalFixed(k[:]) }

// UnmarshalJSON implements json.Unmarshaler.
func (k *Ed25519Private) UnmarshalJSON(data []byte) error { return unmarshalFixed(data, k[:]) }

// KeyPair bundles the two halves of an X25519 key pair. The private half
// must never leave the component that generated it except via serialized
// export.
type KeyPair struct {
	PublicKey  X25519Public  `json:"publicKey"`
	PrivateKey X25519Private `json:"privateKey"`
}

func marshalFixed(b []byte) ([]byte, error) {
	return json.Marshal(wireEncoding.EncodeToString(b))
}

func unmarshalFixed(data []byte, dst []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	raw, err := wireEncoding.DecodeString(s)
	if err != nil {
		return err
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("key length %d, want %d", len(raw), len(dst))
	}
	copy(dst, raw)
	return nil
}
