package domain

// SignedPreKey is a medium-term X25519 pair whose public half is signed
// by the identity's Ed25519 key. Exactly one is active at a time.
type SignedPreKey struct {
	ID         uint32        `json:"id"`
	PublicKey  X25519Public  `json:"publicKey"`
	PrivateKey X25519Private `json:"privateKey"`
	Signature  Bytes         `json:"signature"`
	CreatedAt  int64         `json:"createdAt"`
}

// OneTimePreKey is a single-use X25519 pair. Once an X3DH handshake
// consumes it, Used flips to true and the key is excluded from future
// bundles.
type OneTimePreKey struct {
	ID         uint32        `json:"id"`
	PublicKey  X25519Public  `json:"publicKey"`
	PrivateKey X25519Private `json:"privateKey"`
	Used       bool          `json:"used"`
}

// PreKeyBundle is the snapshot of a party's public handshake material,
// sufficient for a peer to run X3DH without interaction. Immutable once
// issued; the one-time pre-key it references is single-use.
type PreKeyBundle struct {
	IdentityKey     X25519Public  `json:"identityKey"`
	SignedPreKey    X25519Public  `json:"signedPreKey"`
	SignedPreKeySig Bytes         `json:"signedPreKeySig"`
	OneTimePreKey   *X25519Public `json:"oneTimePreKey,omitempty"`
	RegistrationID  uint32        `json:"registrationId"`
}
