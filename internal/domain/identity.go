package domain

// IdentityStore holds the local party's long-term key material and the
// current handshake pool. Invariants: exactly one active SignedPreKey;
// one-time pre-key ids are strictly increasing; used one-time pre-keys
// never reappear in bundles.
type IdentityStore struct {
	IdentityKeyPair KeyPair         `json:"identityKeyPair"`
	SigningPublic   Ed25519Public   `json:"signingPublicKey"`
	SigningPrivate  Ed25519Private  `json:"signingPrivateKey"`
	RegistrationID  uint32          `json:"registrationId"`
	SignedPreKey    SignedPreKey    `json:"signedPreKey"`
	OneTimePreKeys  []OneTimePreKey `json:"oneTimePreKeys"`
	CreatedAt       int64           `json:"createdAt"`
	Fingerprint     string          `json:"fingerprint"`
}
