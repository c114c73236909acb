package domain

// MessageHeader accompanies every ratchet ciphertext. It is carried both
// in the clear (the receiver needs dh and n before it can select keys)
// and as an encrypted copy bound into the payload's associated data.
type MessageHeader struct {
	DH X25519Public `json:"dh"`
	PN uint32       `json:"pn"`
	N  uint32       `json:"n"`
}

// HandshakeMessage carries the X3DH parameters the initiator's first
// transmission must deliver: its identity key, the ephemeral key, and
// the one-time pre-key it consumed, if any.
type HandshakeMessage struct {
	IdentityKey   X25519Public  `json:"identityKey"`
	EphemeralKey  X25519Public  `json:"ephemeralKey"`
	OneTimePreKey *X25519Public `json:"oneTimePreKey,omitempty"`
}

// EncryptedMessage is the wire unit produced by Session.Encrypt and
// consumed by Session.Decrypt.
type EncryptedMessage struct {
	Header       MessageHeader `json:"header"`
	HeaderCipher Bytes         `json:"headerCipher"`
	HeaderNonce  Bytes         `json:"headerNonce"`
	Ciphertext   Bytes         `json:"ciphertext"`
	Nonce        Bytes         `json:"nonce"`
}
