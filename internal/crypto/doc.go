// Package crypto exposes the narrow primitive layer the protocol is
// built on.
//
// Contents
//
//   - X25519 key generation, clamping and Diffie–Hellman (GenerateX25519, DH)
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - HMAC-SHA256 and HKDF-SHA256 (MAC, HKDF)
//   - ChaCha20-Poly1305 AEAD with random nonces (Seal, Open, RandomNonce)
//   - Fingerprint and safety-number rendering for identity keys
//   - Constant-time public-key comparison (EqualKeys)
//
// No other package performs primitive cryptography directly. Callers
// should treat returned secrets as sensitive and wipe them with
// memzero.Zero when their lifetime ends.
package crypto
