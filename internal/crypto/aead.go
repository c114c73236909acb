package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	// KeyBytes is the AEAD and derived-key size.
	KeyBytes = chacha20poly1305.KeySize
	// NonceBytes is the AEAD nonce size.
	NonceBytes = chacha20poly1305.NonceSize
	// SaltBytes is the salt size for password key derivation.
	SaltBytes = 16
)

// Seal encrypts plaintext under key with the given nonce and associated
// data using ChaCha20-Poly1305.
//
// Every message key is used for exactly one encryption, so a fresh
// random nonce per call keeps collision probability negligible.
func Seal(key, nonce, plaintext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open decrypts ciphertext under key, nonce and associated data. A tag
// mismatch surfaces as the AEAD's error; no partial plaintext is ever
// returned.
func Open(key, nonce, ciphertext, ad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, ciphertext, ad)
}

// RandomNonce returns a fresh random AEAD nonce.
func RandomNonce() ([]byte, error) {
	return RandomBytes(NonceBytes)
}

// RandomBytes returns n bytes from the CSPRNG.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
