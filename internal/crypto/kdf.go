package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// RatchetInfo is the HKDF info label shared by the X3DH secret
// derivation and the root-key ratchet step.
const RatchetInfo = "vortex-ratchet-v1"

// MAC returns HMAC-SHA256 of data under key.
func MAC(key, data []byte) [32]byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HKDF derives n bytes from ikm via HKDF-SHA256 (RFC 5869). A nil salt
// is replaced by a string of hash-length zero bytes per the RFC.
func HKDF(ikm, salt, info []byte, n int) []byte {
	out := make([]byte, n)
	r := hkdf.New(sha256.New, ikm, salt, info)
	if _, err := io.ReadFull(r, out); err != nil {
		// hkdf only errors when asked for more than 255 blocks;
		// derivations here are far below that.
		panic("hkdf: " + err.Error())
	}
	return out
}
