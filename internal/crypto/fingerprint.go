package crypto

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"strings"
)

// Fingerprint renders a public key for display: SHA-256, first 8 groups
// of 4 hex chars, space separated.
func Fingerprint(pub []byte) string {
	sum := sha256.Sum256(pub)
	hex := fmt.Sprintf("%x", sum[:16])
	groups := make([]string, 8)
	for i := range groups {
		groups[i] = hex[i*4 : i*4+4]
	}
	return strings.Join(groups, " ")
}

// SafetyNumber derives the number both peers compare out of band. The
// two identity public keys are concatenated in canonical order
// (lexicographically smaller first) so both sides compute the same
// string, then hashed and rendered as 6 groups of 5 decimal digits taken
// from consecutive 5-byte windows.
func SafetyNumber(a, b []byte) string {
	lo, hi := a, b
	if bytes.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	h := sha256.New()
	h.Write(lo)
	h.Write(hi)
	sum := h.Sum(nil)

	groups := make([]string, 6)
	for i := range groups {
		var window [8]byte
		copy(window[3:], sum[i*5:i*5+5])
		n := binary.BigEndian.Uint64(window[:]) % 100000
		groups[i] = fmt.Sprintf("%05d", n)
	}
	return strings.Join(groups, " ")
}

// EqualKeys compares two keys in constant time.
func EqualKeys(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
