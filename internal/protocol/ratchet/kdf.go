package ratchet

import (
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
)

// kdfRK performs the root ratchet step: HKDF keyed by the current root
// key over a DH output, split into the next root key, a chain key and a
// header key. One-way; the old root key cannot be recovered.
func kdfRK(rk, dhOut []byte) (newRK, ck, hk []byte) {
	okm := crypto.HKDF(dhOut, rk, []byte(crypto.RatchetInfo), 96)
	return okm[0:32], okm[32:64], okm[64:96]
}

// kdfCK performs the symmetric chain step. Each call consumes the
// current chain key and yields exactly one message key plus the
// replacement chain key.
func kdfCK(ck []byte) (mk, next []byte) {
	m := crypto.MAC(ck, []byte{0x01})
	n := crypto.MAC(ck, []byte{0x02})
	return m[:], n[:]
}
