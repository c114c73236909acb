package x3dh

import (
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/util/memzero"
)

// SecretSize is the size of the derived shared secret.
const SecretSize = 32

// InitiatorSecret derives the X3DH shared secret on the initiating side:
//
//	DH1 = DH(IK_a, SPK_b)
//	DH2 = DH(EK_a, IK_b)
//	DH3 = DH(EK_a, SPK_b)
//	DH4 = DH(EK_a, OPK_b)   when the bundle carries a one-time pre-key
//
// The concatenated outputs feed HKDF with a zero salt.
func InitiatorSecret(
	ourIdentityPriv domain.X25519Private,
	ourEphemeralPriv domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerSignedPreKey domain.X25519Public,
	peerOneTime *domain.X25519Public,
) ([]byte, error) {
	dh1, err := crypto.DH(ourIdentityPriv, peerSignedPreKey)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(ourEphemeralPriv, peerIdentity)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(ourEphemeralPriv, peerSignedPreKey)
	if err != nil {
		return nil, err
	}

	ikm := make([]byte, 0, 32*4)
	ikm = append(ikm, dh1[:]...)
	ikm = append(ikm, dh2[:]...)
	ikm = append(ikm, dh3[:]...)
	memzero.Zero(dh1[:])
	memzero.Zero(dh2[:])
	memzero.Zero(dh3[:])

	if peerOneTime != nil {
		dh4, err := crypto.DH(ourEphemeralPriv, *peerOneTime)
		if err != nil {
			memzero.Zero(ikm)
			return nil, err
		}
		ikm = append(ikm, dh4[:]...)
		memzero.Zero(dh4[:])
	}

	sk := derive(ikm)
	memzero.Zero(ikm)
	return sk, nil
}

// ResponderSecret mirrors InitiatorSecret with roles swapped:
//
//	DH1 = DH(SPK_b, IK_a)
//	DH2 = DH(IK_b, EK_a)
//	DH3 = DH(SPK_b, EK_a)
//	DH4 = DH(OPK_b, EK_a)   when the initiator consumed a one-time pre-key
func ResponderSecret(
	ourIdentityPriv domain.X25519Private,
	ourSignedPreKeyPriv domain.X25519Private,
	ourOneTimePriv *domain.X25519Private,
	peerIdentity domain.X25519Public,
	peerEphemeral domain.X25519Public,
) ([]byte, error) {
	dh1, err := crypto.DH(ourSignedPreKeyPriv, peerIdentity)
	if err != nil {
		return nil, err
	}
	dh2, err := crypto.DH(ourIdentityPriv, peerEphemeral)
	if err != nil {
		return nil, err
	}
	dh3, err := crypto.DH(ourSignedPreKeyPriv, peerEphemeral)
	if err != nil {
		return nil, err
	}

	ikm := make([]byte, 0, 32*4)
	ikm = append(ikm, dh1[:]...)
	ikm = append(ikm, dh2[:]...)
	ikm = append(ikm, dh3[:]...)
	memzero.Zero(dh1[:])
	memzero.Zero(dh2[:])
	memzero.Zero(dh3[:])

	if ourOneTimePriv != nil {
		dh4, err := crypto.DH(*ourOneTimePriv, peerEphemeral)
		if err != nil {
			memzero.Zero(ikm)
			return nil, err
		}
		ikm = append(ikm, dh4[:]...)
		memzero.Zero(dh4[:])
	}

	sk := derive(ikm)
	memzero.Zero(ikm)
	return sk, nil
}

func derive(ikm []byte) []byte {
	salt := make([]byte, 32)
	return crypto.HKDF(ikm, salt, []byte(crypto.RatchetInfo), SecretSize)
}
