package x3dh_test

import (
	"bytes"
	"testing"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/x3dh"
)

func makePair(t *testing.T) (domain.X25519Private, domain.X25519Public) {
	t.Helper()
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return priv, pub
}

func TestBothSidesAgree_NoOneTimePreKey(t *testing.T) {
	aliceIDPriv, aliceIDPub := makePair(t)
	aliceEphPriv, aliceEphPub := makePair(t)
	bobIDPriv, bobIDPub := makePair(t)
	bobSPKPriv, bobSPKPub := makePair(t)

	initiator, err := x3dh.InitiatorSecret(aliceIDPriv, aliceEphPriv, bobIDPub, bobSPKPub, nil)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	responder, err := x3dh.ResponderSecret(bobIDPriv, bobSPKPriv, nil, aliceIDPub, aliceEphPub)
	if err != nil {
		t.Fatalf("ResponderSecret: %v", err)
	}
	if !bytes.Equal(initiator, responder) {
		t.Fatal("shared secrets differ (no OPK)")
	}
	if len(initiator) != x3dh.SecretSize {
		t.Fatalf("secret length %d, want %d", len(initiator), x3dh.SecretSize)
	}
}

func TestBothSidesAgree_WithOneTimePreKey(t *testing.T) {
	aliceIDPriv, aliceIDPub := makePair(t)
	aliceEphPriv, aliceEphPub := makePair(t)
	bobIDPriv, bobIDPub := makePair(t)
	bobSPKPriv, bobSPKPub := makePair(t)
	bobOTKPriv, bobOTKPub := makePair(t)

	initiator, err := x3dh.InitiatorSecret(aliceIDPriv, aliceEphPriv, bobIDPub, bobSPKPub, &bobOTKPub)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	responder, err := x3dh.ResponderSecret(bobIDPriv, bobSPKPriv, &bobOTKPriv, aliceIDPub, aliceEphPub)
	if err != nil {
		t.Fatalf("ResponderSecret: %v", err)
	}
	if !bytes.Equal(initiator, responder) {
		t.Fatal("shared secrets differ (with OPK)")
	}
}

func TestOneTimePreKeyChangesSecret(t *testing.T) {
	aliceIDPriv, _ := makePair(t)
	aliceEphPriv, _ := makePair(t)
	_, bobIDPub := makePair(t)
	_, bobSPKPub := makePair(t)
	_, bobOTKPub := makePair(t)

	without, err := x3dh.InitiatorSecret(aliceIDPriv, aliceEphPriv, bobIDPub, bobSPKPub, nil)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	with, err := x3dh.InitiatorSecret(aliceIDPriv, aliceEphPriv, bobIDPub, bobSPKPub, &bobOTKPub)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	if bytes.Equal(without, with) {
		t.Fatal("one-time pre-key did not affect the secret")
	}
}

func TestFreshEphemeralChangesSecret(t *testing.T) {
	aliceIDPriv, _ := makePair(t)
	eph1, _ := makePair(t)
	eph2, _ := makePair(t)
	_, bobIDPub := makePair(t)
	_, bobSPKPub := makePair(t)

	s1, err := x3dh.InitiatorSecret(aliceIDPriv, eph1, bobIDPub, bobSPKPub, nil)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	s2, err := x3dh.InitiatorSecret(aliceIDPriv, eph2, bobIDPub, bobSPKPub, nil)
	if err != nil {
		t.Fatalf("InitiatorSecret: %v", err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("different ephemerals produced the same secret")
	}
}
