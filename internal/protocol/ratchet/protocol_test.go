package ratchet_test

import (
	"testing"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/identity"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/ratchet"
)

// TestFullProtocolFlow drives the whole handshake the way the
// surrounding system would: bundle issuance, verification, X3DH on both
// sides, one-time pre-key consumption, then a two-way conversation.
func TestFullProtocolFlow(t *testing.T) {
	aliceMgr := identity.NewManager()
	if _, err := aliceMgr.Generate(); err != nil {
		t.Fatalf("alice Generate: %v", err)
	}
	bobMgr := identity.NewManager()
	if _, err := bobMgr.Generate(); err != nil {
		t.Fatalf("bob Generate: %v", err)
	}

	// Bob publishes a bundle; Alice verifies it before handshaking.
	bundle := bobMgr.PreKeyBundle()
	if bundle == nil {
		t.Fatal("bob issued no bundle")
	}
	bobSigning, err := bobMgr.SigningPublicKey()
	if err != nil {
		t.Fatalf("SigningPublicKey: %v", err)
	}
	if !identity.VerifyPreKeyBundle(*bundle, bobSigning) {
		t.Fatal("bundle verification failed")
	}

	aliceKeys, err := aliceMgr.IdentityKeyPair()
	if err != nil {
		t.Fatalf("IdentityKeyPair: %v", err)
	}
	alice, eph, usedOneTime, err := ratchet.InitializeSender(aliceKeys, *bundle)
	if err != nil {
		t.Fatalf("InitializeSender: %v", err)
	}
	if !usedOneTime {
		t.Fatal("bundle carried a one-time pre-key but none was consumed")
	}

	// Bob resolves the targeted pre-keys and answers the handshake.
	bobKeys, err := bobMgr.IdentityKeyPair()
	if err != nil {
		t.Fatalf("IdentityKeyPair: %v", err)
	}
	spk, err := bobMgr.SignedPreKeyPair()
	if err != nil {
		t.Fatalf("SignedPreKeyPair: %v", err)
	}
	otk, ok := bobMgr.OneTimePreKeyByPublic(*bundle.OneTimePreKey)
	if !ok {
		t.Fatal("consumed one-time pre-key not found in pool")
	}
	otkPriv := otk.PrivateKey
	bob, err := ratchet.InitializeReceiver(
		bobKeys,
		domain.KeyPair{PublicKey: spk.PublicKey, PrivateKey: spk.PrivateKey},
		&otkPriv,
		aliceKeys.PublicKey,
		eph,
	)
	if err != nil {
		t.Fatalf("InitializeReceiver: %v", err)
	}

	// Consumption bookkeeping is the manager's job.
	if err := bobMgr.MarkOneTimePreKeyUsed(*bundle.OneTimePreKey); err != nil {
		t.Fatalf("MarkOneTimePreKeyUsed: %v", err)
	}
	if next := bobMgr.PreKeyBundle(); next.OneTimePreKey != nil && *next.OneTimePreKey == *bundle.OneTimePreKey {
		t.Fatal("consumed one-time pre-key reissued")
	}

	msg := mustEncrypt(t, alice, "hello bob")
	if got, _ := mustDecrypt(t, bob, msg); got != "hello bob" {
		t.Fatalf("got %q", got)
	}
	reply := mustEncrypt(t, bob, "hi alice")
	if got, _ := mustDecrypt(t, alice, reply); got != "hi alice" {
		t.Fatalf("got %q", got)
	}

	// Safety numbers agree across both managers.
	fromAlice, err := aliceMgr.SafetyNumber(bobKeys.PublicKey)
	if err != nil {
		t.Fatalf("SafetyNumber: %v", err)
	}
	fromBob, err := bobMgr.SafetyNumber(aliceKeys.PublicKey)
	if err != nil {
		t.Fatalf("SafetyNumber: %v", err)
	}
	if fromAlice != fromBob {
		t.Fatalf("safety numbers differ: %q vs %q", fromAlice, fromBob)
	}
}

// TestHandshakeAgainstRotatedBundleFails pins down the documented
// limitation: rotation discards the old signed pre-key, so a handshake
// initiated against the stale bundle cannot be answered correctly.
func TestHandshakeAgainstRotatedBundleFails(t *testing.T) {
	aliceMgr := identity.NewManager()
	if _, err := aliceMgr.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	bobMgr := identity.NewManager()
	if _, err := bobMgr.Generate(); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	stale := *bobMgr.PreKeyBundle()
	stale.OneTimePreKey = nil
	if _, err := bobMgr.RotateSignedPreKey(); err != nil {
		t.Fatalf("RotateSignedPreKey: %v", err)
	}

	aliceKeys, err := aliceMgr.IdentityKeyPair()
	if err != nil {
		t.Fatalf("IdentityKeyPair: %v", err)
	}
	alice, eph, _, err := ratchet.InitializeSender(aliceKeys, stale)
	if err != nil {
		t.Fatalf("InitializeSender: %v", err)
	}

	// Bob only has the rotated pre-key; the derived secrets diverge and
	// the first message fails authentication instead of decrypting.
	bobKeys, err := bobMgr.IdentityKeyPair()
	if err != nil {
		t.Fatalf("IdentityKeyPair: %v", err)
	}
	spk, err := bobMgr.SignedPreKeyPair()
	if err != nil {
		t.Fatalf("SignedPreKeyPair: %v", err)
	}
	bob, err := ratchet.InitializeReceiver(
		bobKeys,
		domain.KeyPair{PublicKey: spk.PublicKey, PrivateKey: spk.PrivateKey},
		nil,
		aliceKeys.PublicKey,
		eph,
	)
	if err != nil {
		t.Fatalf("InitializeReceiver: %v", err)
	}

	msg := mustEncrypt(t, alice, "doomed")
	if _, _, err := bob.Decrypt(msg); err == nil {
		t.Fatal("handshake against a rotated bundle should not produce a working session")
	}
}
