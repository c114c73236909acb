package ratchet_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/crypto"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
	"github.com/acivaci33-design/vortex-protocol-sub001/internal/protocol/ratchet"
)

// makePair returns a fresh X25519 key pair.
func makePair(t *testing.T) domain.KeyPair {
	t.Helper()
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		t.Fatalf("GenerateX25519: %v", err)
	}
	return domain.KeyPair{PublicKey: pub, PrivateKey: priv}
}

// establishPair runs both handshake sides and returns ready sessions.
func establishPair(t *testing.T, withOneTime bool) (alice, bob *ratchet.Session) {
	t.Helper()

	aliceID := makePair(t)
	bobID := makePair(t)
	bobSPK := makePair(t)

	bundle := domain.PreKeyBundle{
		IdentityKey:    bobID.PublicKey,
		SignedPreKey:   bobSPK.PublicKey,
		RegistrationID: 7,
	}
	var bobOTK domain.KeyPair
	var oneTimePriv *domain.X25519Private
	if withOneTime {
		bobOTK = makePair(t)
		pub := bobOTK.PublicKey
		bundle.OneTimePreKey = &pub
		priv := bobOTK.PrivateKey
		oneTimePriv = &priv
	}

	alice, eph, usedOneTime, err := ratchet.InitializeSender(aliceID, bundle)
	if err != nil {
		t.Fatalf("InitializeSender: %v", err)
	}
	if usedOneTime != withOneTime {
		t.Fatalf("usedOneTime = %v, want %v", usedOneTime, withOneTime)
	}

	bob, err = ratchet.InitializeReceiver(bobID, bobSPK, oneTimePriv, aliceID.PublicKey, eph)
	if err != nil {
		t.Fatalf("InitializeReceiver: %v", err)
	}
	return alice, bob
}

func mustEncrypt(t *testing.T, s *ratchet.Session, plaintext string) domain.EncryptedMessage {
	t.Helper()
	msg, err := s.Encrypt([]byte(plaintext))
	if err != nil {
		t.Fatalf("Encrypt(%q): %v", plaintext, err)
	}
	return msg
}

func mustDecrypt(t *testing.T, s *ratchet.Session, msg domain.EncryptedMessage) (string, ratchet.Event) {
	t.Helper()
	pt, ev, err := s.Decrypt(msg)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	return string(pt), ev
}

func TestRoundTrip(t *testing.T) {
	alice, bob := establishPair(t, true)

	for _, want := range []string{"hello", "", "a longer plaintext with some structure"} {
		msg := mustEncrypt(t, alice, want)
		got, _ := mustDecrypt(t, bob, msg)
		if got != want {
			t.Fatalf("round trip: got %q, want %q", got, want)
		}
	}
}

func TestRoundTripWithoutOneTimePreKey(t *testing.T) {
	alice, bob := establishPair(t, false)

	msg := mustEncrypt(t, alice, "no one-time pre-key")
	got, ev := mustDecrypt(t, bob, msg)
	if got != "no one-time pre-key" {
		t.Fatalf("got %q", got)
	}
	if ev != ratchet.EventRatcheted {
		t.Fatalf("first receive should ratchet, got event %v", ev)
	}
}

func TestConversationPingPong(t *testing.T) {
	alice, bob := establishPair(t, true)

	for i := 0; i < 5; i++ {
		m := mustEncrypt(t, alice, "from alice")
		if got, _ := mustDecrypt(t, bob, m); got != "from alice" {
			t.Fatalf("round %d: got %q", i, got)
		}
		r := mustEncrypt(t, bob, "from bob")
		if got, _ := mustDecrypt(t, alice, r); got != "from bob" {
			t.Fatalf("round %d reply: got %q", i, got)
		}
	}
}

func TestReceiverCannotEncryptBeforeFirstReceive(t *testing.T) {
	_, bob := establishPair(t, true)

	if _, err := bob.Encrypt([]byte("too early")); err == nil {
		t.Fatal("expected error: responder has no sending chain before first receive")
	}
}

func TestNotInitialized(t *testing.T) {
	var s ratchet.Session
	if _, err := s.Encrypt([]byte("x")); !errors.Is(err, ratchet.ErrNotInitialized) {
		t.Fatalf("Encrypt on zero session: got %v, want ErrNotInitialized", err)
	}
	if _, _, err := s.Decrypt(domain.EncryptedMessage{}); !errors.Is(err, ratchet.ErrNotInitialized) {
		t.Fatalf("Decrypt on zero session: got %v, want ErrNotInitialized", err)
	}
}

func TestOutOfOrderWithinChain(t *testing.T) {
	alice, bob := establishPair(t, true)

	m1 := mustEncrypt(t, alice, "one")
	m2 := mustEncrypt(t, alice, "two")
	m3 := mustEncrypt(t, alice, "three")

	if got, _ := mustDecrypt(t, bob, m2); got != "two" {
		t.Fatalf("m2: got %q", got)
	}
	got, ev := mustDecrypt(t, bob, m1)
	if got != "one" {
		t.Fatalf("m1: got %q", got)
	}
	if ev != ratchet.EventUsedSkippedKey {
		t.Fatalf("m1 should come from the skipped cache, got event %v", ev)
	}
	if got, _ := mustDecrypt(t, bob, m3); got != "three" {
		t.Fatalf("m3: got %q", got)
	}
}

func TestOutOfOrderAcrossRatchetStep(t *testing.T) {
	alice, bob := establishPair(t, true)

	m1 := mustEncrypt(t, alice, "first")
	m2 := mustEncrypt(t, alice, "second") // will arrive late

	if got, _ := mustDecrypt(t, bob, m1); got != "first" {
		t.Fatalf("m1: got %q", got)
	}
	reply := mustEncrypt(t, bob, "ack")
	if got, _ := mustDecrypt(t, alice, reply); got != "ack" {
		t.Fatalf("reply: got %q", got)
	}

	// Alice has ratcheted; her next message opens a new chain with
	// PN=2, forcing Bob to cache the key for the unseen m2.
	m3 := mustEncrypt(t, alice, "third")
	got, ev := mustDecrypt(t, bob, m3)
	if got != "third" {
		t.Fatalf("m3: got %q", got)
	}
	if ev != ratchet.EventRatcheted {
		t.Fatalf("m3 should trigger a ratchet step, got event %v", ev)
	}

	got, ev = mustDecrypt(t, bob, m2)
	if got != "second" {
		t.Fatalf("late m2: got %q", got)
	}
	if ev != ratchet.EventUsedSkippedKey {
		t.Fatalf("late m2 should come from the skipped cache, got event %v", ev)
	}
}

func TestDHRatchetAdvancesHeaders(t *testing.T) {
	alice, bob := establishPair(t, true)

	m1 := mustEncrypt(t, alice, "one")
	m2 := mustEncrypt(t, alice, "two")
	mustDecrypt(t, bob, m1)
	mustDecrypt(t, bob, m2)

	reply := mustEncrypt(t, bob, "reply")
	mustDecrypt(t, alice, reply)

	// Alice ratcheted on receiving Bob's reply: new header DH, PN equal
	// to her previous chain length, N restarting at 0.
	m3 := mustEncrypt(t, alice, "three")
	if m3.Header.DH == m1.Header.DH {
		t.Fatal("header DH did not change after ratchet step")
	}
	if m3.Header.PN != 2 {
		t.Fatalf("header PN = %d, want 2", m3.Header.PN)
	}
	if m3.Header.N != 0 {
		t.Fatalf("header N = %d, want 0", m3.Header.N)
	}
}

func TestSkipBoundEnforcement(t *testing.T) {
	alice, bob := establishPair(t, true)

	mustDecrypt(t, bob, mustEncrypt(t, alice, "settle"))
	before, err := bob.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	junk := mustEncrypt(t, alice, "junk")
	junk.Header.N = ratchet.MaxSkip + 2

	if _, _, err := bob.Decrypt(junk); !errors.Is(err, ratchet.ErrTooManySkippedMessages) {
		t.Fatalf("got %v, want ErrTooManySkippedMessages", err)
	}

	after, err := bob.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatal("rejected message mutated session state")
	}

	// The genuine message still decrypts.
	if got, _ := mustDecrypt(t, bob, mustEncrypt(t, alice, "real")); got != "real" {
		t.Fatalf("got %q", got)
	}
}

func TestTamperedCiphertextFailsCleanly(t *testing.T) {
	alice, bob := establishPair(t, true)
	mustDecrypt(t, bob, mustEncrypt(t, alice, "settle"))

	msg := mustEncrypt(t, alice, "target")
	tampered := msg
	tampered.Ciphertext = append(domain.Bytes(nil), msg.Ciphertext...)
	tampered.Ciphertext[0] ^= 0x01

	if _, _, err := bob.Decrypt(tampered); !errors.Is(err, ratchet.ErrAuthenticationFailure) {
		t.Fatalf("got %v, want ErrAuthenticationFailure", err)
	}

	// The failed attempt must not have advanced the chain: the original
	// message still decrypts.
	if got, _ := mustDecrypt(t, bob, msg); got != "target" {
		t.Fatalf("got %q", got)
	}
}

func TestTamperedHeaderCipherFailsCleanly(t *testing.T) {
	alice, bob := establishPair(t, true)
	mustDecrypt(t, bob, mustEncrypt(t, alice, "settle"))

	msg := mustEncrypt(t, alice, "target")
	tampered := msg
	tampered.HeaderCipher = append(domain.Bytes(nil), msg.HeaderCipher...)
	tampered.HeaderCipher[0] ^= 0x01

	// The encrypted header copy is bound into the associated data, so
	// flipping a bit there must break payload authentication.
	if _, _, err := bob.Decrypt(tampered); !errors.Is(err, ratchet.ErrAuthenticationFailure) {
		t.Fatalf("got %v, want ErrAuthenticationFailure", err)
	}
	if got, _ := mustDecrypt(t, bob, msg); got != "target" {
		t.Fatalf("got %q", got)
	}
}

func TestExportImportContinuesConversation(t *testing.T) {
	alice, bob := establishPair(t, true)

	mustDecrypt(t, bob, mustEncrypt(t, alice, "one"))
	late := mustEncrypt(t, alice, "late") // decrypted only after import
	mustDecrypt(t, bob, mustEncrypt(t, alice, "three"))

	blob, err := bob.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	restored, err := ratchet.Import(blob)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !restored.IsReady() {
		t.Fatal("imported session not ready")
	}
	if restored.SessionID() != bob.SessionID() {
		t.Fatalf("session id changed across export/import")
	}

	// The cached skipped key survived the round trip.
	got, ev := mustDecrypt(t, restored, late)
	if got != "late" {
		t.Fatalf("late message: got %q", got)
	}
	if ev != ratchet.EventUsedSkippedKey {
		t.Fatalf("late message should use the cached key, got event %v", ev)
	}

	// The conversation continues in both directions.
	reply := mustEncrypt(t, restored, "reply")
	if got, _ := mustDecrypt(t, alice, reply); got != "reply" {
		t.Fatalf("reply: got %q", got)
	}
	if got, _ := mustDecrypt(t, restored, mustEncrypt(t, alice, "more")); got != "more" {
		t.Fatalf("got %q", got)
	}
}

func TestImportRejectsUnknownVersion(t *testing.T) {
	alice, _ := establishPair(t, true)
	blob, err := alice.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	bad := bytes.Replace(blob, []byte(`"version":1`), []byte(`"version":99`), 1)
	if bytes.Equal(bad, blob) {
		t.Fatal("version tag not found in export")
	}
	if _, err := ratchet.Import(bad); !errors.Is(err, ratchet.ErrUnsupportedExportVersion) {
		t.Fatalf("got %v, want ErrUnsupportedExportVersion", err)
	}
}

func TestCleanupSkippedKeys(t *testing.T) {
	alice, bob := establishPair(t, true)

	skipped := mustEncrypt(t, alice, "skipped")
	mustDecrypt(t, bob, mustEncrypt(t, alice, "advance")) // caches skipped's key

	if removed := bob.CleanupSkippedKeys(ratchet.DefaultSkippedKeyMaxAge); removed != 0 {
		t.Fatalf("fresh keys removed: %d", removed)
	}
	// A negative max-age puts the cutoff in the future, so every cached
	// key counts as stale without sleeping in the test.
	if removed := bob.CleanupSkippedKeys(-time.Second); removed != 1 {
		t.Fatalf("removed %d keys, want 1", removed)
	}

	// With the cached key gone the late message is undecryptable.
	if _, _, err := bob.Decrypt(skipped); !errors.Is(err, ratchet.ErrAuthenticationFailure) {
		t.Fatalf("got %v, want ErrAuthenticationFailure", err)
	}
}
