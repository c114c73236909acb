package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/acivaci33-design/vortex-protocol-sub001/internal/domain"
)

// The wire format is a compatibility surface: JSON objects with URL-safe
// unpadded base64 byte fields and fixed field names.
func TestEncryptedMessageWireFormat(t *testing.T) {
	msg := domain.EncryptedMessage{
		Header:       domain.MessageHeader{DH: domain.X25519Public{0xfb, 0xff}, PN: 3, N: 7},
		HeaderCipher: domain.Bytes{0xff, 0xfe, 0xfd},
		HeaderNonce:  domain.Bytes{1, 2, 3},
		Ciphertext:   domain.Bytes{4, 5, 6},
		Nonce:        domain.Bytes{7, 8, 9},
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(raw)
	for _, field := range []string{`"header"`, `"headerCipher"`, `"headerNonce"`, `"ciphertext"`, `"nonce"`, `"dh"`, `"pn"`, `"n"`} {
		if !strings.Contains(s, field) {
			t.Fatalf("wire JSON missing field %s: %s", field, s)
		}
	}
	if strings.ContainsAny(s, "+/=") {
		t.Fatalf("wire JSON is not URL-safe unpadded base64: %s", s)
	}

	var back domain.EncryptedMessage
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Header != msg.Header || string(back.Ciphertext) != string(msg.Ciphertext) {
		t.Fatalf("round trip mismatch: %+v", back)
	}
}

func TestPreKeyBundleWireFormat(t *testing.T) {
	otk := domain.X25519Public{9}
	b := domain.PreKeyBundle{
		IdentityKey:     domain.X25519Public{1},
		SignedPreKey:    domain.X25519Public{2},
		SignedPreKeySig: domain.Bytes{3, 4},
		OneTimePreKey:   &otk,
		RegistrationID:  42,
	}
	raw, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s := string(raw)
	for _, field := range []string{`"identityKey"`, `"signedPreKey"`, `"signedPreKeySig"`, `"oneTimePreKey"`, `"registrationId"`} {
		if !strings.Contains(s, field) {
			t.Fatalf("wire JSON missing field %s: %s", field, s)
		}
	}

	// The one-time pre-key is optional on the wire.
	b.OneTimePreKey = nil
	raw, err = json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if strings.Contains(string(raw), "oneTimePreKey") {
		t.Fatalf("absent one-time pre-key still on the wire: %s", raw)
	}
}

func TestKeyLengthValidation(t *testing.T) {
	var pub domain.X25519Public
	if err := json.Unmarshal([]byte(`"AAEC"`), &pub); err == nil {
		t.Fatal("short key accepted")
	}
	if err := json.Unmarshal([]byte(`"not base64!!"`), &pub); err == nil {
		t.Fatal("invalid base64 accepted")
	}
}
