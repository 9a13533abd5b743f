package secretbox

import (
	"encoding/base64"
	"strings"
	"testing"
)

func testKey() string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	box, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ct, err := box.Encrypt("client-secret-123")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if strings.Contains(ct, "client-secret-123") {
		t.Fatalf("ciphertext leaks plaintext")
	}
	pt, err := box.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if pt != "client-secret-123" {
		t.Fatalf("got %q", pt)
	}
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	box, _ := New(testKey())
	ct, _ := box.Encrypt("secret")
	nonce, body, _ := strings.Cut(ct, sep)
	raw, _ := base64.StdEncoding.DecodeString(body)
	raw[0] ^= 0xff
	if _, err := box.Decrypt(nonce + sep + base64.StdEncoding.EncodeToString(raw)); err == nil {
		t.Fatalf("expected auth failure on tampered ciphertext")
	}
	if _, err := box.Decrypt("not-a-box"); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestNew_KeyFormats(t *testing.T) {
	if _, err := New(strings.Repeat("ab", 32)); err != nil {
		t.Fatalf("hex key: %v", err)
	}
	if _, err := New(strings.Repeat("k", 32)); err != nil {
		t.Fatalf("raw key: %v", err)
	}
	if _, err := New("short"); err == nil {
		t.Fatalf("expected error for short key")
	}
}
