package secretbox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	nonceSizeGCM      = 12  // AES-GCM nonce (96 bits)
	requiredKeyLength = 32  // AES-256
	sep               = "|" // base64(nonce)|base64(ciphertext)
)

var ErrMalformed = errors.New("secretbox: malformed ciphertext")

// Box cifra secretos de integraciones (client_secret) antes de persistirlos.
type Box struct {
	aead cipher.AEAD
}

// New acepta la clave maestra en base64, hex o 32 bytes crudos.
func New(key string) (*Box, error) {
	k, err := parseKey(key)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return &Box{aead: aead}, nil
}

func parseKey(key string) ([]byte, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.New("secretbox: empty key; generate one with: openssl rand -base64 32")
	}
	if b, err := base64.StdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(key); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if len(key) == 2*requiredKeyLength {
		if b, err := hex.DecodeString(key); err == nil {
			return b, nil
		}
	}
	if len(key) == requiredKeyLength {
		return []byte(key), nil
	}
	return nil, fmt.Errorf("secretbox: key must decode to %d bytes", requiredKeyLength)
}

func (b *Box) Encrypt(plainText string) (string, error) {
	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce random: %w", err)
	}
	ct := b.aead.Seal(nil, nonce, []byte(plainText), nil)
	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

func (b *Box) Decrypt(cipherText string) (string, error) {
	nonceB64, ctB64, ok := strings.Cut(cipherText, sep)
	if !ok {
		return "", ErrMalformed
	}
	nonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil || len(nonce) != nonceSizeGCM {
		return "", ErrMalformed
	}
	ct, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return "", ErrMalformed
	}
	pt, err := b.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("gcm auth/decrypt: %w", err)
	}
	return string(pt), nil
}
