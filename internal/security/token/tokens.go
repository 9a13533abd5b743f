package tokens

import (
	"crypto/rand"
	"encoding/base64"
)

// Random genera n bytes aleatorios en base64url sin padding (nonces de state, ids opacos).
func Random(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
