package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Fast es para tests; no usar en producción.
var Fast = Params{Memory: 1024, Time: 1, Parallelism: 1, KeyLen: 32}

var ErrEmpty = errors.New("password: empty secret")

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmpty
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara en tiempo constante; cualquier PHC malformado es false.
func Verify(plain, phc string) bool {
	parts := strings.Split(phc, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, dk
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}
	var v int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &v); err != nil || v != argon2.Version {
		return false
	}
	var m, t uint32
	var p uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); err != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	dkStored, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(dkStored) == 0 {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, t, m, p, uint32(len(dkStored)))
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}
