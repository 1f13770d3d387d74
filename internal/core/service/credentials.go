package service

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes and verifies user passwords and client
// secrets. New hashes use bcrypt; verification also accepts argon2id
// hashes so records imported from other systems keep working.
type CredentialVerifier struct {
	cost int
}

// NewCredentialVerifier creates a verifier with the given bcrypt cost.
// A cost below bcrypt.MinCost falls back to bcrypt.DefaultCost.
func NewCredentialVerifier(cost int) *CredentialVerifier {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &CredentialVerifier{cost: cost}
}

// Hash returns a bcrypt hash of the secret.
func (v *CredentialVerifier) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), v.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the secret matches the stored hash. A
// malformed or unknown hash format verifies false, never an error:
// callers treat any failure as bad credentials.
func (v *CredentialVerifier) Verify(secret, hash string) bool {
	switch {
	case strings.HasPrefix(hash, "$argon2id$"):
		return verifyArgon2id(secret, hash)
	case strings.HasPrefix(hash, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
	default:
		return false
	}
}

// verifyArgon2id verifies a secret against an argon2id hash of the
// form $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>.
func verifyArgon2id(secret, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	memory, iterations, parallelism = 16384, 2, 2
	for _, param := range strings.Split(parts[3], ",") {
		key, value, ok := strings.Cut(param, "=")
		if !ok {
			continue
		}
		n := 0
		for _, c := range value {
			if c < '0' || c > '9' {
				n = -1
				break
			}
			n = n*10 + int(c-'0')
		}
		if n < 0 {
			return false
		}
		switch key {
		case "m":
			memory = uint32(n)
		case "t":
			iterations = uint32(n)
		case "p":
			parallelism = uint8(n)
		}
	}

	computed := argon2.IDKey([]byte(secret), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}
