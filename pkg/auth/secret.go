package auth

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// SecretVerifier checks a presented passphrase against the configured admin secret.
type SecretVerifier interface {
	Verify(presented string) bool
}

// SharedSecretVerifier prefers a bcrypt hash and falls back to a plaintext secret.
// With neither configured every call to Verify fails.
type SharedSecretVerifier struct {
	plain []byte
	hash  []byte
}

func NewSharedSecretVerifier(plain, bcryptHash string) *SharedSecretVerifier {
	v := &SharedSecretVerifier{}
	if bcryptHash != "" {
		v.hash = []byte(bcryptHash)
	} else if plain != "" {
		sum := sha256.Sum256([]byte(plain))
		v.plain = sum[:]
	}
	return v
}

func (v *SharedSecretVerifier) Configured() bool {
	return len(v.hash) > 0 || len(v.plain) > 0
}

func (v *SharedSecretVerifier) Verify(presented string) bool {
	if presented == "" {
		return false
	}

	if len(v.hash) > 0 {
		return bcrypt.CompareHashAndPassword(v.hash, []byte(presented)) == nil
	}

	if len(v.plain) > 0 {
		// Hashing first keeps the comparison length-independent.
		sum := sha256.Sum256([]byte(presented))
		return subtle.ConstantTimeCompare(v.plain, sum[:]) == 1
	}

	return false
}

// HashSecret produces a value suitable for ADMIN_PASSWORD_HASH.
func HashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
