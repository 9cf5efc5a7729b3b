// Package crypto implements server-side password and refresh-token hashing.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost factor used for all stored hashes.
const HashCost = 10

// HashPassword returns the bcrypt hash of the given plaintext.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt digest.
// bcrypt's comparison is constant-time over the derived key.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// HashToken returns the bcrypt hash of the SHA-256 digest of the token.
// Refresh tokens are JWTs well past bcrypt's 72-byte input limit, so the
// token is pre-digested before hashing.
func HashToken(token string) (string, error) {
	sum := sha256.Sum256([]byte(token))
	digest, err := bcrypt.GenerateFromPassword(sum[:], HashCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyToken reports whether token matches a digest produced by HashToken.
func VerifyToken(token, digest string) bool {
	sum := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(digest), sum[:]) == nil
}

// GenerateOTP returns a cryptographically random n-digit numeric code.
func GenerateOTP(digits int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < digits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	code := n.String()
	for len(code) < digits {
		code = "0" + code
	}
	return code, nil
}
