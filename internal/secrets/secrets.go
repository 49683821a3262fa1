package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/jaevor/go-nanoid"
)

// TokenLength is the number of nanoid characters in a share token. 32
// characters over a 64-symbol alphabet is 192 bits of entropy.
const TokenLength = 32

// AccessCodeLength is the number of digits in a share access code.
const AccessCodeLength = 4

// NewToken generates a URL-safe share token. Uniqueness is still enforced at
// the database layer; this only guarantees collisions are infeasible.
func NewToken() (string, error) {
	generateID, err := nanoid.Standard(TokenLength)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}
	return generateID(), nil
}

// NewAccessCode generates a 4-digit numeric code drawn uniformly from
// 0000-9999.
func NewAccessCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate access code: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

// HashCode returns the hex-encoded SHA-256 of an access code. Only this hash
// is ever stored; the plaintext code exists transiently at creation time.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CodeMatches compares a candidate code against a stored hash in constant
// time.
func CodeMatches(code, codeHash string) bool {
	return subtle.ConstantTimeCompare([]byte(HashCode(code)), []byte(codeHash)) == 1
}
