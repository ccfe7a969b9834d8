package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// CodeAlphabet is the character set for invite and transfer codes. Visually
// ambiguous pairs (0/O, 1/I) are intentionally kept.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const (
	InviteCodeLength   = 6
	TransferCodeLength = 8
)

var ErrInvalidCode = errors.New("cryptox: invalid code format")

// GenerateCode draws length characters uniformly from alphabet using
// crypto/rand. Uniqueness is not guaranteed; the store's unique index is the
// authority and callers regenerate on collision.
func GenerateCode(length int, alphabet string) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("cryptox: code length must be positive, got %d", length)
	}
	if alphabet == "" {
		return "", errors.New("cryptox: empty code alphabet")
	}

	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to generate code: %w", err)
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}

// ValidateCode reports whether code has the given length and only uses
// CodeAlphabet characters.
func ValidateCode(code string, length int) error {
	if len(code) != length {
		return ErrInvalidCode
	}
	for i := range len(code) {
		if !strings.ContainsRune(CodeAlphabet, rune(code[i])) {
			return ErrInvalidCode
		}
	}
	return nil
}

// GetExpiration returns the absolute expiry d after now.
func GetExpiration(now time.Time, d time.Duration) time.Time {
	return now.Add(d)
}
