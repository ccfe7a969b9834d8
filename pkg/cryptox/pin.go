package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
)

// PINLength is the number of digits in a PIN.
const PINLength = 4

// pinPrefix versions the PIN digest. Bump the version if the derivation ever
// changes so old digests can be told apart.
const pinPrefix = "tilldesk:pin:v1:"

var ErrInvalidPIN = errors.New("cryptox: pin must be exactly 4 digits")

// ValidatePIN checks the PIN is exactly PINLength ASCII digits.
func ValidatePIN(pin string) error {
	if len(pin) != PINLength {
		return ErrInvalidPIN
	}
	for i := range len(pin) {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// HashPIN returns the hex SHA-256 digest of the versioned prefix and the PIN.
// The digest is deterministic: PINs are unsalted and rely on attempt lockout
// rather than hash cost. Callers validate the PIN shape first.
func HashPIN(pin string) string {
	sum := sha256.Sum256([]byte(pinPrefix + pin))
	return hex.EncodeToString(sum[:])
}

// VerifyPIN re-hashes pin and compares it to digest in constant time.
// Malformed PINs or digests never match.
func VerifyPIN(pin, digest string) bool {
	if ValidatePIN(pin) != nil {
		return false
	}
	want, err := hex.DecodeString(digest)
	if err != nil || len(want) != sha256.Size {
		return false
	}
	got := sha256.Sum256([]byte(pinPrefix + pin))
	return subtle.ConstantTimeCompare(got[:], want) == 1
}
