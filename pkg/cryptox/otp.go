package cryptox

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ProofPeriod is the validity window of one timed proof step.
const ProofPeriod = 5 * time.Minute

var proofOpts = totp.ValidateOpts{
	Period:    uint(ProofPeriod / time.Second),
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

// DeriveProofSecret derives a base32 TOTP secret bound to subject (usually a
// phone number) from a server-held key. Nothing needs to be stored per
// subject.
func DeriveProofSecret(key []byte, subject string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(subject))
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(mac.Sum(nil))
}

// GenerateTimedProof returns the 6 digit proof for secret at the given time.
func GenerateTimedProof(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, proofOpts)
}

// ValidateTimedProof checks code against secret, allowing one step of skew
// either side of at.
func ValidateTimedProof(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, proofOpts)
	return err == nil && ok
}
