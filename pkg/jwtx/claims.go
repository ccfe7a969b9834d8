package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL covers a working shift on the till.
const DefaultAccessTokenTTL = 12 * time.Hour

// Authentication method references carried in the amr claim.
const (
	AMRPassword = "pwd"
	AMRPhone    = "otp"
)

// Claims are the identity service access-token claims. The role is
// deliberately absent: it is re-read from the store on every privileged
// action.
type Claims struct {
	jwt.RegisteredClaims

	// Session ID, keys the server side PIN guard.
	SID string `json:"sid,omitempty"`

	// Authentication Methods Reference, "pwd" or "otp".
	AMR []string `json:"amr,omitempty"`

	// Phone is the E.164 phone number of the account.
	Phone string `json:"phone_number,omitempty"`

	// Name is the display name for the account.
	Name string `json:"name,omitempty"`
}

// AccessParams describes the token being issued.
type AccessParams struct {
	Subject  string
	SID      string
	AMR      []string
	Phone    string
	Name     string
	Issuer   string
	Audience []string
	TTL      time.Duration
	Now      time.Time
}

func NewAccessClaims(p AccessParams) Claims {
	ttl := p.TTL
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.Issuer,
			Subject:   p.Subject,
			Audience:  jwt.ClaimStrings(p.Audience),
			IssuedAt:  jwt.NewNumericDate(p.Now),
			NotBefore: jwt.NewNumericDate(p.Now),
			ExpiresAt: jwt.NewNumericDate(p.Now.Add(ttl)),
			ID:        NewJTI(),
		},
		SID:   p.SID,
		AMR:   p.AMR,
		Phone: p.Phone,
		Name:  p.Name,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience passes when any expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil
	}
	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}
	return ErrAudience
}

// ValidateExpiry checks exp and nbf against now with leeway for clock skew.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}
