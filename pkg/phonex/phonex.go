// Package phonex normalizes phone numbers to E.164 and derives the values
// the identity store keys on.
package phonex

import (
	"errors"
	"strings"
)

const authEmailDomain = "phone.local"

var ErrInvalidPhone = errors.New("phonex: phone number must be in international format")

// Normalize returns phone in E.164 form (+ followed by 8 to 15 digits).
// Spaces, dashes, dots and parentheses are stripped and a leading 00 is
// treated as +.
func Normalize(phone string) (string, error) {
	var b strings.Builder
	b.Grow(len(phone))

	s := strings.TrimSpace(phone)
	if strings.HasPrefix(s, "00") {
		s = "+" + s[2:]
	}
	if !strings.HasPrefix(s, "+") {
		return "", ErrInvalidPhone
	}
	b.WriteByte('+')

	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}

	out := b.String()
	digits := len(out) - 1
	if digits < 8 || digits > 15 || out[1] == '0' {
		return "", ErrInvalidPhone
	}
	return out, nil
}

// MustNormalize is Normalize for values already known to be valid.
func MustNormalize(phone string) string {
	out, err := Normalize(phone)
	if err != nil {
		panic(err)
	}
	return out
}

// Equal reports whether a and b normalize to the same number. Invalid
// numbers are never equal.
func Equal(a, b string) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return na == nb
}

// AuthEmail returns the surrogate login email for an E.164 phone number:
// the digits without the leading + at phone.local.
func AuthEmail(e164 string) string {
	return strings.TrimPrefix(e164, "+") + "@" + authEmailDomain
}

// Mask hides all but the country prefix and last three digits for logs.
func Mask(phone string) string {
	if len(phone) <= 6 {
		return strings.Repeat("*", len(phone))
	}
	return phone[:3] + strings.Repeat("*", len(phone)-6) + phone[len(phone)-3:]
}
