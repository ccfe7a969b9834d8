package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidatePIN(t *testing.T) {
	tests := []struct {
		pin   string
		valid bool
	}{
		{"1234", true},
		{"0000", true},
		{"123", false},
		{"12345", false},
		{"12a4", false},
		{"", false},
		{"１２３４", false}, // full-width digits
		{" 123", false},
	}

	for _, tt := range tests {
		err := ValidatePIN(tt.pin)
		if tt.valid {
			require.NoError(t, err, tt.pin)
		} else {
			require.ErrorIs(t, err, ErrInvalidPIN, tt.pin)
		}
	}
}

func TestHashPIN(t *testing.T) {
	h1 := HashPIN("1234")
	require.Len(t, h1, 64)
	require.Equal(t, h1, HashPIN("1234"))
	require.NotEqual(t, h1, HashPIN("1235"))
}

func TestVerifyPIN(t *testing.T) {
	digest := HashPIN("4821")

	require.True(t, VerifyPIN("4821", digest))
	require.False(t, VerifyPIN("4822", digest))
	require.False(t, VerifyPIN("482", digest))
	require.False(t, VerifyPIN("4821", "not-hex"))
	require.False(t, VerifyPIN("4821", ""))
}
