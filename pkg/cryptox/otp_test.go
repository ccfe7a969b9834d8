package cryptox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimedProof(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	secret := DeriveProofSecret(key, "+61412345678")
	require.Equal(t, secret, DeriveProofSecret(key, "+61412345678"))
	require.NotEqual(t, secret, DeriveProofSecret(key, "+61412345679"))

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	code, err := GenerateTimedProof(secret, now)
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.True(t, ValidateTimedProof(code, secret, now))
	require.True(t, ValidateTimedProof(code, secret, now.Add(ProofPeriod)))
	require.False(t, ValidateTimedProof(code, secret, now.Add(3*ProofPeriod)))

	other := DeriveProofSecret(key, "+61400000000")
	require.False(t, ValidateTimedProof(code, other, now))
	require.False(t, ValidateTimedProof("12345", secret, now))
}
