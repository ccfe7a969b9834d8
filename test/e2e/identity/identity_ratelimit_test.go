package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

func TestLoginRateLimit(t *testing.T) {
	client := identitysdk.NewSDKClient(setupIdentityContainerWithDefaultRateLimits(t))

	// The strict profile allows a burst of 5 per IP.
	for i := range 5 {
		_, err := client.LoginWithPassword(t.Context(), ownerPhone, "wrong")
		require.Error(t, err, "attempt %d", i+1)
		require.False(t, identitysdk.IsCode(err, identitysdk.ErrorCodeRateLimited), "attempt %d", i+1)
	}

	_, err := client.LoginWithPassword(t.Context(), ownerPhone, "wrong")
	requireCode(t, err, identitysdk.ErrorCodeRateLimited)
}

func TestInviteValidationRateLimit(t *testing.T) {
	client := identitysdk.NewSDKClient(setupIdentityContainerWithDefaultRateLimits(t))

	for range 5 {
		res, err := client.ValidateInvite(t.Context(), "ZZZZZZ")
		require.NoError(t, err)
		require.False(t, res.Valid)
	}

	_, err := client.ValidateInvite(t.Context(), "ZZZZZZ")
	requireCode(t, err, identitysdk.ErrorCodeRateLimited)
}
