package identity_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tilldesk/pkg/identitysdk"
)

func TestOwnerOnboarding(t *testing.T) {
	client := identitysdk.NewSDKClient(setupIdentityContainer(t))
	owner := registerOwner(t, client)

	status, err := client.SetupStatus(t.Context())
	require.NoError(t, err)
	require.True(t, status.SetupComplete)

	// A second owner cannot register.
	_, err = client.RegisterOwner(t.Context(), identitysdk.RegisterOwnerRequest{
		Name:       "Someone Else",
		Phone:      "+61400000009",
		PhoneToken: proveDevice(t, client, "+61400000009"),
	})
	requireCode(t, err, identitysdk.ErrorCodeConflict)

	// Password sign-in opens a new session that starts locked.
	again, err := client.LoginWithPassword(t.Context(), ownerPhone, ownerPassword)
	require.NoError(t, err)
	require.NotEqual(t, owner.SessionID(), again.SessionID())

	state, err := again.State(t.Context())
	require.NoError(t, err)
	require.Equal(t, "pin_required", state.State)

	_, err = again.ListAccounts(t.Context())
	requireCode(t, err, identitysdk.ErrorCodePINRequired)
}

func TestInviteRedemption(t *testing.T) {
	client := identitysdk.NewSDKClient(setupIdentityContainer(t))
	owner := registerOwner(t, client)

	inv, err := owner.CreateInvite(t.Context(), identitysdk.CreateInviteRequest{Role: "employee"})
	require.NoError(t, err)
	require.Len(t, inv.Code, 6)

	check, err := client.ValidateInvite(t.Context(), inv.Code)
	require.NoError(t, err)
	require.True(t, check.Valid)
	require.Equal(t, "employee", check.Role)

	staffPhone := "+61400000002"
	staff, err := client.RedeemInvite(t.Context(), identitysdk.RedeemInviteRequest{
		Code:       inv.Code,
		Name:       "Alex Staff",
		Phone:      staffPhone,
		PhoneToken: proveDevice(t, client, staffPhone),
		PIN:        "4321",
	})
	require.NoError(t, err)
	require.Equal(t, "employee", staff.Account().Role)

	// The code is single use.
	check, err = client.ValidateInvite(t.Context(), inv.Code)
	require.NoError(t, err)
	require.False(t, check.Valid)

	accounts, err := owner.ListAccounts(t.Context())
	require.NoError(t, err)
	require.Len(t, accounts.Accounts, 2)

	// Staff cannot invite.
	_, err = staff.VerifyPIN(t.Context(), "4321")
	require.NoError(t, err)
	_, err = staff.CreateInvite(t.Context(), identitysdk.CreateInviteRequest{Role: "employee"})
	requireCode(t, err, identitysdk.ErrorCodeNotAuthorized)

	// A disabled account cannot sign in with its phone.
	_, err = owner.SetAccountStatus(t.Context(), staff.Account().ID, "disabled")
	require.NoError(t, err)
	_, err = client.LoginWithPhone(t.Context(), staffPhone, proveDevice(t, client, staffPhone))
	require.Error(t, err)
}

func TestPINLockoutAcrossRequests(t *testing.T) {
	client := identitysdk.NewSDKClient(setupIdentityContainer(t))
	registerOwner(t, client)

	session, err := client.LoginWithPassword(t.Context(), ownerPhone, ownerPassword)
	require.NoError(t, err)

	_, err = session.VerifyPIN(t.Context(), "0000")
	requireCode(t, err, identitysdk.ErrorCodeIncorrectPIN)
	_, err = session.VerifyPIN(t.Context(), "0000")
	requireCode(t, err, identitysdk.ErrorCodeIncorrectPIN)
	_, err = session.VerifyPIN(t.Context(), "0000")
	requireCode(t, err, identitysdk.ErrorCodeLockedOut)

	// The right PIN is refused while the lockout runs.
	_, err = session.VerifyPIN(t.Context(), ownerPIN)
	requireCode(t, err, identitysdk.ErrorCodeLockedOut)

	var apiErr *identitysdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Positive(t, apiErr.RetryAfter)

	require.NoError(t, session.Logout(t.Context()))
	_, err = session.State(t.Context())
	requireCode(t, err, identitysdk.ErrorCodeInvalidToken)
	_, err = session.Me(t.Context())
	requireCode(t, err, identitysdk.ErrorCodeInvalidToken)

	// Signing in again does not lift the lockout.
	again, err := client.LoginWithPassword(t.Context(), ownerPhone, ownerPassword)
	require.NoError(t, err)
	_, err = again.VerifyPIN(t.Context(), ownerPIN)
	requireCode(t, err, identitysdk.ErrorCodeLockedOut)
}
