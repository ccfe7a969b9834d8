package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
)

var inviteCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func TestCreateInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	e.notifier.EXPECT().SendInvite(gomock.Any(), "+61400000005", gomock.Any(), "employee").Return(nil)

	inv, err := e.invites.CreateInvite(ctx, owner.ID, domain.RoleEmployee, "+61 400 000 005")
	require.NoError(t, err)
	require.Regexp(t, inviteCodeRe, inv.Code)
	require.False(t, inv.Used)
	require.True(t, inv.ExpiresAt.Equal(epoch.Add(7*24*time.Hour)))

	_, err = e.invites.CreateInvite(ctx, owner.ID, domain.RoleOwner, "")
	require.ErrorIs(t, err, ErrInvalidRole)

	partner := e.join(t, owner.ID, domain.RolePartner, "Pat Partner", "+61400000002")
	_, err = e.invites.CreateInvite(ctx, partner.ID, domain.RoleEmployee, "")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

func TestInviteSingleUse(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	inv, err := e.invites.CreateInvite(ctx, owner.ID, domain.RoleEmployee, "")
	require.NoError(t, err)

	role, err := e.invites.ValidateInvite(ctx, inv.Code)
	require.NoError(t, err)
	require.Equal(t, domain.RoleEmployee, role)

	a, err := e.invites.RedeemInvite(ctx, inv.Code, draft("Alice", "+61400000002"))
	require.NoError(t, err)
	require.Equal(t, domain.RoleEmployee, a.Role)
	require.Equal(t, domain.StatusActive, a.Status)
	require.Equal(t, owner.ID, a.InvitedBy)

	_, err = e.invites.RedeemInvite(ctx, inv.Code, draft("Bob", "+61400000003"))
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = e.store.Accounts().GetAccountByPhone(ctx, "+61400000003")
	require.Error(t, err, "failed redemption must not leave an account behind")

	_, err = e.invites.ValidateInvite(ctx, inv.Code)
	require.ErrorIs(t, err, ErrInvalidCode)

	stored, err := e.store.Invites().GetInviteByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, stored.UsedBy)
}

func TestInviteExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	inv, err := e.invites.CreateInvite(ctx, owner.ID, domain.RolePartner, "")
	require.NoError(t, err)

	// expiresAt = now + 1s
	e.clock.Set(inv.ExpiresAt.Add(-time.Second))
	_, err = e.invites.ValidateInvite(ctx, inv.Code)
	require.NoError(t, err)

	// expiresAt = now - 1s
	e.clock.Set(inv.ExpiresAt.Add(time.Second))
	_, err = e.invites.ValidateInvite(ctx, inv.Code)
	require.ErrorIs(t, err, ErrInvalidCode)

	_, err = e.invites.RedeemInvite(ctx, inv.Code, draft("Late", "+61400000002"))
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestValidateInviteInput(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	inv, err := e.invites.CreateInvite(ctx, owner.ID, domain.RoleEmployee, "")
	require.NoError(t, err)

	_, err = e.invites.ValidateInvite(ctx, "  "+inv.Code+" ")
	require.NoError(t, err, "surrounding space is ignored")

	for _, code := range []string{"", "ABC", "ABCDEFG", "AB-12C"} {
		_, err := e.invites.ValidateInvite(ctx, code)
		require.ErrorIs(t, err, ErrValidation, code)
	}

	_, err = e.invites.ValidateInvite(ctx, "ZZZZZZ")
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestRedeemInviteRejectsTakenPhone(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	inv, err := e.invites.CreateInvite(ctx, owner.ID, domain.RoleEmployee, "")
	require.NoError(t, err)

	_, err = e.invites.RedeemInvite(ctx, inv.Code, draft("Copy", owner.Phone))
	require.ErrorIs(t, err, ErrPhoneTaken)

	_, err = e.invites.ValidateInvite(ctx, inv.Code)
	require.NoError(t, err, "invite stays redeemable")
}

func TestRevokeAndRegenerateInvite(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	first, err := e.invites.CreateInvite(ctx, owner.ID, domain.RolePartner, "")
	require.NoError(t, err)
	e.clock.Advance(time.Minute)

	second, err := e.invites.RegenerateInvite(ctx, owner.ID, first.ID)
	require.NoError(t, err)
	require.NotEqual(t, first.Code, second.Code)
	require.Equal(t, domain.RolePartner, second.Role)
	require.True(t, second.ExpiresAt.After(first.ExpiresAt))

	_, err = e.invites.ValidateInvite(ctx, first.Code)
	require.ErrorIs(t, err, ErrInvalidCode)

	list, err := e.invites.ListInvites(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, e.invites.RevokeInvite(ctx, owner.ID, second.ID))
	require.ErrorIs(t, e.invites.RevokeInvite(ctx, owner.ID, second.ID), ErrInvalidCode)

	_, err = e.invites.ValidateInvite(ctx, second.Code)
	require.ErrorIs(t, err, ErrInvalidCode)

	used, err := e.invites.CreateInvite(ctx, owner.ID, domain.RoleEmployee, "")
	require.NoError(t, err)
	_, err = e.invites.RedeemInvite(ctx, used.Code, draft("Eve", "+61400000003"))
	require.NoError(t, err)
	_, err = e.invites.RegenerateInvite(ctx, owner.ID, used.ID)
	require.ErrorIs(t, err, ErrInvalidCode)
}
