package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/pinguard"
)

var transferCodeRe = regexp.MustCompile(`^[A-Z0-9]{8}$`)

func (e *env) initiate(t *testing.T, owner domain.Account, toPhone string) domain.OwnershipTransfer {
	t.Helper()
	e.notifier.EXPECT().SendTransferRequest(gomock.Any(), toPhone, owner.Name, gomock.Any()).Return(nil)
	tr, err := e.transfers.Initiate(context.Background(), owner.ID, toPhone)
	require.NoError(t, err)
	return tr
}

func (e *env) storedTransfer(t *testing.T, code string) domain.OwnershipTransfer {
	t.Helper()
	tr, err := e.store.Transfers().GetTransferByCode(context.Background(), code)
	require.NoError(t, err)
	return tr
}

func (e *env) role(t *testing.T, id string) domain.Role {
	t.Helper()
	acc, err := e.store.Accounts().GetAccountByID(context.Background(), id)
	require.NoError(t, err)
	return acc.Role
}

func TestTransferHappyPath(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	recipient := e.join(t, owner.ID, domain.RoleEmployee, "Rita Recipient", "+61400000002")
	ownerSession := e.login(t, owner)

	// Initiate: pending
	tr := e.initiate(t, owner, recipient.Phone)
	require.Regexp(t, transferCodeRe, tr.Code)
	require.True(t, tr.ExpiresAt.Equal(epoch.Add(24*time.Hour)))
	require.Equal(t, domain.TransferPending, e.storedTransfer(t, tr.Code).Status)

	preview, err := e.transfers.Validate(ctx, tr.Code)
	require.NoError(t, err)
	require.Equal(t, owner.Name, preview.OwnerName)
	require.Equal(t, recipient.Phone, preview.ToPhone)
	require.True(t, preview.ExistingUser)

	// Accept: accepted, toUser set
	e.notifier.EXPECT().SendTransferAccepted(gomock.Any(), owner.Phone, recipient.Name).Return(nil)
	e.clock.Advance(time.Hour)
	_, err = e.transfers.Accept(ctx, tr.Code, recipient.ID)
	require.NoError(t, err)

	stored := e.storedTransfer(t, tr.Code)
	require.Equal(t, domain.TransferAccepted, stored.Status)
	require.Equal(t, recipient.ID, stored.ToUser)
	require.NotNil(t, stored.AcceptedAt)
	require.Equal(t, domain.RoleOwner, e.role(t, owner.ID), "ownership moves only on confirm")

	// Confirm: completed, roles swapped
	e.clock.Advance(time.Hour)
	done, err := e.transfers.Confirm(ctx, tr.Code, ownerSession, "1234")
	require.NoError(t, err)
	require.Equal(t, domain.TransferCompleted, done.Status)

	stored = e.storedTransfer(t, tr.Code)
	require.Equal(t, domain.TransferCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	require.Equal(t, domain.RolePartner, e.role(t, owner.ID))
	require.Equal(t, domain.RoleOwner, e.role(t, recipient.ID))

	// A second confirm changes nothing.
	_, err = e.transfers.Confirm(ctx, tr.Code, ownerSession, "1234")
	require.ErrorIs(t, err, ErrInvalidCode)
	require.Equal(t, domain.RoleOwner, e.role(t, recipient.ID))
}

func TestTransferWrongPhone(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	outsider := e.join(t, owner.ID, domain.RolePartner, "Otto Outsider", "+61400000003")

	tr := e.initiate(t, owner, "+61400000002")

	_, err := e.transfers.Accept(ctx, tr.Code, outsider.ID)
	require.ErrorIs(t, err, ErrPhoneMismatch)
	require.Equal(t, domain.TransferPending, e.storedTransfer(t, tr.Code).Status)

	_, err = e.transfers.Accept(ctx, tr.Code, owner.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = e.transfers.Get(ctx, tr.Code, outsider.ID)
	require.ErrorIs(t, err, ErrInvalidCode)
}

func TestTransferExpiry(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	recipient := e.join(t, owner.ID, domain.RolePartner, "Rita Recipient", "+61400000002")
	ownerSession := e.login(t, owner)

	t.Run("pending past expiry", func(t *testing.T) {
		tr := e.initiate(t, owner, recipient.Phone)
		e.clock.Set(tr.ExpiresAt.Add(time.Second))

		_, err := e.transfers.Validate(ctx, tr.Code)
		require.ErrorIs(t, err, ErrInvalidCode)
		_, err = e.transfers.Accept(ctx, tr.Code, recipient.ID)
		require.ErrorIs(t, err, ErrInvalidCode)

		got, err := e.transfers.Get(ctx, tr.Code, owner.ID)
		require.NoError(t, err)
		require.Equal(t, domain.TransferExpired, got.Status)
		require.Equal(t, domain.TransferExpired, e.storedTransfer(t, tr.Code).Status, "stale status is rewritten")
	})

	t.Run("accepted past expiry", func(t *testing.T) {
		tr := e.initiate(t, owner, recipient.Phone)
		e.notifier.EXPECT().SendTransferAccepted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		_, err := e.transfers.Accept(ctx, tr.Code, recipient.ID)
		require.NoError(t, err)

		e.clock.Set(tr.ExpiresAt)
		_, err = e.transfers.Confirm(ctx, tr.Code, ownerSession, "1234")
		require.ErrorIs(t, err, ErrInvalidCode)
		require.Equal(t, domain.RoleOwner, e.role(t, owner.ID))
	})

	t.Run("stored pending ignored once expired", func(t *testing.T) {
		tr := e.initiate(t, owner, recipient.Phone)

		// Force the stored row back to pending after the deadline.
		e.clock.Set(tr.ExpiresAt.Add(time.Hour))
		require.Equal(t, domain.TransferPending, e.storedTransfer(t, tr.Code).Status)

		_, err := e.transfers.Accept(ctx, tr.Code, recipient.ID)
		require.ErrorIs(t, err, ErrInvalidCode)

		_, err = e.transfers.Active(ctx, owner.ID)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestInitiateConflicts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	partner := e.join(t, owner.ID, domain.RolePartner, "Pat Partner", "+61400000002")

	_, err := e.transfers.Initiate(ctx, partner.ID, "+61400000009")
	require.ErrorIs(t, err, ErrNotAuthorized)

	_, err = e.transfers.Initiate(ctx, owner.ID, owner.Phone)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.transfers.Initiate(ctx, owner.ID, "not a phone")
	require.ErrorIs(t, err, ErrValidation)

	first := e.initiate(t, owner, "+61400000002")
	_, err = e.transfers.Initiate(ctx, owner.ID, "+61400000003")
	require.ErrorIs(t, err, ErrTransferExists)

	active, err := e.transfers.Active(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, first.ID, active.ID)

	// Once the open one lapses a new transfer can start.
	e.clock.Set(first.ExpiresAt)
	second := e.initiate(t, owner, "+61400000003")
	require.NotEqual(t, first.Code, second.Code)
	require.Equal(t, domain.TransferExpired, e.storedTransfer(t, first.Code).Status)
}

func TestCancelIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	recipient := e.join(t, owner.ID, domain.RolePartner, "Rita Recipient", "+61400000002")
	ownerSession := e.login(t, owner)

	tr := e.initiate(t, owner, recipient.Phone)

	_, err := e.transfers.Cancel(ctx, tr.Code, recipient.ID)
	require.ErrorIs(t, err, ErrNotAuthorized)

	cancelled, err := e.transfers.Cancel(ctx, tr.Code, owner.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TransferCancelled, cancelled.Status)

	_, err = e.transfers.Cancel(ctx, tr.Code, owner.ID)
	require.ErrorIs(t, err, ErrInvalidCode)

	// A completed transfer cannot be cancelled either.
	done := e.initiate(t, owner, recipient.Phone)
	e.notifier.EXPECT().SendTransferAccepted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err = e.transfers.Accept(ctx, done.Code, recipient.ID)
	require.NoError(t, err)
	_, err = e.transfers.Confirm(ctx, done.Code, ownerSession, "1234")
	require.NoError(t, err)

	_, err = e.transfers.Cancel(ctx, done.Code, owner.ID)
	require.ErrorIs(t, err, ErrInvalidCode)
	require.Equal(t, domain.TransferCompleted, e.storedTransfer(t, done.Code).Status)
	require.Equal(t, domain.RoleOwner, e.role(t, recipient.ID))
	require.Equal(t, domain.RolePartner, e.role(t, owner.ID))
}

func TestConfirmRequiresPIN(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	recipient := e.join(t, owner.ID, domain.RolePartner, "Rita Recipient", "+61400000002")
	ownerSession := e.login(t, owner)

	tr := e.initiate(t, owner, recipient.Phone)
	e.notifier.EXPECT().SendTransferAccepted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err := e.transfers.Accept(ctx, tr.Code, recipient.ID)
	require.NoError(t, err)

	_, err = e.transfers.Confirm(ctx, tr.Code, ownerSession, "0000")
	require.ErrorIs(t, err, pinguard.ErrIncorrectPIN)
	require.Equal(t, domain.TransferAccepted, e.storedTransfer(t, tr.Code).Status)

	recipientSession := e.login(t, recipient)
	_, err = e.transfers.Confirm(ctx, tr.Code, recipientSession, "1234")
	require.ErrorIs(t, err, ErrNotAuthorized)
}

// slowPINs lets the transfer expire while the PIN is being checked.
type slowPINs struct {
	next  PINVerifier
	clock *clockx.FakeClock
	by    time.Duration
}

func (p slowPINs) VerifyPIN(ctx context.Context, pr Principal, pin string) (SessionState, error) {
	st, err := p.next.VerifyPIN(ctx, pr, pin)
	p.clock.Advance(p.by)
	return st, err
}

func TestConfirmRefusesTransferExpiredDuringPINCheck(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)
	recipient := e.join(t, owner.ID, domain.RolePartner, "Rita Recipient", "+61400000002")
	ownerSession := e.login(t, owner)

	tr := e.initiate(t, owner, recipient.Phone)
	e.notifier.EXPECT().SendTransferAccepted(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	_, err := e.transfers.Accept(ctx, tr.Code, recipient.ID)
	require.NoError(t, err)

	e.transfers.PINs = slowPINs{next: e.sessions, clock: e.clock, by: domain.TransferTTL}
	_, err = e.transfers.Confirm(ctx, tr.Code, ownerSession, "1234")
	require.ErrorIs(t, err, ErrInvalidCode)

	require.Equal(t, domain.TransferAccepted, e.storedTransfer(t, tr.Code).Status)
	require.Equal(t, domain.RoleOwner, e.role(t, owner.ID))
	require.Equal(t, domain.RolePartner, e.role(t, recipient.ID))
}

func TestRegisterRecipient(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	owner := e.owner(t)

	tr := e.initiate(t, owner, "+61400000002")

	preview, err := e.transfers.Validate(ctx, tr.Code)
	require.NoError(t, err)
	require.False(t, preview.ExistingUser)

	_, err = e.transfers.RegisterRecipient(ctx, tr.Code, draft("Wrong", "+61400000003"))
	require.ErrorIs(t, err, ErrPhoneMismatch)

	acc, err := e.transfers.RegisterRecipient(ctx, tr.Code, draft("Rita Recipient", "+61400000002"))
	require.NoError(t, err)
	require.Equal(t, domain.RolePartner, acc.Role)
	require.Equal(t, owner.ID, acc.InvitedBy)
	require.Equal(t, domain.TransferPending, e.storedTransfer(t, tr.Code).Status, "registration does not accept")

	_, err = e.transfers.RegisterRecipient(ctx, tr.Code, draft("Rita Again", "+61400000002"))
	require.ErrorIs(t, err, ErrPhoneTaken)
}
