package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/idx"
	"github.com/aussiebroadwan/tilldesk/pkg/notify"
	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// PINVerifier re-verifies a session PIN through its lockout guard.
type PINVerifier interface {
	VerifyPIN(ctx context.Context, p Principal, pin string) (SessionState, error)
}

// TransferPreview is what an unauthenticated holder of a transfer code may
// learn about it.
type TransferPreview struct {
	OwnerName    string
	ToPhone      string
	ExistingUser bool
}

// TransferService runs the ownership transfer protocol:
// pending -> accepted -> completed, with cancel and lazy expiry.
type TransferService struct {
	Store    store.Store
	Phone    PhoneVerifier
	PINs     PINVerifier
	Notifier notify.Dispatcher
	Clock    clockx.Clock
}

func (s *TransferService) now() clockx.Clock { return clockx.Or(s.Clock) }

// Initiate starts a transfer from the owner to toPhone and sends the code
// there.
func (s *TransferService) Initiate(ctx context.Context, ownerID, toPhone string) (domain.OwnershipTransfer, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	toPhone, err := phonex.Normalize(toPhone)
	if err != nil {
		return domain.OwnershipTransfer{}, fieldErr("to_phone", "must be an international phone number")
	}

	// 2. Reload the owner
	owner, err := s.loadOwner(ctx, s.Store, ownerID)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}
	if owner.Phone == toPhone {
		return domain.OwnershipTransfer{}, fieldErr("to_phone", "cannot transfer to yourself")
	}

	// 3. Reject while another transfer is open; retire a stale one
	open, err := s.Store.Transfers().GetOpenTransferByOwner(ctx, owner.ID)
	switch {
	case err == nil:
		if open.EffectiveStatus(s.now().Now()).Open() {
			log.Warn("transfer already in progress", slog.String("transfer_id", open.ID))
			return domain.OwnershipTransfer{}, ErrTransferExists
		}
		s.expire(ctx, open)
	case !errors.Is(err, store.ErrNotFound):
		return domain.OwnershipTransfer{}, err
	}

	// 4. Create with a fresh code, regenerating once on collision
	now := s.now().Now()
	var t domain.OwnershipTransfer
	for attempt := 0; ; attempt++ {
		code, err := cryptox.GenerateCode(cryptox.TransferCodeLength, cryptox.CodeAlphabet)
		if err != nil {
			return domain.OwnershipTransfer{}, err
		}
		t = domain.OwnershipTransfer{
			ID:        idx.NewAt(now).String(),
			Code:      code,
			FromUser:  owner.ID,
			ToPhone:   toPhone,
			Status:    domain.TransferPending,
			ExpiresAt: cryptox.GetExpiration(now, domain.TransferTTL),
			CreatedAt: now,
		}
		err = s.Store.Transfers().CreateTransfer(ctx, t)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrAlreadyExists) {
			log.Error("failed to create transfer", slog.Any("error", err))
			return domain.OwnershipTransfer{}, err
		}

		// Either the code collided or a racing Initiate won the
		// open-transfer index.
		if _, openErr := s.Store.Transfers().GetOpenTransferByOwner(ctx, owner.ID); openErr == nil {
			return domain.OwnershipTransfer{}, ErrTransferExists
		}
		if attempt == 1 {
			return domain.OwnershipTransfer{}, fmt.Errorf("transfer code collided twice: %w", err)
		}
		log.Warn("transfer code collision, regenerating")
	}

	log.Info("ownership transfer initiated",
		slog.String("transfer_id", t.ID),
		slog.String("to_phone", phonex.Mask(toPhone)),
		slog.Time("expires_at", t.ExpiresAt),
	)

	// 5. Notification is best effort
	if err := s.Notifier.SendTransferRequest(ctx, toPhone, owner.Name, t.Code); err != nil {
		log.Warn("transfer notification failed", slog.Any("error", err))
	}
	return t, nil
}

// Validate previews a pending transfer for its recipient.
func (s *TransferService) Validate(ctx context.Context, code string) (TransferPreview, error) {
	t, err := s.loadByCode(ctx, code, domain.TransferPending)
	if err != nil {
		return TransferPreview{}, err
	}

	owner, err := s.Store.Accounts().GetAccountByID(ctx, t.FromUser)
	if err != nil {
		return TransferPreview{}, err
	}

	existing := true
	if _, err := s.Store.Accounts().GetAccountByPhone(ctx, t.ToPhone); errors.Is(err, store.ErrNotFound) {
		existing = false
	} else if err != nil {
		return TransferPreview{}, err
	}

	return TransferPreview{
		OwnerName:    owner.Name,
		ToPhone:      t.ToPhone,
		ExistingUser: existing,
	}, nil
}

// RegisterRecipient creates the partner account for a recipient who does not
// have one yet. Ownership still needs Accept and Confirm.
func (s *TransferService) RegisterRecipient(ctx context.Context, code string, draft AccountDraft) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	draft, err := draft.normalize()
	if err != nil {
		return domain.Account{}, err
	}
	t, err := s.loadByCode(ctx, code, domain.TransferPending)
	if err != nil {
		return domain.Account{}, err
	}
	if draft.Phone != t.ToPhone {
		log.Warn("transfer registration with wrong phone", slog.String("transfer_id", t.ID))
		return domain.Account{}, ErrPhoneMismatch
	}
	if err := verifyPhoneProof(ctx, s.Phone, draft.PhoneToken, draft.Phone); err != nil {
		return domain.Account{}, err
	}

	acc, err := newAccount(draft, domain.RolePartner, t.FromUser, s.now().Now())
	if err != nil {
		return domain.Account{}, err
	}
	if err := s.Store.Accounts().CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Account{}, ErrPhoneTaken
		}
		log.Error("failed to create transfer recipient", slog.Any("error", err))
		return domain.Account{}, err
	}

	log.Info("transfer recipient registered",
		slog.String("transfer_id", t.ID),
		slog.String("account_id", acc.ID),
	)
	return acc, nil
}

// Accept binds a pending transfer to the recipient whose phone it was sent to.
func (s *TransferService) Accept(ctx context.Context, code, recipientID string) (domain.OwnershipTransfer, error) {
	log := slogx.FromContext(ctx)

	t, err := s.loadByCode(ctx, code, domain.TransferPending)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}

	recipient, err := s.Store.Accounts().GetAccountByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OwnershipTransfer{}, ErrNotAuthorized
		}
		return domain.OwnershipTransfer{}, err
	}
	if !recipient.IsActive() || recipient.ID == t.FromUser {
		return domain.OwnershipTransfer{}, ErrNotAuthorized
	}
	if recipient.Phone != t.ToPhone {
		log.Warn("transfer accept with wrong phone",
			slog.String("transfer_id", t.ID),
			slog.String("account_id", recipient.ID),
		)
		return domain.OwnershipTransfer{}, ErrPhoneMismatch
	}

	now := s.now().Now()
	if err := s.Store.Transfers().SetAccepted(ctx, t.ID, recipient.ID, now); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.OwnershipTransfer{}, ErrInvalidCode
		}
		return domain.OwnershipTransfer{}, err
	}
	t.Status = domain.TransferAccepted
	t.ToUser = recipient.ID
	t.AcceptedAt = &now

	log.Info("ownership transfer accepted",
		slog.String("transfer_id", t.ID),
		slog.String("to_user", recipient.ID),
	)

	if owner, err := s.Store.Accounts().GetAccountByID(ctx, t.FromUser); err == nil {
		if err := s.Notifier.SendTransferAccepted(ctx, owner.Phone, recipient.Name); err != nil {
			log.Warn("transfer accepted notification failed", slog.Any("error", err))
		}
	}
	return t, nil
}

// Confirm completes an accepted transfer after the owner re-enters their PIN.
// The status change and both role changes commit together.
func (s *TransferService) Confirm(ctx context.Context, code string, owner Principal, pin string) (domain.OwnershipTransfer, error) {
	log := slogx.FromContext(ctx)

	// 1. The transfer must be accepted and unexpired
	t, err := s.loadByCode(ctx, code, domain.TransferAccepted)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}

	// 2. Only the initiating owner, still owner, may confirm
	if t.FromUser != owner.AccountID {
		log.Warn("transfer confirm by non-initiator", slog.String("transfer_id", t.ID))
		return domain.OwnershipTransfer{}, ErrNotAuthorized
	}
	if _, err := s.loadOwner(ctx, s.Store, owner.AccountID); err != nil {
		return domain.OwnershipTransfer{}, err
	}

	// 3. Re-verify the PIN through the session guard
	if _, err := s.PINs.VerifyPIN(ctx, owner, pin); err != nil {
		return domain.OwnershipTransfer{}, err
	}

	// 4. Complete and swap roles atomically
	now := s.now().Now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		recipient, err := tx.Accounts().GetAccountByID(ctx, t.ToUser)
		if err != nil {
			return err
		}
		if !recipient.IsActive() {
			return ErrNotAuthorized
		}

		// Expiry is checked again here since the PIN check above takes time.
		if err := tx.Transfers().SetCompleted(ctx, t.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidCode
			}
			return err
		}

		// Demote first so the single-owner index never sees two owners.
		if err := tx.Accounts().UpdateRole(ctx, t.FromUser, domain.RolePartner, now); err != nil {
			return err
		}
		return tx.Accounts().UpdateRole(ctx, t.ToUser, domain.RoleOwner, now)
	})
	if err != nil {
		if !isExpected(err) {
			log.Error("failed to complete transfer", slog.Any("error", err))
		}
		return domain.OwnershipTransfer{}, err
	}
	t.Status = domain.TransferCompleted
	t.CompletedAt = &now

	log.Info("ownership transferred",
		slog.String("transfer_id", t.ID),
		slog.String("from_user", t.FromUser),
		slog.String("to_user", t.ToUser),
	)
	return t, nil
}

// Cancel ends an open transfer. Cancelling a finished one is an error and
// changes nothing.
func (s *TransferService) Cancel(ctx context.Context, code, ownerID string) (domain.OwnershipTransfer, error) {
	log := slogx.FromContext(ctx)

	t, err := s.loadByCode(ctx, code, domain.TransferPending, domain.TransferAccepted)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}
	if t.FromUser != ownerID {
		return domain.OwnershipTransfer{}, ErrNotAuthorized
	}

	if err := s.Store.Transfers().TransitionStatus(ctx, t.ID, t.Status, domain.TransferCancelled, store.TransitionTimes{}); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return domain.OwnershipTransfer{}, ErrInvalidCode
		}
		return domain.OwnershipTransfer{}, err
	}
	t.Status = domain.TransferCancelled

	log.Info("ownership transfer cancelled", slog.String("transfer_id", t.ID))
	return t, nil
}

// Get returns a transfer, with its effective status, to a party of it: the
// initiator, the accepting account, or the account holding toPhone.
func (s *TransferService) Get(ctx context.Context, code, callerID string) (domain.OwnershipTransfer, error) {
	t, err := s.lookup(ctx, code)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}

	if callerID != t.FromUser && callerID != t.ToUser {
		caller, err := s.Store.Accounts().GetAccountByID(ctx, callerID)
		if err != nil || caller.Phone != t.ToPhone {
			return domain.OwnershipTransfer{}, ErrInvalidCode
		}
	}
	return t, nil
}

// Active returns the owner's open transfer.
func (s *TransferService) Active(ctx context.Context, ownerID string) (domain.OwnershipTransfer, error) {
	t, err := s.Store.Transfers().GetOpenTransferByOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.OwnershipTransfer{}, ErrNotFound
		}
		return domain.OwnershipTransfer{}, err
	}
	if s.applyExpiry(ctx, &t) {
		return domain.OwnershipTransfer{}, ErrNotFound
	}
	return t, nil
}

// lookup loads a transfer by code and applies lazy expiry.
func (s *TransferService) lookup(ctx context.Context, code string) (domain.OwnershipTransfer, error) {
	code = CanonicalCode(code)
	if err := cryptox.ValidateCode(code, cryptox.TransferCodeLength); err != nil {
		return domain.OwnershipTransfer{}, fieldErr("code", "must be 8 letters or digits")
	}

	t, err := s.Store.Transfers().GetTransferByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("transfer code not found")
			return domain.OwnershipTransfer{}, ErrInvalidCode
		}
		return domain.OwnershipTransfer{}, err
	}
	s.applyExpiry(ctx, &t)
	return t, nil
}

// loadByCode is lookup plus a check that the effective status is one of want.
func (s *TransferService) loadByCode(ctx context.Context, code string, want ...domain.TransferStatus) (domain.OwnershipTransfer, error) {
	t, err := s.lookup(ctx, code)
	if err != nil {
		return domain.OwnershipTransfer{}, err
	}
	for _, w := range want {
		if t.Status == w {
			return t, nil
		}
	}
	slogx.FromContext(ctx).Warn("transfer code rejected",
		slog.String("transfer_id", t.ID),
		slog.String("status", string(t.Status)),
	)
	return domain.OwnershipTransfer{}, ErrInvalidCode
}

// applyExpiry overrides t.Status with its effective status and, when the
// stored one is stale, rewrites it. Reports whether t expired.
func (s *TransferService) applyExpiry(ctx context.Context, t *domain.OwnershipTransfer) bool {
	eff := t.EffectiveStatus(s.now().Now())
	if eff == t.Status {
		return false
	}
	s.expire(ctx, *t)
	t.Status = eff
	return true
}

// expire is best effort; the effective status is authoritative either way.
func (s *TransferService) expire(ctx context.Context, t domain.OwnershipTransfer) {
	err := s.Store.Transfers().TransitionStatus(ctx, t.ID, t.Status, domain.TransferExpired, store.TransitionTimes{})
	if err != nil && !errors.Is(err, store.ErrConflict) {
		slogx.FromContext(ctx).Warn("failed to persist transfer expiry",
			slog.String("transfer_id", t.ID),
			slog.Any("error", err),
		)
	}
}

func (s *TransferService) loadOwner(ctx context.Context, st store.Store, id string) (domain.Account, error) {
	acc, err := st.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotAuthorized
		}
		return domain.Account{}, err
	}
	if !acc.IsOwner() || !acc.IsActive() {
		slogx.FromContext(ctx).Warn("owner-only transfer action refused", slog.String("account_id", acc.ID))
		return domain.Account{}, ErrNotAuthorized
	}
	return acc, nil
}
