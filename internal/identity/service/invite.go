package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/idx"
	"github.com/aussiebroadwan/tilldesk/pkg/notify"
	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

type InviteService struct {
	Store    store.Store
	Phone    PhoneVerifier
	Notifier notify.Dispatcher
	Clock    clockx.Clock
}

func (s *InviteService) now() clockx.Clock { return clockx.Or(s.Clock) }

// CanonicalCode trims and upper-cases user-entered codes.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateInvite issues a 6 character invite code for role. Only an active
// owner may invite. When notifyPhone is set the code is sent to it.
func (s *InviteService) CreateInvite(ctx context.Context, issuerID string, role domain.Role, notifyPhone string) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	if !role.Invitable() {
		log.Warn("invite requested for non-invitable role", slog.String("role", string(role)))
		return domain.InviteCode{}, ErrInvalidRole
	}
	if notifyPhone != "" {
		p, err := phonex.Normalize(notifyPhone)
		if err != nil {
			return domain.InviteCode{}, fieldErr("phone", "must be an international phone number")
		}
		notifyPhone = p
	}

	// 2. The issuer must currently be the owner
	if _, err := s.requireOwner(ctx, issuerID); err != nil {
		return domain.InviteCode{}, err
	}

	// 3. Persist, regenerating once on a code collision
	inv, err := s.insertInvite(ctx, s.Store, issuerID, role)
	if err != nil {
		log.Error("failed to create invite", slog.Any("error", err))
		return domain.InviteCode{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("role", string(inv.Role)),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	// 4. Notification is best effort
	if notifyPhone != "" {
		if err := s.Notifier.SendInvite(ctx, notifyPhone, inv.Code, string(inv.Role)); err != nil {
			log.Warn("invite notification failed", slog.Any("error", err))
		}
	}
	return inv, nil
}

// ValidateInvite reports the role an invite code grants. Unknown, expired and
// used codes are indistinguishable to the caller.
func (s *InviteService) ValidateInvite(ctx context.Context, code string) (domain.Role, error) {
	code = CanonicalCode(code)
	if err := cryptox.ValidateCode(code, cryptox.InviteCodeLength); err != nil {
		return "", fieldErr("code", "must be 6 letters or digits")
	}

	inv, err := s.loadRedeemable(ctx, s.Store, code)
	if err != nil {
		return "", err
	}
	return inv.Role, nil
}

// RedeemInvite creates an account from a valid invite and consumes it. The
// account and the used flag commit together or not at all.
func (s *InviteService) RedeemInvite(ctx context.Context, code string, draft AccountDraft) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	code = CanonicalCode(code)
	if err := cryptox.ValidateCode(code, cryptox.InviteCodeLength); err != nil {
		return domain.Account{}, fieldErr("code", "must be 6 letters or digits")
	}
	draft, err := draft.normalize()
	if err != nil {
		return domain.Account{}, err
	}

	// 2. Verify the phone proof
	if err := verifyPhoneProof(ctx, s.Phone, draft.PhoneToken, draft.Phone); err != nil {
		return domain.Account{}, err
	}

	// 3. Re-validate, create and mark used in one transaction
	var acc domain.Account
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		inv, err := s.loadRedeemable(ctx, tx, code)
		if err != nil {
			return err
		}

		if _, err := tx.Accounts().GetAccountByPhone(ctx, draft.Phone); err == nil {
			return ErrPhoneTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		now := s.now().Now()
		acc, err = newAccount(draft, inv.Role, inv.CreatedBy, now)
		if err != nil {
			return err
		}
		if err := tx.Accounts().CreateAccount(ctx, acc); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrPhoneTaken
			}
			return err
		}

		if err := tx.Invites().MarkInviteUsed(ctx, inv.ID, acc.ID, now); err != nil {
			if errors.Is(err, store.ErrConflict) {
				log.Warn("invite consumed concurrently", slog.String("invite_id", inv.ID))
				return ErrInvalidCode
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !isExpected(err) {
			log.Error("failed to redeem invite", slog.Any("error", err))
		}
		return domain.Account{}, err
	}

	log.Info("invite redeemed",
		slog.String("account_id", acc.ID),
		slog.String("role", string(acc.Role)),
		slog.String("invited_by", acc.InvitedBy),
	)
	return acc, nil
}

// RevokeInvite deletes an invite. Accounts already created from it are
// unaffected.
func (s *InviteService) RevokeInvite(ctx context.Context, issuerID, inviteID string) error {
	log := slogx.FromContext(ctx)

	if _, err := s.requireOwner(ctx, issuerID); err != nil {
		return err
	}
	if err := s.Store.Invites().DeleteInvite(ctx, inviteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	log.Info("invite revoked", slog.String("invite_id", inviteID))
	return nil
}

// RegenerateInvite replaces an unused invite with a fresh code and expiry
// for the same role.
func (s *InviteService) RegenerateInvite(ctx context.Context, issuerID, inviteID string) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	if _, err := s.requireOwner(ctx, issuerID); err != nil {
		return domain.InviteCode{}, err
	}

	var fresh domain.InviteCode
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		old, err := tx.Invites().GetInviteByID(ctx, inviteID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidCode
			}
			return err
		}
		if old.Used {
			return ErrInvalidCode
		}
		if err := tx.Invites().DeleteInvite(ctx, old.ID); err != nil {
			return err
		}
		fresh, err = s.insertInvite(ctx, tx, issuerID, old.Role)
		return err
	})
	if err != nil {
		return domain.InviteCode{}, err
	}

	log.Info("invite regenerated",
		slog.String("old_invite_id", inviteID),
		slog.String("invite_id", fresh.ID),
	)
	return fresh, nil
}

// ListInvites returns the owner's invites, newest first.
func (s *InviteService) ListInvites(ctx context.Context, issuerID string) ([]domain.InviteCode, error) {
	if _, err := s.requireOwner(ctx, issuerID); err != nil {
		return nil, err
	}
	return s.Store.Invites().ListInvitesByCreator(ctx, issuerID)
}

func (s *InviteService) requireOwner(ctx context.Context, id string) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotAuthorized
		}
		return domain.Account{}, err
	}
	if !acc.IsOwner() || !acc.IsActive() {
		slogx.FromContext(ctx).Warn("owner-only invite action refused",
			slog.String("account_id", acc.ID),
			slog.String("role", string(acc.Role)),
		)
		return domain.Account{}, ErrNotAuthorized
	}
	return acc, nil
}

// loadRedeemable fetches an invite by code and checks it is unused and
// unexpired. Every failure collapses to ErrInvalidCode; the log keeps the
// reason.
func (s *InviteService) loadRedeemable(ctx context.Context, st store.Store, code string) (domain.InviteCode, error) {
	log := slogx.FromContext(ctx)

	inv, err := st.Invites().GetInviteByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("invite code not found")
			return domain.InviteCode{}, ErrInvalidCode
		}
		return domain.InviteCode{}, err
	}

	now := s.now().Now()
	if !inv.IsValid(now) {
		reason := "expired"
		if inv.Used {
			reason = "used"
		}
		log.Warn("invite code rejected",
			slog.String("invite_id", inv.ID),
			slog.String("reason", reason),
		)
		return domain.InviteCode{}, ErrInvalidCode
	}
	return inv, nil
}

func (s *InviteService) insertInvite(ctx context.Context, st store.Store, issuerID string, role domain.Role) (domain.InviteCode, error) {
	now := s.now().Now()
	var lastErr error
	for range 2 {
		code, err := cryptox.GenerateCode(cryptox.InviteCodeLength, cryptox.CodeAlphabet)
		if err != nil {
			return domain.InviteCode{}, err
		}
		inv := domain.InviteCode{
			ID:        idx.NewAt(now).String(),
			Code:      code,
			Role:      role,
			CreatedBy: issuerID,
			ExpiresAt: cryptox.GetExpiration(now, domain.InviteTTL),
			CreatedAt: now,
		}
		lastErr = st.Invites().CreateInvite(ctx, inv)
		if lastErr == nil {
			return inv, nil
		}
		if !errors.Is(lastErr, store.ErrAlreadyExists) {
			return domain.InviteCode{}, lastErr
		}
		slogx.FromContext(ctx).Warn("invite code collision, regenerating")
	}
	return domain.InviteCode{}, fmt.Errorf("invite code collided twice: %w", lastErr)
}

// isExpected reports whether err is a domain outcome rather than an
// infrastructure failure.
func isExpected(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrInvalidCode, ErrNotAuthorized, ErrPhoneMismatch,
		ErrOwnerExists, ErrTransferExists, ErrPhoneTaken, ErrPhoneProof,
		ErrInvalidRole, ErrInvalidCredentials, ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
