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
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// AccountService covers owner bootstrap, primary login and team management.
type AccountService struct {
	Store store.Store
	Phone PhoneVerifier
	Clock clockx.Clock

	// ProofSignatures verifies the signature of phone proofs offered as a
	// login credential. Phone-only login is refused while it is nil.
	ProofSignatures jwtx.Verifier
}

func (s *AccountService) now() clockx.Clock { return clockx.Or(s.Clock) }

// SetupComplete reports whether the business has its owner.
func (s *AccountService) SetupComplete(ctx context.Context) (bool, error) {
	cfg, err := s.Store.AppConfig().GetAppConfig(ctx)
	if err != nil {
		return false, err
	}
	return cfg.SetupComplete, nil
}

// RegisterOwner creates the first owner of the business. It refuses once
// any owner exists.
func (s *AccountService) RegisterOwner(ctx context.Context, draft AccountDraft) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input before touching the store
	draft, err := draft.normalize()
	if err != nil {
		return domain.Account{}, err
	}

	// 2. Refuse a second owner
	exists, err := s.Store.Accounts().OwnerExists(ctx)
	if err != nil {
		log.Error("failed to check for owner", slog.Any("error", err))
		return domain.Account{}, err
	}
	if exists {
		log.Warn("owner registration attempted after setup", slog.String("phone", phonex.Mask(draft.Phone)))
		return domain.Account{}, ErrOwnerExists
	}

	// 3. Verify the phone proof
	if err := verifyPhoneProof(ctx, s.Phone, draft.PhoneToken, draft.Phone); err != nil {
		return domain.Account{}, err
	}

	now := s.now().Now()
	owner, err := newAccount(draft, domain.RoleOwner, "", now)
	if err != nil {
		log.Error("failed to build owner account", slog.Any("error", err))
		return domain.Account{}, err
	}

	// 4. Create the owner and complete setup together. The single-owner
	// index catches a racing registration.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Accounts().GetAccountByPhone(ctx, owner.Phone); err == nil {
			return ErrPhoneTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err := tx.Accounts().CreateAccount(ctx, owner); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrOwnerExists
			}
			return err
		}
		return tx.AppConfig().SetSetupComplete(ctx, true, now)
	})
	if err != nil {
		if !errors.Is(err, ErrOwnerExists) && !errors.Is(err, ErrPhoneTaken) {
			log.Error("failed to register owner", slog.Any("error", err))
		}
		return domain.Account{}, err
	}

	log.Info("owner registered",
		slog.String("account_id", owner.ID),
		slog.String("phone", phonex.Mask(owner.Phone)),
	)
	return owner, nil
}

// LoginPassword authenticates by phone and password.
func (s *AccountService) LoginPassword(ctx context.Context, phone, password string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	phone, err := phonex.Normalize(phone)
	if err != nil {
		return domain.Account{}, fieldErr("phone", "must be an international phone number")
	}
	if password == "" {
		return domain.Account{}, fieldErr("password", "is required")
	}

	acc, err := s.Store.Accounts().GetAccountByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("password login for unknown phone", slog.String("phone", phonex.Mask(phone)))
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}

	if err := cryptox.VerifyPassword(password, acc.PasswordHash); err != nil {
		log.Warn("password login failed", slog.String("account_id", acc.ID))
		return domain.Account{}, ErrInvalidCredentials
	}
	if !acc.IsActive() {
		log.Warn("login attempted on inactive account",
			slog.String("account_id", acc.ID),
			slog.String("status", string(acc.Status)),
		)
		return domain.Account{}, ErrNotAuthorized
	}
	return acc, nil
}

// LoginPhone authenticates with a phone proof alone. The proof must carry a
// signature ProofSignatures accepts on top of the claim checks.
func (s *AccountService) LoginPhone(ctx context.Context, phone, token string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	phone, err := phonex.Normalize(phone)
	if err != nil {
		return domain.Account{}, fieldErr("phone", "must be an international phone number")
	}
	if s.ProofSignatures == nil {
		log.Warn("phone login refused, no proof signing key is trusted")
		return domain.Account{}, ErrInvalidCredentials
	}
	if _, err := s.ProofSignatures.Verify(token); err != nil {
		log.Warn("phone login with unsigned or foreign proof",
			slog.String("phone", phonex.Mask(phone)),
			slog.String("reason", err.Error()),
		)
		return domain.Account{}, fmt.Errorf("%w: %w", ErrPhoneProof, err)
	}
	if err := verifyPhoneProof(ctx, s.Phone, token, phone); err != nil {
		return domain.Account{}, err
	}

	acc, err := s.Store.Accounts().GetAccountByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("phone login for unknown phone", slog.String("phone", phonex.Mask(phone)))
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	if !acc.IsActive() {
		return domain.Account{}, ErrNotAuthorized
	}
	return acc, nil
}

// Get returns the current state of an account.
func (s *AccountService) Get(ctx context.Context, id string) (domain.Account, error) {
	acc, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrNotFound
	}
	return acc, err
}

// ListTeam returns every account to an active owner or partner.
func (s *AccountService) ListTeam(ctx context.Context, callerID string) ([]domain.Account, error) {
	if _, err := s.requireTeamManager(ctx, callerID); err != nil {
		return nil, err
	}
	return s.Store.Accounts().ListAccounts(ctx)
}

// SetStatus enables or disables an employee. Owners and partners are out of
// reach; ownership moves only through a transfer.
func (s *AccountService) SetStatus(ctx context.Context, callerID, targetID string, status domain.AccountStatus) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	if !status.Valid() {
		return domain.Account{}, fieldErr("status", "must be active, pending or disabled")
	}
	caller, err := s.requireTeamManager(ctx, callerID)
	if err != nil {
		return domain.Account{}, err
	}

	target, err := s.Store.Accounts().GetAccountByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotAuthorized
		}
		return domain.Account{}, err
	}
	if target.Role != domain.RoleEmployee || target.ID == caller.ID {
		log.Warn("status change refused",
			slog.String("target_id", target.ID),
			slog.String("target_role", string(target.Role)),
		)
		return domain.Account{}, ErrNotAuthorized
	}

	now := s.now().Now()
	if err := s.Store.Accounts().UpdateStatus(ctx, target.ID, status, now); err != nil {
		return domain.Account{}, err
	}
	target.Status = status
	target.UpdatedAt = now

	log.Info("account status changed",
		slog.String("target_id", target.ID),
		slog.String("status", string(status)),
	)
	return target, nil
}

// ChangePhone is the owner's administrative phone change for any account.
func (s *AccountService) ChangePhone(ctx context.Context, callerID, targetID, phone string) (domain.Account, error) {
	log := slogx.FromContext(ctx)

	phone, err := phonex.Normalize(phone)
	if err != nil {
		return domain.Account{}, fieldErr("phone", "must be an international phone number")
	}

	caller, err := s.Store.Accounts().GetAccountByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotAuthorized
		}
		return domain.Account{}, err
	}
	if !caller.IsOwner() || !caller.IsActive() {
		return domain.Account{}, ErrNotAuthorized
	}

	var target domain.Account
	now := s.now().Now()
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		target, err = tx.Accounts().GetAccountByID(ctx, targetID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotAuthorized
			}
			return err
		}
		if err := tx.Accounts().UpdatePhone(ctx, target.ID, phone, phonex.AuthEmail(phone), now); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrPhoneTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	log.Info("account phone changed",
		slog.String("target_id", target.ID),
		slog.String("phone", phonex.Mask(phone)),
	)
	target.Phone = phone
	target.AuthEmail = phonex.AuthEmail(phone)
	target.UpdatedAt = now
	return target, nil
}

func (s *AccountService) requireTeamManager(ctx context.Context, callerID string) (domain.Account, error) {
	caller, err := s.Store.Accounts().GetAccountByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Account{}, ErrNotAuthorized
		}
		return domain.Account{}, err
	}
	if !caller.IsActive() || !caller.Role.CanManageTeam() {
		return domain.Account{}, ErrNotAuthorized
	}
	return caller, nil
}
