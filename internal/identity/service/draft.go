package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/idx"
	"github.com/aussiebroadwan/tilldesk/pkg/phoneauth"
	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

const (
	MaxNameLength     = 80
	MinPasswordLength = 8
)

// PhoneVerifier checks a phone-proof token against the phone it claims.
type PhoneVerifier interface {
	Verify(token, expectedPhone string) phoneauth.Result
}

// AccountDraft is the input for any path that creates an account.
// Password and PIN are optional; a phone-only account gets a generated
// password.
type AccountDraft struct {
	Name       string
	Phone      string
	PhoneToken string
	Password   string
	PIN        string
}

// normalize validates the draft and returns it with the phone in E.164 form.
func (d AccountDraft) normalize() (AccountDraft, error) {
	d.Name = strings.TrimSpace(d.Name)
	switch {
	case d.Name == "":
		return d, fieldErr("name", "is required")
	case utf8.RuneCountInString(d.Name) > MaxNameLength:
		return d, fieldErr("name", fmt.Sprintf("must be at most %d characters", MaxNameLength))
	}

	phone, err := phonex.Normalize(d.Phone)
	if err != nil {
		return d, fieldErr("phone", "must be an international phone number")
	}
	d.Phone = phone

	if strings.TrimSpace(d.PhoneToken) == "" {
		return d, fieldErr("phone_token", "is required")
	}
	if d.Password != "" && utf8.RuneCountInString(d.Password) < MinPasswordLength {
		return d, fieldErr("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if d.PIN != "" {
		if err := cryptox.ValidatePIN(d.PIN); err != nil {
			return d, fieldErr("pin", "must be exactly 4 digits")
		}
	}
	return d, nil
}

// verifyPhoneProof runs the phone identity verifier and wraps its reason in
// ErrPhoneProof.
func verifyPhoneProof(ctx context.Context, v PhoneVerifier, token, phone string) error {
	res := v.Verify(token, phone)
	if res.Valid {
		return nil
	}
	slogx.FromContext(ctx).Warn("phone proof rejected",
		slog.String("phone", phonex.Mask(phone)),
		slog.Any("reason", res.Err),
	)
	return fmt.Errorf("%w: %w", ErrPhoneProof, res.Err)
}

// newAccount builds the account record for a validated draft.
func newAccount(d AccountDraft, role domain.Role, invitedBy string, now time.Time) (domain.Account, error) {
	password := d.Password
	if password == "" {
		generated, err := cryptox.GeneratePassword()
		if err != nil {
			return domain.Account{}, err
		}
		password = generated
	}
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, err
	}

	var pinHash string
	if d.PIN != "" {
		pinHash = cryptox.HashPIN(d.PIN)
	}

	return domain.Account{
		ID:           idx.NewAt(now).String(),
		Name:         d.Name,
		Phone:        d.Phone,
		AuthEmail:    phonex.AuthEmail(d.Phone),
		PINHash:      pinHash,
		PasswordHash: hash,
		Role:         role,
		Status:       domain.StatusActive,
		InvitedBy:    invitedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
