package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

var ErrNoSigningKey = errors.New("no signing key available")

// IssuedToken is an access token bound to a fresh PIN session.
type IssuedToken struct {
	AccessToken string
	SessionID   string
	ExpiresAt   time.Time
	Account     domain.Account
}

// TokenService signs access tokens and opens the matching PIN session.
type TokenService struct {
	KeyManager *jwtx.KeyManager
	Sessions   *SessionService
	Issuer     string
	Audience   []string
	AccessTTL  time.Duration
	Clock      clockx.Clock
}

// Issue opens a session for acc and returns a signed access token for it.
func (s *TokenService) Issue(ctx context.Context, acc domain.Account, amr string) (IssuedToken, error) {
	log := slogx.FromContext(ctx)

	signer := s.KeyManager.GetSigner()
	if signer == nil {
		log.Error("no signing key available")
		return IssuedToken{}, ErrNoSigningKey
	}

	now := clockx.Or(s.Clock).Now()
	sid := s.Sessions.Begin(acc.ID)
	claims := jwtx.NewAccessClaims(jwtx.AccessParams{
		Subject:  acc.ID,
		SID:      sid,
		AMR:      []string{amr},
		Phone:    acc.Phone,
		Name:     acc.Name,
		Issuer:   s.Issuer,
		Audience: s.Audience,
		TTL:      s.AccessTTL,
		Now:      now,
	})

	token, err := signer.Sign(claims)
	if err != nil {
		log.Error("failed to sign access token", slog.Any("error", err))
		return IssuedToken{}, err
	}

	log.Info("session started",
		slog.String("account_id", acc.ID),
		slog.String("sid", sid),
		slog.String("amr", amr),
	)
	return IssuedToken{
		AccessToken: token,
		SessionID:   sid,
		ExpiresAt:   claims.ExpiresAt.Time,
		Account:     acc,
	}, nil
}
