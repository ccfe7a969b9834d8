// Package phoneproof is a built-in phone verification provider for
// deployments without an external one. It texts a timed code to the phone
// and exchanges a correct code for a signed proof token that
// pkg/phoneauth accepts.
package phoneproof

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/jwtx"
	"github.com/aussiebroadwan/tilldesk/pkg/notify"
	"github.com/aussiebroadwan/tilldesk/pkg/phoneauth"
	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// DefaultProofTTL is the lifetime of an issued proof token.
const DefaultProofTTL = 10 * time.Minute

var (
	ErrInvalidPhone = errors.New("phone number is not valid")
	ErrInvalidCode  = errors.New("verification code is not valid")
	ErrDelivery     = errors.New("verification code could not be sent")
)

type Config struct {
	// Key derives the per-phone TOTP secrets. It must stay stable for
	// codes to survive a restart.
	Key      []byte
	Issuer   string
	Audience string
	TTL      time.Duration
	// DevEcho returns the code in the challenge response. Never enable in
	// production.
	DevEcho bool
	Clock   clockx.Clock
}

type Challenge struct {
	Phone     string
	ExpiresAt time.Time
	Code      string // only with DevEcho
}

type Proof struct {
	Token     string
	ExpiresAt time.Time
}

type Provider struct {
	cfg    Config
	signer jwtx.Signer
	sender notify.CodeSender
}

func New(cfg Config, signer jwtx.Signer, sender notify.CodeSender) *Provider {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultProofTTL
	}
	cfg.Clock = clockx.Or(cfg.Clock)
	return &Provider{cfg: cfg, signer: signer, sender: sender}
}

// Challenge sends a verification code to phone.
func (p *Provider) Challenge(ctx context.Context, phone string) (Challenge, error) {
	log := slogx.FromContext(ctx)

	phone, err := phonex.Normalize(phone)
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: %w", ErrInvalidPhone, err)
	}

	now := p.cfg.Clock.Now()
	code, err := cryptox.GenerateTimedProof(cryptox.DeriveProofSecret(p.cfg.Key, phone), now)
	if err != nil {
		return Challenge{}, err
	}

	if err := p.sender.SendVerificationCode(ctx, phone, code); err != nil {
		log.Error("failed to send verification code",
			slog.String("phone", phonex.Mask(phone)),
			slog.Any("error", err),
		)
		return Challenge{}, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	log.Info("verification code sent", slog.String("phone", phonex.Mask(phone)))
	ch := Challenge{Phone: phone, ExpiresAt: now.Add(cryptox.ProofPeriod)}
	if p.cfg.DevEcho {
		ch.Code = code
	}
	return ch, nil
}

// SignatureVerifier checks that a proof token was signed by this provider
// and carries its issuer, audience and an unexpired exp.
func (p *Provider) SignatureVerifier() (jwtx.Verifier, error) {
	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(p.signer); err != nil {
		return nil, fmt.Errorf("register phone proof key: %w", err)
	}
	return jwtx.NewVerifierEdDSA(keys, jwtx.VerifyOptions{
		Issuer:   p.cfg.Issuer,
		Audience: []string{p.cfg.Audience},
		Now:      p.cfg.Clock.Now,
	}), nil
}

// Verify exchanges a correct code for a signed proof token.
func (p *Provider) Verify(ctx context.Context, phone, code string) (Proof, error) {
	log := slogx.FromContext(ctx)

	phone, err := phonex.Normalize(phone)
	if err != nil {
		return Proof{}, fmt.Errorf("%w: %w", ErrInvalidPhone, err)
	}

	now := p.cfg.Clock.Now()
	if !cryptox.ValidateTimedProof(code, cryptox.DeriveProofSecret(p.cfg.Key, phone), now) {
		log.Warn("verification code rejected", slog.String("phone", phonex.Mask(phone)))
		return Proof{}, ErrInvalidCode
	}

	exp := now.Add(p.cfg.TTL)
	token, err := p.signer.Sign(jwt.MapClaims{
		"iss":                 p.cfg.Issuer,
		"aud":                 p.cfg.Audience,
		"sub":                 phone,
		phoneauth.PhoneClaim: phone,
		"iat":                 now.Unix(),
		"exp":                 exp.Unix(),
		"jti":                 jwtx.NewJTI(),
	})
	if err != nil {
		log.Error("failed to sign phone proof", slog.Any("error", err))
		return Proof{}, err
	}
	return Proof{Token: token, ExpiresAt: exp}, nil
}
