package identitysdk

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Session is a signed-in device. The access token cannot be refreshed; once
// it expires the user signs in again.
type Session struct {
	client *SDKClient

	mu          sync.RWMutex
	accessToken string
	sessionID   string
	expiresAt   time.Time
	account     AccountInfo
}

func newSession(client *SDKClient, tok *TokenResponse) *Session {
	return &Session{
		client:      client,
		accessToken: tok.AccessToken,
		sessionID:   tok.SessionID,
		expiresAt:   time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second),
		account:     tok.Account,
	}
}

// AccessToken returns the bearer token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// SessionID returns the sid the PIN guard is keyed on.
func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Account returns the account as of sign-in, or as last refreshed by Me.
func (s *Session) Account() AccountInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account
}

// Expired reports whether the access token has run out.
func (s *Session) Expired() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !time.Now().Before(s.expiresAt)
}

func (s *Session) call(ctx context.Context, method, path string, in, out any, expectedStatus int) error {
	return s.client.call(ctx, method, path, s.AccessToken(), in, out, expectedStatus)
}

// State returns the PIN guard state of this session.
func (s *Session) State(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := s.call(ctx, http.MethodGet, "/v1/session", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me fetches the current account and caches it on the session.
func (s *Session) Me(ctx context.Context) (*AccountInfo, error) {
	var out AccountInfo
	if err := s.call(ctx, http.MethodGet, "/v1/me", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.account = out
	s.mu.Unlock()
	return &out, nil
}

// VerifyPIN unlocks the session. A wrong PIN returns an *APIError with
// ErrorCodeIncorrectPIN, and the third in a row ErrorCodeLockedOut with
// RetryAfter set.
func (s *Session) VerifyPIN(ctx context.Context, pin string) (*SessionResponse, error) {
	var out SessionResponse
	if err := s.call(ctx, http.MethodPost, "/v1/session/pin", VerifyPINRequest{PIN: pin}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetPIN sets the first PIN (currentPIN empty) or changes it.
func (s *Session) SetPIN(ctx context.Context, currentPIN, newPIN string) (*SessionResponse, error) {
	req := SetPINRequest{CurrentPIN: currentPIN, NewPIN: newPIN}

	var out SessionResponse
	if err := s.call(ctx, http.MethodPut, "/v1/session/pin", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Lock re-requires the PIN without signing out.
func (s *Session) Lock(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := s.call(ctx, http.MethodPost, "/v1/session/lock", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout ends the session on the server. The token is refused afterwards.
func (s *Session) Logout(ctx context.Context) error {
	return s.call(ctx, http.MethodPost, "/v1/session/logout", nil, nil, http.StatusNoContent)
}
