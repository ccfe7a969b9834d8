package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/store"
	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
	"github.com/aussiebroadwan/tilldesk/pkg/cryptox"
	"github.com/aussiebroadwan/tilldesk/pkg/idx"
	"github.com/aussiebroadwan/tilldesk/pkg/phonex"
	"github.com/aussiebroadwan/tilldesk/pkg/pinguard"
	"github.com/aussiebroadwan/tilldesk/pkg/slogx"
)

// ErrPINNotSet is returned when a PIN is submitted for an account that has
// never set one.
var ErrPINNotSet = errors.New("no PIN has been set")

// Principal is the authenticated caller as carried by the access token.
type Principal struct {
	AccountID string
	SessionID string
	Name      string
	Phone     string
}

func (p Principal) identity() pinguard.Identity {
	id := pinguard.Identity{AccountID: p.AccountID, Name: p.Name}
	if p.Phone != "" {
		id.Email = phonex.AuthEmail(p.Phone)
	}
	return id
}

// SessionState is the PIN guard state of one login session.
type SessionState struct {
	SessionID      string
	AccountID      string
	State          pinguard.State
	HasPIN         bool
	FailedAttempts int
	LockoutUntil   time.Time
	Remembered     *pinguard.Identity
}

type sessionEntry struct {
	guard     *pinguard.Guard
	memory    *pinguard.MemoryStore
	accountID string
	hasPIN    bool
	lastSeen  time.Time
}

// SessionService hosts one PIN guard per login session, keyed by the sid
// claim. Failed attempts and lockouts are counted per account across all of
// its sessions. Guards live in memory only; a session unknown after a
// restart comes back requiring its PIN.
type SessionService struct {
	Store       store.Store
	Clock       clockx.Clock
	Threshold   int
	Lockout     time.Duration
	IdleTimeout time.Duration
	// MaxIdle is how long an untouched session is kept before Prune drops
	// it. It should match the access token lifetime.
	MaxIdle time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	ended    map[string]time.Time
	attempts map[string]*pinguard.Attempts
}

func (s *SessionService) clock() clockx.Clock { return clockx.Or(s.Clock) }

// Begin opens a session after a successful primary login and returns its
// id. The session starts out requiring the PIN.
func (s *SessionService) Begin(accountID string) string {
	now := s.clock().Now()
	sid := idx.NewAt(now).String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	e := s.newEntryLocked(accountID, now)
	e.guard.Authenticate()
	s.sessions[sid] = e
	return sid
}

// VerifyPIN submits pin to the session's guard. The stored hash is read only
// when no lockout is in force, and store failures do not count as attempts.
func (s *SessionService) VerifyPIN(ctx context.Context, p Principal, pin string) (SessionState, error) {
	log := slogx.FromContext(ctx)

	if err := cryptox.ValidatePIN(pin); err != nil {
		return SessionState{}, fieldErr("pin", "must be exactly 4 digits")
	}
	e, err := s.entry(p)
	if err != nil {
		return SessionState{}, err
	}

	// check runs under the account's attempt lock, so it must not take s.mu.
	var hasPIN *bool
	check := func(ctx context.Context) (bool, error) {
		acc, err := s.Store.Accounts().GetAccountByID(ctx, p.AccountID)
		if err != nil {
			return false, err
		}
		v := acc.HasPIN()
		hasPIN = &v
		if !v {
			return false, ErrPINNotSet
		}
		return cryptox.VerifyPIN(pin, acc.PINHash), nil
	}

	_, err = e.guard.Submit(ctx, check, p.identity())
	if hasPIN != nil {
		s.setHasPIN(e, *hasPIN)
	}
	if err != nil {
		switch {
		case errors.Is(err, pinguard.ErrIncorrectPIN), errors.Is(err, pinguard.ErrLocked):
			log.Warn("PIN rejected", slog.String("reason", err.Error()))
		case errors.Is(err, pinguard.ErrTooManyAttempts):
			log.Warn("PIN lockout triggered")
		case errors.Is(err, ErrPINNotSet):
		default:
			log.Error("PIN verification failed", slog.Any("error", err))
		}
		return s.snapshot(p.SessionID, e), err
	}

	s.touch(e)
	return s.snapshot(p.SessionID, e), nil
}

// SetPIN sets the first PIN, or changes it after the current PIN passes the
// guard. Setting a PIN unlocks the session.
func (s *SessionService) SetPIN(ctx context.Context, p Principal, currentPIN, newPIN string) (SessionState, error) {
	log := slogx.FromContext(ctx)

	if err := cryptox.ValidatePIN(newPIN); err != nil {
		return SessionState{}, fieldErr("new_pin", "must be exactly 4 digits")
	}
	e, err := s.entry(p)
	if err != nil {
		return SessionState{}, err
	}

	acc, err := s.Store.Accounts().GetAccountByID(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return SessionState{}, ErrNotAuthorized
		}
		return SessionState{}, err
	}

	s.setHasPIN(e, acc.HasPIN())
	if acc.HasPIN() {
		if err := cryptox.ValidatePIN(currentPIN); err != nil {
			return SessionState{}, fieldErr("current_pin", "must be exactly 4 digits")
		}
		check := func(context.Context) (bool, error) {
			return cryptox.VerifyPIN(currentPIN, acc.PINHash), nil
		}
		if _, err := e.guard.Submit(ctx, check, p.identity()); err != nil {
			return s.snapshot(p.SessionID, e), err
		}
	}

	if err := s.Store.Accounts().UpdatePINHash(ctx, acc.ID, cryptox.HashPIN(newPIN), s.clock().Now()); err != nil {
		log.Error("failed to store PIN", slog.Any("error", err))
		return SessionState{}, err
	}
	s.setHasPIN(e, true)

	if !acc.HasPIN() {
		accept := func(context.Context) (bool, error) { return true, nil }
		if _, err := e.guard.Submit(ctx, accept, p.identity()); err != nil {
			return s.snapshot(p.SessionID, e), err
		}
	}

	s.touch(e)
	log.Info("PIN updated", slog.Bool("first", !acc.HasPIN()))
	return s.snapshot(p.SessionID, e), nil
}

// RequireUnlocked applies the idle lock and fails unless the session has a
// verified PIN. Passing counts as activity.
func (s *SessionService) RequireUnlocked(p Principal) error {
	e, err := s.entry(p)
	if err != nil {
		return err
	}

	switch e.guard.CheckIdle(s.IdleTimeout) {
	case pinguard.Unlocked:
		e.guard.Touch()
		s.touch(e)
		return nil
	case pinguard.Locked:
		return ErrSessionLocked
	default:
		return ErrPINRequired
	}
}

// RequireLive fails with ErrUnknownSession once the session has logged out.
func (s *SessionService) RequireLive(p Principal) error {
	_, err := s.entry(p)
	return err
}

// Lock re-requires the PIN without ending the session.
func (s *SessionService) Lock(p Principal) (SessionState, error) {
	e, err := s.entry(p)
	if err != nil {
		return SessionState{}, err
	}
	e.guard.Lock()
	return s.snapshot(p.SessionID, e), nil
}

// Logout ends the session. Its token is refused from then on.
func (s *SessionService) Logout(p Principal) error {
	e, err := s.entry(p)
	if err != nil {
		return err
	}
	e.guard.Logout()

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, p.SessionID)
	s.ended[p.SessionID] = s.clock().Now()
	return nil
}

// State reports the session after applying the idle lock.
func (s *SessionService) State(ctx context.Context, p Principal) (SessionState, error) {
	e, err := s.entry(p)
	if err != nil {
		return SessionState{}, err
	}
	e.guard.CheckIdle(s.IdleTimeout)

	acc, err := s.Store.Accounts().GetAccountByID(ctx, p.AccountID)
	if err != nil {
		return SessionState{}, err
	}
	s.setHasPIN(e, acc.HasPIN())
	return s.snapshot(p.SessionID, e), nil
}

// Prune drops sessions and logout markers older than MaxIdle, and attempt
// counters of accounts with no session left and nothing in force. It
// returns how many sessions were removed.
func (s *SessionService) Prune() int {
	if s.MaxIdle <= 0 {
		return 0
	}
	cutoff := s.clock().Now().Add(-s.MaxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for sid, e := range s.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(s.sessions, sid)
			n++
		}
	}
	for sid, at := range s.ended {
		if at.Before(cutoff) {
			delete(s.ended, sid)
		}
	}

	held := make(map[string]bool, len(s.sessions))
	for _, e := range s.sessions {
		held[e.accountID] = true
	}
	now := s.clock().Now()
	for accountID, a := range s.attempts {
		if !held[accountID] && a.Settled(now) {
			delete(s.attempts, accountID)
		}
	}
	return n
}

// Len returns the number of live sessions.
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionService) initLocked() {
	if s.sessions == nil {
		s.sessions = make(map[string]*sessionEntry)
		s.ended = make(map[string]time.Time)
		s.attempts = make(map[string]*pinguard.Attempts)
	}
}

func (s *SessionService) newEntryLocked(accountID string, now time.Time) *sessionEntry {
	a, ok := s.attempts[accountID]
	if !ok {
		a = &pinguard.Attempts{}
		s.attempts[accountID] = a
	}

	memory := &pinguard.MemoryStore{}
	return &sessionEntry{
		guard: pinguard.New(pinguard.Options{
			Threshold: s.Threshold,
			Lockout:   s.Lockout,
			Clock:     s.clock(),
			Memory:    memory,
			Attempts:  a,
		}),
		memory:    memory,
		accountID: accountID,
		lastSeen:  now,
	}
}

// entry returns the session for p, re-creating it in PINRequired when the
// process no longer holds it.
func (s *SessionService) entry(p Principal) (*sessionEntry, error) {
	if p.SessionID == "" || p.AccountID == "" {
		return nil, ErrUnknownSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.initLocked()

	if _, gone := s.ended[p.SessionID]; gone {
		return nil, ErrUnknownSession
	}
	e, ok := s.sessions[p.SessionID]
	if !ok {
		e = s.newEntryLocked(p.AccountID, s.clock().Now())
		e.guard.Authenticate()
		s.sessions[p.SessionID] = e
	}
	if e.accountID != p.AccountID {
		return nil, ErrUnknownSession
	}
	return e, nil
}

func (s *SessionService) touch(e *sessionEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.lastSeen = s.clock().Now()
}

func (s *SessionService) setHasPIN(e *sessionEntry, v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.hasPIN = v
}

func (s *SessionService) snapshot(sid string, e *sessionEntry) SessionState {
	snap := e.guard.Snapshot()

	s.mu.Lock()
	hasPIN := e.hasPIN
	s.mu.Unlock()

	st := SessionState{
		SessionID:      sid,
		AccountID:      e.accountID,
		State:          snap.State,
		HasPIN:         hasPIN,
		FailedAttempts: snap.FailedAttempts,
		LockoutUntil:   snap.LockoutUntil,
	}
	if id, ok := e.memory.Load(); ok {
		st.Remembered = &id
	}
	return st
}
