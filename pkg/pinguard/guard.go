// Package pinguard tracks PIN re-authentication for a login session: the
// verified/locked state per session, and attempt counting with lockout
// windows that sessions of one account can share.
package pinguard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/tilldesk/pkg/clockx"
)

const (
	DefaultThreshold = 3
	DefaultLockout   = 5 * time.Minute
)

type State int

const (
	NoPINRequired State = iota
	PINRequired
	Unlocked
	Locked
)

func (s State) String() string {
	switch s {
	case NoPINRequired:
		return "no_pin_required"
	case PINRequired:
		return "pin_required"
	case Unlocked:
		return "unlocked"
	case Locked:
		return "locked"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrNotAuthenticated = errors.New("pinguard: session is not authenticated")
	ErrVerification     = errors.New("pinguard: PIN could not be verified")
	ErrIncorrectPIN     = errors.New("incorrect PIN")
	ErrTooManyAttempts  = errors.New("too many incorrect attempts")
	ErrLocked           = errors.New("PIN entry is locked")
)

// LockedError is returned while a lockout is in force. It matches
// ErrTooManyAttempts when the submission that produced it triggered the
// lockout, and ErrLocked otherwise.
type LockedError struct {
	Remaining time.Duration
	Triggered bool
}

func (e *LockedError) Error() string {
	secs := int((e.Remaining + time.Second - 1) / time.Second)
	if e.Triggered {
		return fmt.Sprintf("%s, try again in %ds", ErrTooManyAttempts, secs)
	}
	return fmt.Sprintf("%s, try again in %ds", ErrLocked, secs)
}

func (e *LockedError) Is(target error) bool {
	if e.Triggered {
		return target == ErrTooManyAttempts
	}
	return target == ErrLocked
}

// IncorrectPINError reports a wrong PIN and how many attempts remain before
// lockout.
type IncorrectPINError struct {
	AttemptsLeft int
}

func (e *IncorrectPINError) Error() string {
	return fmt.Sprintf("%s, %d attempts left", ErrIncorrectPIN, e.AttemptsLeft)
}

func (e *IncorrectPINError) Is(target error) bool { return target == ErrIncorrectPIN }

// Identity is the non-sensitive data remembered after a successful unlock.
type Identity struct {
	AccountID string
	Name      string
	Email     string
}

// RememberStore keeps the last unlocked identity for fast re-entry.
type RememberStore interface {
	Remember(Identity)
	Forget()
}

// CheckFunc compares the submitted PIN with the stored credential. An error
// means the comparison could not be made.
type CheckFunc func(ctx context.Context) (bool, error)

// Attempts is a failure counter and lockout window. Guards built with the
// same Attempts count failures together, so neither a new login nor a
// logout clears a lockout.
type Attempts struct {
	mu           sync.Mutex
	failed       int
	lockoutUntil time.Time
}

// Settled reports whether the counter holds nothing worth keeping: no
// failures, or a lockout that has run out.
func (a *Attempts) Settled(now time.Time) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.failed == 0 || (!a.lockoutUntil.IsZero() && !now.Before(a.lockoutUntil))
}

type Options struct {
	Threshold int
	Lockout   time.Duration
	Clock     clockx.Clock
	Memory    RememberStore
	// Attempts is shared with other guards of the same account. Nil gives
	// the guard a counter of its own.
	Attempts *Attempts
}

// Outcome describes the guard after a successful submission.
type Outcome struct {
	State State
}

type Snapshot struct {
	State          State
	FailedAttempts int
	LockoutUntil   time.Time
	Verified       bool
	LastActivity   time.Time
}

// Guard is safe for concurrent use. Submissions on one guard are serialized.
type Guard struct {
	mu   sync.Mutex
	opts Options

	state        State
	attempts     *Attempts
	lastActivity time.Time
}

func New(opts Options) *Guard {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Lockout <= 0 {
		opts.Lockout = DefaultLockout
	}
	opts.Clock = clockx.Or(opts.Clock)
	attempts := opts.Attempts
	if attempts == nil {
		attempts = &Attempts{}
	}
	return &Guard{opts: opts, state: NoPINRequired, attempts: attempts}
}

// Authenticate records a successful primary login. A lockout already in
// force stays in force.
func (g *Guard) Authenticate() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = PINRequired
	g.lastActivity = g.opts.Clock.Now()
}

// Submit runs check unless a lockout is in force. Submissions on guards
// sharing an Attempts are serialized too.
func (g *Guard) Submit(ctx context.Context, check CheckFunc, id Identity) (Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == NoPINRequired {
		return Outcome{State: g.state}, ErrNotAuthenticated
	}

	a := g.attempts
	a.mu.Lock()
	defer a.mu.Unlock()

	now := g.opts.Clock.Now()
	if !a.lockoutUntil.IsZero() {
		if now.Before(a.lockoutUntil) {
			return Outcome{State: g.state}, &LockedError{Remaining: a.lockoutUntil.Sub(now)}
		}
		a.lockoutUntil = time.Time{}
		a.failed = 0
	}

	ok, err := check(ctx)
	if err != nil {
		return Outcome{State: g.state}, fmt.Errorf("%w: %w", ErrVerification, err)
	}

	if !ok {
		a.failed++
		if a.failed >= g.opts.Threshold {
			a.lockoutUntil = now.Add(g.opts.Lockout)
			return Outcome{State: g.state}, &LockedError{Remaining: g.opts.Lockout, Triggered: true}
		}
		return Outcome{State: g.state}, &IncorrectPINError{AttemptsLeft: g.opts.Threshold - a.failed}
	}

	a.failed = 0
	g.state = Unlocked
	g.lastActivity = now
	if g.opts.Memory != nil {
		g.opts.Memory.Remember(id)
	}
	return Outcome{State: g.state}, nil
}

// Lock moves an unlocked session back to requiring the PIN without logging
// out.
func (g *Guard) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state == Unlocked {
		g.state = Locked
	}
}

// Touch records activity on an unlocked session.
func (g *Guard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastActivity = g.opts.Clock.Now()
}

// CheckIdle locks the session if it has been idle for at least timeout and
// returns the resulting state. A zero timeout disables idle locking.
func (g *Guard) CheckIdle(timeout time.Duration) State {
	g.mu.Lock()
	defer g.mu.Unlock()

	if timeout > 0 && g.state == Unlocked && g.opts.Clock.Now().Sub(g.lastActivity) >= timeout {
		g.state = Locked
	}
	return g.state
}

// Logout clears the session state and the remembered identity. The attempt
// count belongs to the account and survives.
func (g *Guard) Logout() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = NoPINRequired
	g.lastActivity = time.Time{}
	if g.opts.Memory != nil {
		g.opts.Memory.Forget()
	}
}

func (g *Guard) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts.mu.Lock()
	defer g.attempts.mu.Unlock()

	return Snapshot{
		State:          g.state,
		FailedAttempts: g.attempts.failed,
		LockoutUntil:   g.attempts.lockoutUntil,
		Verified:       g.state == Unlocked,
		LastActivity:   g.lastActivity,
	}
}
