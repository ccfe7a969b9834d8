package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned by conditional updates that matched no row,
	// i.e. the record was not in the expected state.
	ErrConflict = errors.New("store: conflicting update")

	// ErrCorruptRecord is returned when a stored row fails to map onto a
	// typed entity (unknown role or status).
	ErrCorruptRecord = errors.New("store: corrupt record")
)

// Store is the root data access interface. Drivers implement it and expose
// sub-repositories so that transactions cannot be nested by accident.
type Store interface {
	Accounts() Accounts
	Invites() Invites
	Transfers() Transfers
	AppConfig() AppConfig

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByPhone looks up by normalized E.164 phone.
	GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error)

	// ListAccounts returns every account, oldest first.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// CreateAccount inserts a; a duplicate phone or a second owner yields
	// ErrAlreadyExists.
	CreateAccount(ctx context.Context, a domain.Account) error

	UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) error
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, at time.Time) error
	UpdatePINHash(ctx context.Context, id, pinHash string, at time.Time) error

	// UpdatePhone also rewrites the derived auth email.
	UpdatePhone(ctx context.Context, id, phone, authEmail string, at time.Time) error

	OwnerExists(ctx context.Context) (bool, error)
	IsEmpty(ctx context.Context) (bool, error)
}

type Invites interface {
	// CreateInvite returns ErrAlreadyExists on a code collision.
	CreateInvite(ctx context.Context, inv domain.InviteCode) error

	GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error)
	GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error)

	// ListInvitesByCreator returns the creator's invites, newest first.
	ListInvitesByCreator(ctx context.Context, createdBy string) ([]domain.InviteCode, error)

	// MarkInviteUsed flips used only if the invite is still unused and
	// unexpired at now, otherwise it returns ErrConflict.
	MarkInviteUsed(ctx context.Context, id, usedBy string, now time.Time) error

	DeleteInvite(ctx context.Context, id string) error
}

// TransitionTimes carries the timestamps a status transition may stamp.
type TransitionTimes struct {
	AcceptedAt  *time.Time
	CompletedAt *time.Time
}

type Transfers interface {
	// CreateTransfer returns ErrAlreadyExists on a code collision or when the
	// owner already has an open transfer.
	CreateTransfer(ctx context.Context, t domain.OwnershipTransfer) error

	GetTransferByCode(ctx context.Context, code string) (domain.OwnershipTransfer, error)

	// GetOpenTransferByOwner returns the owner's pending or accepted transfer
	// regardless of expiry.
	GetOpenTransferByOwner(ctx context.Context, fromUser string) (domain.OwnershipTransfer, error)

	// TransitionStatus moves id from one status to another, returning
	// ErrConflict if the stored status is not from.
	TransitionStatus(ctx context.Context, id string, from, to domain.TransferStatus, times TransitionTimes) error

	// SetAccepted moves a pending transfer to accepted for toUser.
	SetAccepted(ctx context.Context, id, toUser string, at time.Time) error

	// SetCompleted moves an accepted transfer to completed. Like
	// SetAccepted it returns ErrConflict once the transfer has expired at at.
	SetCompleted(ctx context.Context, id string, at time.Time) error
}

type AppConfig interface {
	GetAppConfig(ctx context.Context) (domain.AppConfig, error)
	SetSetupComplete(ctx context.Context, complete bool, at time.Time) error
}
