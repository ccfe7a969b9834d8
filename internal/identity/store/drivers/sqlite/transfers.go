package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
	"github.com/aussiebroadwan/tilldesk/internal/identity/store"
)

const transferColumns = `id, code, from_user, to_phone, to_user, status,
	expires_at, accepted_at, completed_at, created_at`

type transfersRepo struct {
	db dbtx
}

func scanTransfer(row rowScanner) (domain.OwnershipTransfer, error) {
	var (
		t                       domain.OwnershipTransfer
		toUser                  sql.NullString
		status                  string
		expiresAt, createdAt    int64
		acceptedAt, completedAt sql.NullInt64
	)
	err := row.Scan(&t.ID, &t.Code, &t.FromUser, &t.ToPhone, &toUser, &status,
		&expiresAt, &acceptedAt, &completedAt, &createdAt)
	if err != nil {
		return domain.OwnershipTransfer{}, mapNotFound(err)
	}

	t.Status = domain.TransferStatus(status)
	if !t.Status.Valid() {
		return domain.OwnershipTransfer{}, corrupt("transfer", t.ID, "status", status)
	}
	t.ToUser = mapNullString(toUser)
	t.ExpiresAt = fromMillis(expiresAt)
	t.AcceptedAt = mapNullMillis(acceptedAt)
	t.CompletedAt = mapNullMillis(completedAt)
	t.CreatedAt = fromMillis(createdAt)
	return t, nil
}

func (r *transfersRepo) CreateTransfer(ctx context.Context, t domain.OwnershipTransfer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ownership_transfers (`+transferColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Code, t.FromUser, t.ToPhone, mapStringNull(t.ToUser), string(t.Status),
		toMillis(t.ExpiresAt), mapOptionalMillis(t.AcceptedAt), mapOptionalMillis(t.CompletedAt),
		toMillis(t.CreatedAt),
	)
	return mapWriteErr(err)
}

func (r *transfersRepo) GetTransferByCode(ctx context.Context, code string) (domain.OwnershipTransfer, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+transferColumns+` FROM ownership_transfers WHERE code = ?`, code)
	return scanTransfer(row)
}

func (r *transfersRepo) GetOpenTransferByOwner(ctx context.Context, fromUser string) (domain.OwnershipTransfer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transferColumns+` FROM ownership_transfers
		WHERE from_user = ? AND status IN ('pending', 'accepted')`, fromUser)
	return scanTransfer(row)
}

func (r *transfersRepo) TransitionStatus(
	ctx context.Context,
	id string,
	from, to domain.TransferStatus,
	times store.TransitionTimes,
) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE ownership_transfers
		SET status = ?,
			accepted_at = COALESCE(?, accepted_at),
			completed_at = COALESCE(?, completed_at)
		WHERE id = ? AND status = ?`,
		string(to), mapOptionalMillis(times.AcceptedAt), mapOptionalMillis(times.CompletedAt),
		id, string(from)))
}

func (r *transfersRepo) SetAccepted(ctx context.Context, id, toUser string, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE ownership_transfers
		SET status = 'accepted', to_user = ?, accepted_at = ?
		WHERE id = ? AND status = 'pending' AND expires_at > ?`,
		toUser, toMillis(at), id, toMillis(at)))
}

func (r *transfersRepo) SetCompleted(ctx context.Context, id string, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE ownership_transfers
		SET status = 'completed', completed_at = ?
		WHERE id = ? AND status = 'accepted' AND expires_at > ?`,
		toMillis(at), id, toMillis(at)))
}
