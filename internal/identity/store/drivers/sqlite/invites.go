package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
)

const inviteColumns = `id, code, role, created_by, used_by, expires_at, used, created_at`

type invitesRepo struct {
	db dbtx
}

func scanInvite(row rowScanner) (domain.InviteCode, error) {
	var (
		inv                  domain.InviteCode
		role                 string
		usedBy               sql.NullString
		expiresAt, createdAt int64
	)
	err := row.Scan(&inv.ID, &inv.Code, &role, &inv.CreatedBy, &usedBy, &expiresAt, &inv.Used, &createdAt)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}

	inv.Role = domain.Role(role)
	if !inv.Role.Invitable() {
		return domain.InviteCode{}, corrupt("invite", inv.ID, "role", role)
	}
	inv.UsedBy = mapNullString(usedBy)
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.CreatedAt = fromMillis(createdAt)
	return inv, nil
}

func (r *invitesRepo) CreateInvite(ctx context.Context, inv domain.InviteCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invite_codes (`+inviteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Code, string(inv.Role), inv.CreatedBy, mapStringNull(inv.UsedBy),
		toMillis(inv.ExpiresAt), inv.Used, toMillis(inv.CreatedAt),
	)
	return mapWriteErr(err)
}

func (r *invitesRepo) GetInviteByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE code = ?`, code)
	return scanInvite(row)
}

func (r *invitesRepo) GetInviteByID(ctx context.Context, id string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invite_codes WHERE id = ?`, id)
	return scanInvite(row)
}

func (r *invitesRepo) ListInvitesByCreator(ctx context.Context, createdBy string) ([]domain.InviteCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+inviteColumns+` FROM invite_codes
		WHERE created_by = ?
		ORDER BY created_at DESC, id DESC`, createdBy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.InviteCode
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitesRepo) MarkInviteUsed(ctx context.Context, id, usedBy string, now time.Time) error {
	return expectOne(r.db.ExecContext(ctx, `
		UPDATE invite_codes SET used = 1, used_by = ?
		WHERE id = ? AND used = 0 AND expires_at > ?`,
		usedBy, id, toMillis(now)))
}

func (r *invitesRepo) DeleteInvite(ctx context.Context, id string) error {
	err := expectOne(r.db.ExecContext(ctx, `DELETE FROM invite_codes WHERE id = ?`, id))
	if err != nil {
		return mapConflictNotFound(err)
	}
	return nil
}
