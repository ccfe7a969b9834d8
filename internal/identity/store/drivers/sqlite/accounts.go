package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
)

const accountColumns = `id, name, phone, auth_email, pin_hash, password_hash,
	role, status, invited_by, created_at, updated_at`

type accountsRepo struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a                    domain.Account
		phone, invitedBy     sql.NullString
		role, status         string
		createdAt, updatedAt int64
	)
	err := row.Scan(&a.ID, &a.Name, &phone, &a.AuthEmail, &a.PINHash, &a.PasswordHash,
		&role, &status, &invitedBy, &createdAt, &updatedAt)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	a.Role = domain.Role(role)
	if !a.Role.Valid() {
		return domain.Account{}, corrupt("account", a.ID, "role", role)
	}
	a.Status = domain.AccountStatus(status)
	if !a.Status.Valid() {
		return domain.Account{}, corrupt("account", a.ID, "status", status)
	}
	a.Phone = mapNullString(phone)
	a.InvitedBy = mapNullString(invitedBy)
	a.CreatedAt = fromMillis(createdAt)
	a.UpdatedAt = fromMillis(updatedAt)
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *accountsRepo) GetAccountByPhone(ctx context.Context, phone string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE phone = ?`, phone)
	return scanAccount(row)
}

func (r *accountsRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, mapStringNull(a.Phone), a.AuthEmail, a.PINHash, a.PasswordHash,
		string(a.Role), string(a.Status), mapStringNull(a.InvitedBy),
		toMillis(a.CreatedAt), toMillis(a.UpdatedAt),
	)
	return mapWriteErr(err)
}

func (r *accountsRepo) UpdateRole(ctx context.Context, id string, role domain.Role, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE accounts SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), toMillis(at), id))
}

func (r *accountsRepo) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE accounts SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(at), id))
}

func (r *accountsRepo) UpdatePINHash(ctx context.Context, id, pinHash string, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE accounts SET pin_hash = ?, updated_at = ? WHERE id = ?`,
		pinHash, toMillis(at), id))
}

func (r *accountsRepo) UpdatePhone(ctx context.Context, id, phone, authEmail string, at time.Time) error {
	return expectOne(r.db.ExecContext(ctx,
		`UPDATE accounts SET phone = ?, auth_email = ?, updated_at = ? WHERE id = ?`,
		phone, authEmail, toMillis(at), id))
}

func (r *accountsRepo) OwnerExists(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE role = 'owner'`).Scan(&n)
	return n > 0, err
}

func (r *accountsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&n)
	return n == 0, err
}
