package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tilldesk/internal/identity/domain"
)

type appConfigRepo struct {
	db dbtx
}

func (r *appConfigRepo) GetAppConfig(ctx context.Context) (domain.AppConfig, error) {
	var (
		cfg       domain.AppConfig
		updatedAt int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT setup_complete, updated_at FROM app_config WHERE id = 1`,
	).Scan(&cfg.SetupComplete, &updatedAt)
	if err != nil {
		return domain.AppConfig{}, mapNotFound(err)
	}
	cfg.UpdatedAt = fromMillis(updatedAt)
	return cfg, nil
}

func (r *appConfigRepo) SetSetupComplete(ctx context.Context, complete bool, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_config (id, setup_complete, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET setup_complete = excluded.setup_complete, updated_at = excluded.updated_at`,
		complete, toMillis(at))
	return err
}
