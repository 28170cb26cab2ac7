package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/postpilot/postpilot/internal/models"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, s *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `SELECT id, user_id, timezone, default_hashtags, auto_hashtags, created_at, updated_at
		FROM settings WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var s models.Settings
	err := row.Scan(&s.ID, &s.UserID, &s.Timezone, &s.DefaultHashtags, &s.AutoHashtags,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, s *models.Settings) error {
	query := `
		INSERT INTO settings (user_id, timezone, default_hashtags, auto_hashtags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
			default_hashtags = EXCLUDED.default_hashtags,
			auto_hashtags = EXCLUDED.auto_hashtags,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, s.UserID, s.Timezone, s.DefaultHashtags, s.AutoHashtags)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
