package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
)

type CredentialRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.TwitterCredential, bool, error)
	Upsert(ctx context.Context, cred *models.TwitterCredential) error
	SetToken(ctx context.Context, userID int64, accessToken, refreshToken string, expiresAt time.Time) error
	ListExpiring(ctx context.Context, until time.Time) ([]*models.TwitterCredential, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	Remove(ctx context.Context, userID int64) error
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

func (r *credentialRepository) GetByUserID(ctx context.Context, userID int64) (*models.TwitterCredential, bool, error) {
	query := `SELECT id, user_id, twitter_user_id, twitter_username, access_token, refresh_token,
		token_expires_at, created_at, updated_at
		FROM twitter_credentials WHERE user_id = $1`
	row := r.db.QueryRowContext(ctx, query, userID)

	var c models.TwitterCredential
	err := row.Scan(&c.ID, &c.UserID, &c.TwitterUserID, &c.Username, &c.AccessToken,
		&c.RefreshToken, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &c, true, nil
}

// Upsert stores the credential created at connect time. A reconnect
// replaces the previous grant entirely.
func (r *credentialRepository) Upsert(ctx context.Context, cred *models.TwitterCredential) error {
	query := `
		INSERT INTO twitter_credentials (user_id, twitter_user_id, twitter_username,
			access_token, refresh_token, token_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET twitter_user_id = EXCLUDED.twitter_user_id,
			twitter_username = EXCLUDED.twitter_username,
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err := r.db.ExecContext(ctx, query, cred.UserID, cred.TwitterUserID, cred.Username,
		cred.AccessToken, cred.RefreshToken, cred.ExpiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// SetToken replaces both tokens and the expiry after a refresh. Both
// rotate together; there is no partial update.
func (r *credentialRepository) SetToken(ctx context.Context, userID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE twitter_credentials
		SET access_token = $2, refresh_token = $3, token_expires_at = $4, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $1
	`
	result, err := r.db.ExecContext(ctx, query, userID, accessToken, refreshToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no credential row updated", "user_id", userID)
		return sql.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) ListExpiring(ctx context.Context, until time.Time) ([]*models.TwitterCredential, error) {
	query := `SELECT id, user_id, twitter_user_id, twitter_username, access_token, refresh_token,
		token_expires_at, created_at, updated_at
		FROM twitter_credentials
		WHERE token_expires_at <= $1 AND refresh_token <> ''`

	rows, err := r.db.QueryContext(ctx, query, until)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.TwitterCredential
	for rows.Next() {
		var c models.TwitterCredential
		err := rows.Scan(&c.ID, &c.UserID, &c.TwitterUserID, &c.Username, &c.AccessToken,
			&c.RefreshToken, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds = append(creds, &c)
	}

	return creds, rows.Err()
}

func (r *credentialRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM twitter_credentials`)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *credentialRepository) Remove(ctx context.Context, userID int64) error {
	query := `DELETE FROM twitter_credentials WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
