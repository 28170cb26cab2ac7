package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByUserID(ctx context.Context, userID int64, status string, limit int) ([]*models.Post, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]*models.DuePost, error)
	ListPublished(ctx context.Context, userID int64, since time.Time) ([]*models.Post, error)
	MarkPublished(ctx context.Context, id int64, twitterPostID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, id int64) error
	Schedule(ctx context.Context, id, userID int64, scheduledFor time.Time) error
	CancelSchedule(ctx context.Context, id, userID int64) error
	Reschedule(ctx context.Context, id, userID int64, scheduledFor time.Time) error
	CheckByUserID(ctx context.Context, postID, userID int64) (bool, error)
	CountByStatus(ctx context.Context, userID int64) (map[string]int64, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, user_id, product_id, content, status, source, twitter_post_id,
	media_urls, hashtags, scheduled_for, published_at, ai_prompt, variation_number,
	created_at, updated_at`

func scanPost(row interface{ Scan(...interface{}) error }) (*models.Post, error) {
	var p models.Post
	err := row.Scan(&p.ID, &p.UserID, &p.ProductID, &p.Content, &p.Status, &p.Source,
		&p.TwitterPostID, &p.MediaURLs, &p.Hashtags, &p.ScheduledFor, &p.PublishedAt,
		&p.AIPrompt, &p.VariationNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	query := `
		INSERT INTO posts (user_id, product_id, content, status, source, twitter_post_id,
			media_urls, hashtags, scheduled_for, published_at, ai_prompt, variation_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, post.UserID, post.ProductID, post.Content,
		post.Status, post.Source, post.TwitterPostID, post.MediaURLs, post.Hashtags,
		post.ScheduledFor, post.PublishedAt, post.AIPrompt, post.VariationNumber).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID int64, status string, limit int) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = $1`
	args := []interface{}{userID}

	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		if status != "" {
			query += ` LIMIT $3`
		} else {
			query += ` LIMIT $2`
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// ListDue returns scheduled posts whose time has elapsed, each joined with
// the owner's Twitter credential. Posts whose owner never connected an
// account are still returned, with a nil credential, so the run can mark
// them failed. Read only; no ordering guarantee.
func (r *postRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.DuePost, error) {
	query := `
		SELECT p.id, p.user_id, p.product_id, p.content, p.status, p.source, p.twitter_post_id,
			p.media_urls, p.hashtags, p.scheduled_for, p.published_at, p.ai_prompt, p.variation_number,
			p.created_at, p.updated_at,
			c.id, c.twitter_user_id, c.twitter_username, c.access_token, c.refresh_token, c.token_expires_at
		FROM posts p
		LEFT JOIN twitter_credentials c ON c.user_id = p.user_id
		WHERE p.status = $1 AND p.scheduled_for <= $2
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, models.PostStatusScheduled, now, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var due []*models.DuePost
	for rows.Next() {
		var p models.Post
		var credID sql.NullInt64
		var twitterUserID, username, accessToken, refreshToken sql.NullString
		var expiresAt sql.NullTime

		err := rows.Scan(&p.ID, &p.UserID, &p.ProductID, &p.Content, &p.Status, &p.Source,
			&p.TwitterPostID, &p.MediaURLs, &p.Hashtags, &p.ScheduledFor, &p.PublishedAt,
			&p.AIPrompt, &p.VariationNumber, &p.CreatedAt, &p.UpdatedAt,
			&credID, &twitterUserID, &username, &accessToken, &refreshToken, &expiresAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		dp := &models.DuePost{Post: &p}
		if credID.Valid {
			dp.Credential = &models.TwitterCredential{
				ID:            credID.Int64,
				UserID:        p.UserID,
				TwitterUserID: twitterUserID.String,
				Username:      username.String,
				AccessToken:   accessToken.String,
				RefreshToken:  refreshToken.String,
				ExpiresAt:     expiresAt.Time,
			}
		}
		due = append(due, dp)
	}

	return due, rows.Err()
}

func (r *postRepository) ListPublished(ctx context.Context, userID int64, since time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE user_id = $1 AND status = $2 AND twitter_post_id IS NOT NULL AND published_at >= $3`

	rows, err := r.db.QueryContext(ctx, query, userID, models.PostStatusPublished, since)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// MarkPublished transitions scheduled -> published. The status guard keeps
// published and failed terminal: a row that already left scheduled is
// never rewritten.
func (r *postRepository) MarkPublished(ctx context.Context, id int64, twitterPostID string, publishedAt time.Time) error {
	query := `
		UPDATE posts
		SET status = $1, twitter_post_id = $2, published_at = $3, updated_at = $4
		WHERE id = $5 AND status = $6
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusPublished, twitterPostID,
		publishedAt, time.Now(), id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, id int64) error {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusFailed, time.Now(), id, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Schedule moves a draft into the publish queue.
func (r *postRepository) Schedule(ctx context.Context, id, userID int64, scheduledFor time.Time) error {
	query := `
		UPDATE posts
		SET status = $1, scheduled_for = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5 AND status = $6
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusScheduled, scheduledFor,
		time.Now(), id, userID, models.PostStatusDraft)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CancelSchedule(ctx context.Context, id, userID int64) error {
	query := `
		UPDATE posts
		SET status = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query, models.PostStatusDraft, time.Now(), id, userID, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Reschedule(ctx context.Context, id, userID int64, scheduledFor time.Time) error {
	query := `
		UPDATE posts
		SET scheduled_for = $1, updated_at = $2
		WHERE id = $3 AND user_id = $4 AND status = $5
	`
	_, err := r.db.ExecContext(ctx, query, scheduledFor, time.Now(), id, userID, models.PostStatusScheduled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	query := "SELECT 1 FROM posts WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, postID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}

	return result == 1, nil
}

func (r *postRepository) CountByStatus(ctx context.Context, userID int64) (map[string]int64, error) {
	query := `SELECT status, COUNT(*) FROM posts WHERE user_id = $1 GROUP BY status`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
