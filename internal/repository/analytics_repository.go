package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/models"
)

type AnalyticsRepository interface {
	UpsertPostMetrics(ctx context.Context, m *models.PostMetrics) error
	GetByPostID(ctx context.Context, postID, userID int64) (*models.PostMetrics, bool, error)
	ListByUserID(ctx context.Context, userID int64, since time.Time, limit int) ([]*models.PostMetrics, error)
	TopByEngagement(ctx context.Context, userID int64, limit int) ([]*models.PostMetrics, error)
	Totals(ctx context.Context, userID int64) (impressions, engagements int64, avgRate float64, err error)
	UpsertAccountMetrics(ctx context.Context, m *models.AccountMetrics) error
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// UpsertPostMetrics keeps a single latest snapshot per post.
func (r *analyticsRepository) UpsertPostMetrics(ctx context.Context, m *models.PostMetrics) error {
	query := `
		INSERT INTO analytics (post_id, user_id, impressions, likes, retweets, replies, quotes,
			bookmarks, url_link_clicks, user_profile_clicks, engagement_rate, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (post_id) DO UPDATE
		SET impressions = EXCLUDED.impressions,
			likes = EXCLUDED.likes,
			retweets = EXCLUDED.retweets,
			replies = EXCLUDED.replies,
			quotes = EXCLUDED.quotes,
			bookmarks = EXCLUDED.bookmarks,
			url_link_clicks = EXCLUDED.url_link_clicks,
			user_profile_clicks = EXCLUDED.user_profile_clicks,
			engagement_rate = EXCLUDED.engagement_rate,
			synced_at = EXCLUDED.synced_at
	`
	_, err := r.db.ExecContext(ctx, query, m.PostID, m.UserID, m.Impressions, m.Likes,
		m.Retweets, m.Replies, m.Quotes, m.Bookmarks, m.URLLinkClicks, m.ProfileClicks,
		m.EngagementRate, m.SyncedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *analyticsRepository) GetByPostID(ctx context.Context, postID, userID int64) (*models.PostMetrics, bool, error) {
	query := `SELECT id, post_id, user_id, impressions, likes, retweets, replies, quotes,
		bookmarks, url_link_clicks, user_profile_clicks, engagement_rate, synced_at, created_at
		FROM analytics WHERE post_id = $1 AND user_id = $2`
	row := r.db.QueryRowContext(ctx, query, postID, userID)

	var m models.PostMetrics
	err := row.Scan(&m.ID, &m.PostID, &m.UserID, &m.Impressions, &m.Likes, &m.Retweets,
		&m.Replies, &m.Quotes, &m.Bookmarks, &m.URLLinkClicks, &m.ProfileClicks,
		&m.EngagementRate, &m.SyncedAt, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	return &m, true, nil
}

// ListByUserID returns snapshots joined with the post's published_at, for
// time-bucketed reporting.
func (r *analyticsRepository) ListByUserID(ctx context.Context, userID int64, since time.Time, limit int) ([]*models.PostMetrics, error) {
	query := `
		SELECT a.id, a.post_id, a.user_id, a.impressions, a.likes, a.retweets, a.replies,
			a.quotes, a.bookmarks, a.url_link_clicks, a.user_profile_clicks, a.engagement_rate,
			a.synced_at, a.created_at, p.published_at
		FROM analytics a
		JOIN posts p ON p.id = a.post_id
		WHERE a.user_id = $1 AND p.published_at IS NOT NULL AND p.published_at >= $2
		ORDER BY p.published_at DESC
		LIMIT $3
	`
	return r.list(ctx, query, userID, since, limit)
}

func (r *analyticsRepository) TopByEngagement(ctx context.Context, userID int64, limit int) ([]*models.PostMetrics, error) {
	query := `
		SELECT a.id, a.post_id, a.user_id, a.impressions, a.likes, a.retweets, a.replies,
			a.quotes, a.bookmarks, a.url_link_clicks, a.user_profile_clicks, a.engagement_rate,
			a.synced_at, a.created_at, p.published_at
		FROM analytics a
		JOIN posts p ON p.id = a.post_id
		WHERE a.user_id = $1 AND p.published_at IS NOT NULL
		ORDER BY a.engagement_rate DESC
		LIMIT $2
	`
	return r.list(ctx, query, userID, limit)
}

func (r *analyticsRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.PostMetrics, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var metrics []*models.PostMetrics
	for rows.Next() {
		var m models.PostMetrics
		err := rows.Scan(&m.ID, &m.PostID, &m.UserID, &m.Impressions, &m.Likes, &m.Retweets,
			&m.Replies, &m.Quotes, &m.Bookmarks, &m.URLLinkClicks, &m.ProfileClicks,
			&m.EngagementRate, &m.SyncedAt, &m.CreatedAt, &m.PostPublishedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		metrics = append(metrics, &m)
	}
	return metrics, rows.Err()
}

func (r *analyticsRepository) Totals(ctx context.Context, userID int64) (int64, int64, float64, error) {
	query := `
		SELECT COALESCE(SUM(impressions), 0),
			COALESCE(SUM(likes + retweets + replies + quotes + bookmarks), 0),
			COALESCE(AVG(engagement_rate), 0)
		FROM analytics WHERE user_id = $1
	`

	var impressions, engagements int64
	var avgRate float64
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&impressions, &engagements, &avgRate)
	if err != nil {
		slog.Info(err.Error())
		return 0, 0, 0, err
	}

	return impressions, engagements, avgRate, nil
}

func (r *analyticsRepository) UpsertAccountMetrics(ctx context.Context, m *models.AccountMetrics) error {
	query := `
		INSERT INTO account_analytics (user_id, followers_count, following_count, tweets_count, listed_count, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET followers_count = EXCLUDED.followers_count,
			following_count = EXCLUDED.following_count,
			tweets_count = EXCLUDED.tweets_count,
			listed_count = EXCLUDED.listed_count,
			synced_at = EXCLUDED.synced_at
	`
	_, err := r.db.ExecContext(ctx, query, m.UserID, m.FollowersCount, m.FollowingCount,
		m.TweetsCount, m.ListedCount, m.SyncedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
