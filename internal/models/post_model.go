package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Post struct {
	ID              int64          `db:"id" json:"id"`
	UserID          int64          `db:"user_id" json:"user_id"`
	ProductID       sql.NullInt64  `db:"product_id" json:"product_id"`
	Content         string         `db:"content" json:"content"`
	Status          string         `db:"status" json:"status"` // draft, scheduled, published, failed
	Source          string         `db:"source" json:"source"` // platform, manual
	TwitterPostID   sql.NullString `db:"twitter_post_id" json:"twitter_post_id"`
	MediaURLs       pq.StringArray `db:"media_urls" json:"media_urls"`
	Hashtags        pq.StringArray `db:"hashtags" json:"hashtags"`
	ScheduledFor    sql.NullTime   `db:"scheduled_for" json:"scheduled_for"`
	PublishedAt     sql.NullTime   `db:"published_at" json:"published_at"`
	AIPrompt        sql.NullString `db:"ai_prompt" json:"ai_prompt"`
	VariationNumber int            `db:"variation_number" json:"variation_number"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// DuePost is a scheduled post joined with its owner's Twitter credential.
// Credential is nil when the owner never connected an account.
type DuePost struct {
	Post       *Post
	Credential *TwitterCredential
}

type MediaAsset struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	FileURL   string    `db:"file_url" json:"file_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	PostStatusDraft     = "draft"
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

const (
	PostSourcePlatform = "platform"
	PostSourceManual   = "manual"
)

const TweetMaxLength = 280
