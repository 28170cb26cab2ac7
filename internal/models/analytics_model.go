package models

import "time"

// PostMetrics is one engagement snapshot for a published post.
type PostMetrics struct {
	ID              int64     `db:"id" json:"id"`
	PostID          int64     `db:"post_id" json:"post_id"`
	UserID          int64     `db:"user_id" json:"user_id"`
	Impressions     int64     `db:"impressions" json:"impressions"`
	Likes           int64     `db:"likes" json:"likes"`
	Retweets        int64     `db:"retweets" json:"retweets"`
	Replies         int64     `db:"replies" json:"replies"`
	Quotes          int64     `db:"quotes" json:"quotes"`
	Bookmarks       int64     `db:"bookmarks" json:"bookmarks"`
	URLLinkClicks   int64     `db:"url_link_clicks" json:"url_link_clicks"`
	ProfileClicks   int64     `db:"user_profile_clicks" json:"user_profile_clicks"`
	EngagementRate  float64   `db:"engagement_rate" json:"engagement_rate"`
	SyncedAt        time.Time `db:"synced_at" json:"synced_at"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	PostPublishedAt time.Time `db:"published_at" json:"published_at,omitempty"`
}

type AccountMetrics struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	FollowersCount int64     `db:"followers_count" json:"followers_count"`
	FollowingCount int64     `db:"following_count" json:"following_count"`
	TweetsCount    int64     `db:"tweets_count" json:"tweets_count"`
	ListedCount    int64     `db:"listed_count" json:"listed_count"`
	SyncedAt       time.Time `db:"synced_at" json:"synced_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
