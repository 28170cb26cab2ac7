package models

import "time"

// TwitterCredential holds one user's OAuth2 grant for the Twitter API.
// Access and refresh tokens are stored AES-GCM encrypted.
type TwitterCredential struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"user_id"`
	TwitterUserID string    `db:"twitter_user_id" json:"twitter_user_id"`
	Username      string    `db:"twitter_username" json:"twitter_username"`
	AccessToken   string    `db:"access_token" json:"-"`
	RefreshToken  string    `db:"refresh_token" json:"-"`
	ExpiresAt     time.Time `db:"token_expires_at" json:"token_expires_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
