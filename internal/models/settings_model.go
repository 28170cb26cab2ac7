package models

import (
	"time"

	"github.com/lib/pq"
)

type Settings struct {
	ID              int64          `db:"id" json:"id"`
	UserID          int64          `db:"user_id" json:"user_id"`
	Timezone        string         `db:"timezone" json:"timezone"`
	DefaultHashtags pq.StringArray `db:"default_hashtags" json:"default_hashtags"`
	AutoHashtags    bool           `db:"auto_hashtags" json:"auto_hashtags"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}
