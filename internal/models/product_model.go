package models

import (
	"time"

	"github.com/lib/pq"
)

type Product struct {
	ID             int64          `db:"id" json:"id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	Name           string         `db:"name" json:"name"`
	Description    string         `db:"description" json:"description"`
	TargetAudience string         `db:"target_audience" json:"target_audience"`
	BrandVoice     string         `db:"brand_voice" json:"brand_voice"`
	Hashtags       pq.StringArray `db:"hashtags" json:"hashtags"`
	IsActive       bool           `db:"is_active" json:"is_active"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}
