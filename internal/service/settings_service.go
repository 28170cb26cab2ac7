package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
)

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, timezone string, defaultHashtags []string, autoHashtags bool) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

func (s *settingsService) GetSettingsInfo(ctx context.Context, userID int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !isExist {
		// first read before any write gets the defaults
		return &models.Settings{
			UserID:   userID,
			Timezone: "UTC",
		}, nil
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, timezone string, defaultHashtags []string, autoHashtags bool) error {
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		slog.Info(err.Error())
		return err
	}

	settings := &models.Settings{
		UserID:          userID,
		Timezone:        timezone,
		DefaultHashtags: pq.StringArray(defaultHashtags),
		AutoHashtags:    autoHashtags,
	}
	return s.sr.Upsert(ctx, settings)
}
