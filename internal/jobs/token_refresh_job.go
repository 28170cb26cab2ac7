package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/service"
)

// TokenRefreshJob rotates Twitter credentials shortly before they expire so
// publish runs rarely pay the refresh round trip.
type TokenRefreshJob struct {
	cr         repository.CredentialRepository
	scheduling service.SchedulingService
}

func NewTokenRefreshJob(cr repository.CredentialRepository, scheduling service.SchedulingService) *TokenRefreshJob {
	return &TokenRefreshJob{
		cr:         cr,
		scheduling: scheduling,
	}
}

func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	timeIn30Minutes := time.Now().Add(30 * time.Minute)

	creds, err := c.cr.ListExpiring(ctx, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, cred := range creds {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(cred *models.TwitterCredential) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if _, err := c.scheduling.RefreshCredential(ctx, cred); err != nil {
				slog.Info("unable to refresh token", "user_id", cred.UserID, "error", err)
			}
		}(cred)
	}

	wg.Wait()
}
