package job

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/postpilot/postpilot/internal/queue"
	"github.com/postpilot/postpilot/internal/repository"
)

// AnalyticsJob fans a metrics sync task out per connected user.
type AnalyticsJob struct {
	cr     repository.CredentialRepository
	client *asynq.Client
}

func NewAnalyticsJob(cr repository.CredentialRepository, client *asynq.Client) *AnalyticsJob {
	return &AnalyticsJob{
		cr:     cr,
		client: client,
	}
}

func (j *AnalyticsJob) EnqueueSyncs() {
	ctx := context.Background()

	userIDs, err := j.cr.ListUserIDs(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, userID := range userIDs {
		payload := queue.AnalyticsSyncPayload{UserID: userID}
		if err := queue.EnqueueAnalyticsSync(j.client, payload, 0); err != nil {
			slog.Info("enqueue failed", "user_id", userID, "error", err)
		}
	}
}
