package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/postpilot/postpilot/internal/service"
)

// PublishJob is the cron entry point for the scheduled-post pipeline.
type PublishJob struct {
	scheduling service.SchedulingService
}

func NewPublishJob(scheduling service.SchedulingService) *PublishJob {
	return &PublishJob{
		scheduling: scheduling,
	}
}

func (j *PublishJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := j.scheduling.RunBatch(ctx); err != nil {
		slog.Error("publish run aborted", "error", err)
	}
}
