package queue

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// EnqueueAnalyticsSync schedules a metrics pull for one user. Syncs hit the
// Twitter API per user, so they run from workers instead of the cron tick.
func EnqueueAnalyticsSync(asynqClient *asynq.Client, payload AnalyticsSyncPayload, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeAnalyticsSync, taskPayload)

	_, err = asynqClient.Enqueue(task, asynq.ProcessIn(delay), asynq.MaxRetry(3))
	if err != nil {
		return err
	}

	slog.Info("analytics sync enqueued", "user_id", payload.UserID)
	return nil
}
