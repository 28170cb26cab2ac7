package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func (q *Queue) HandleAnalyticsSyncTask(ctx context.Context, task *asynq.Task) error {
	var payload AnalyticsSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	result, err := q.an.SyncUser(ctx, payload.UserID)
	if err != nil {
		slog.Info("analytics sync failed", "user_id", payload.UserID, "error", err)
		return err
	}

	slog.Info("analytics sync finished", "user_id", payload.UserID,
		"synced", result.Synced, "errors", result.Errors)
	return nil
}
