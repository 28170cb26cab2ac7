package queue

import (
	"github.com/postpilot/postpilot/internal/service"
)

// Queue owns the asynq task handlers for background metric syncs.
type Queue struct {
	an service.AnalyticsService
}

func NewQueue(an service.AnalyticsService) *Queue {
	return &Queue{
		an: an,
	}
}

const TaskTypeAnalyticsSync = "analytics:sync_user"

type AnalyticsSyncPayload struct {
	UserID int64 `json:"user_id"`
}
