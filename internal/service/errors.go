package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means the post's owner has no connected Twitter account.
	ErrNoCredential = errors.New("no twitter credential for user")

	// ErrNoRefreshToken means the stored grant expired and cannot be renewed
	// without the user reconnecting.
	ErrNoRefreshToken = errors.New("credential expired and no refresh token stored")

	ErrPostNotFound  = errors.New("post not found")
	ErrNotScheduled  = errors.New("post is not scheduled")
	ErrContentLength = errors.New("content exceeds maximum tweet length")
	ErrPastSchedule  = errors.New("scheduled time must be in the future")
)

// PlatformError is a non-2xx answer from the Twitter API. The body is kept
// for operator diagnostics.
type PlatformError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("twitter %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}
