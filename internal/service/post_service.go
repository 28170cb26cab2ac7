package service

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lib/pq"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
)

type PostService interface {
	Create(ctx context.Context, userID int64, req *transfer.PostCreation) (*models.Post, error)
	Get(ctx context.Context, userID, postID int64) (*models.Post, error)
	List(ctx context.Context, userID int64, status string, limit int) ([]*models.Post, error)
	Schedule(ctx context.Context, userID, postID int64, scheduledFor time.Time) error
	Reschedule(ctx context.Context, userID, postID int64, scheduledFor time.Time) error
	Cancel(ctx context.Context, userID, postID int64) error
	PublishNow(ctx context.Context, userID, postID int64) (*models.Post, error)
	MarkAsPosted(ctx context.Context, userID int64, req *transfer.ManualPost) (*models.Post, error)
	Remove(ctx context.Context, userID, postID int64) error
}

type postService struct {
	posts      repository.PostRepository
	products   repository.ProductRepository
	creds      repository.CredentialRepository
	scheduling SchedulingService
	now        func() time.Time
}

func NewPostService(
	posts repository.PostRepository,
	products repository.ProductRepository,
	creds repository.CredentialRepository,
	scheduling SchedulingService) PostService {
	return &postService{
		posts:      posts,
		products:   products,
		creds:      creds,
		scheduling: scheduling,
		now:        time.Now,
	}
}

func (s *postService) Create(ctx context.Context, userID int64, req *transfer.PostCreation) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(content) > models.TweetMaxLength {
		return nil, ErrContentLength
	}

	post := &models.Post{
		UserID:    userID,
		Content:   content,
		Status:    models.PostStatusDraft,
		Source:    models.PostSourcePlatform,
		MediaURLs: pq.StringArray(req.MediaURLs),
		Hashtags:  pq.StringArray(req.Hashtags),
	}

	if req.ProductID > 0 {
		owned, err := s.products.CheckByUserID(ctx, req.ProductID, userID)
		if err != nil {
			return nil, err
		}
		if owned {
			post.ProductID = sql.NullInt64{Int64: req.ProductID, Valid: true}
		}
	}

	if req.AIPrompt != "" {
		post.AIPrompt = sql.NullString{String: req.AIPrompt, Valid: true}
	}

	switch {
	case req.Immediately:
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = sql.NullTime{Time: s.now(), Valid: true}
	case req.ScheduledFor != "":
		at, err := time.Parse(time.RFC3339, req.ScheduledFor)
		if err != nil {
			return nil, err
		}
		if !at.After(s.now()) {
			return nil, ErrPastSchedule
		}
		post.Status = models.PostStatusScheduled
		post.ScheduledFor = sql.NullTime{Time: at, Valid: true}
	}

	id, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id

	if req.Immediately {
		if err := s.publish(ctx, post); err != nil {
			return s.posts.GetByID(ctx, id)
		}
		return s.posts.GetByID(ctx, id)
	}

	return post, nil
}

func (s *postService) Get(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, userID int64, status string, limit int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.posts.GetByUserID(ctx, userID, status, limit)
}

func (s *postService) Schedule(ctx context.Context, userID, postID int64, scheduledFor time.Time) error {
	if !scheduledFor.After(s.now()) {
		return ErrPastSchedule
	}
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}
	if post.Status != models.PostStatusDraft {
		return ErrNotScheduled
	}
	return s.posts.Schedule(ctx, postID, userID, scheduledFor)
}

func (s *postService) Reschedule(ctx context.Context, userID, postID int64, scheduledFor time.Time) error {
	if !scheduledFor.After(s.now()) {
		return ErrPastSchedule
	}
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}
	if post.Status != models.PostStatusScheduled {
		return ErrNotScheduled
	}
	return s.posts.Reschedule(ctx, postID, userID, scheduledFor)
}

// Cancel pulls a scheduled post back to draft. Published and failed posts
// stay where they are.
func (s *postService) Cancel(ctx context.Context, userID, postID int64) error {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return err
	}
	if post.Status != models.PostStatusScheduled {
		return ErrNotScheduled
	}
	return s.posts.CancelSchedule(ctx, postID, userID)
}

// PublishNow pushes a draft or scheduled post out immediately instead of
// waiting for its slot.
func (s *postService) PublishNow(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.owned(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	switch post.Status {
	case models.PostStatusDraft:
		if err := s.posts.Schedule(ctx, postID, userID, s.now()); err != nil {
			return nil, err
		}
		post.Status = models.PostStatusScheduled
	case models.PostStatusScheduled:
	default:
		return nil, ErrNotScheduled
	}

	if err := s.publish(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, postID)
}

func (s *postService) publish(ctx context.Context, post *models.Post) error {
	cred, _, err := s.creds.GetByUserID(ctx, post.UserID)
	if err != nil {
		return err
	}
	return s.scheduling.PublishOne(ctx, &models.DuePost{Post: post, Credential: cred})
}

// MarkAsPosted records a tweet the user sent outside the product so it
// still shows up in their history. There is no tweet ID to track, so the
// row never takes part in metric syncs.
func (s *postService) MarkAsPosted(ctx context.Context, userID int64, req *transfer.ManualPost) (*models.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || utf8.RuneCountInString(content) > models.TweetMaxLength {
		return nil, ErrContentLength
	}

	postedAt := s.now()
	if req.PostedAt != "" {
		at, err := time.Parse(time.RFC3339, req.PostedAt)
		if err != nil {
			return nil, err
		}
		postedAt = at
	}

	post := &models.Post{
		UserID:      userID,
		Content:     content,
		Status:      models.PostStatusPublished,
		Source:      models.PostSourceManual,
		PublishedAt: sql.NullTime{Time: postedAt, Valid: true},
	}

	id, err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = id
	return post, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	if _, err := s.owned(ctx, userID, postID); err != nil {
		return err
	}
	return s.posts.Remove(ctx, postID)
}

func (s *postService) owned(ctx context.Context, userID, postID int64) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil || post.UserID != userID {
		return nil, ErrPostNotFound
	}
	return post, nil
}
