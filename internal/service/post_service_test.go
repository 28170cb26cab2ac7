package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/transfer"
)

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) (int64, error) {
	f.created = append(f.created, post)
	return int64(len(f.created)), nil
}

func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	if f.byID != nil {
		return f.byID[id], nil
	}
	return nil, nil
}

func newTestPostService(posts *fakePostRepo) *postService {
	return &postService{
		posts:    posts,
		products: &fakeProductRepo{},
		now:      func() time.Time { return testNow },
	}
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	s := newTestPostService(newFakePostRepo())

	_, err := s.Create(context.Background(), 1, &transfer.PostCreation{Content: "   "})
	assert.ErrorIs(t, err, ErrContentLength)
}

func TestCreatePostRejectsOverlongContent(t *testing.T) {
	s := newTestPostService(newFakePostRepo())

	_, err := s.Create(context.Background(), 1, &transfer.PostCreation{
		Content: strings.Repeat("x", models.TweetMaxLength+1),
	})
	assert.ErrorIs(t, err, ErrContentLength)
}

func TestCreatePostCountsRunesNotBytes(t *testing.T) {
	posts := newFakePostRepo()
	s := newTestPostService(posts)

	// 280 multibyte runes are within the limit even though the byte count
	// is far larger
	post, err := s.Create(context.Background(), 1, &transfer.PostCreation{
		Content: strings.Repeat("é", models.TweetMaxLength),
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusDraft, post.Status)
}

func TestCreatePostRejectsPastSchedule(t *testing.T) {
	s := newTestPostService(newFakePostRepo())

	_, err := s.Create(context.Background(), 1, &transfer.PostCreation{
		Content:      "hello",
		ScheduledFor: testNow.Add(-time.Hour).Format(time.RFC3339),
	})
	assert.ErrorIs(t, err, ErrPastSchedule)
}

func TestCreatePostScheduled(t *testing.T) {
	posts := newFakePostRepo()
	s := newTestPostService(posts)

	at := testNow.Add(2 * time.Hour)
	post, err := s.Create(context.Background(), 1, &transfer.PostCreation{
		Content:      "hello",
		ScheduledFor: at.Format(time.RFC3339),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, models.PostSourcePlatform, post.Source)
	require.True(t, post.ScheduledFor.Valid)
	assert.True(t, post.ScheduledFor.Time.Equal(at))
}

func TestCreatePostDraftWithoutSchedule(t *testing.T) {
	posts := newFakePostRepo()
	s := newTestPostService(posts)

	post, err := s.Create(context.Background(), 1, &transfer.PostCreation{Content: "hello"})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.False(t, post.ScheduledFor.Valid)
}

func TestMarkAsPosted(t *testing.T) {
	posts := newFakePostRepo()
	s := newTestPostService(posts)

	postedAt := testNow.Add(-3 * time.Hour)
	post, err := s.MarkAsPosted(context.Background(), 1, &transfer.ManualPost{
		Content:  "posted from my phone",
		PostedAt: postedAt.Format(time.RFC3339),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.Equal(t, models.PostSourceManual, post.Source)
	assert.False(t, post.TwitterPostID.Valid)
	require.True(t, post.PublishedAt.Valid)
	assert.True(t, post.PublishedAt.Time.Equal(postedAt))
}

func TestMarkAsPostedDefaultsToNow(t *testing.T) {
	s := newTestPostService(newFakePostRepo())

	post, err := s.MarkAsPosted(context.Background(), 1, &transfer.ManualPost{Content: "hello"})
	require.NoError(t, err)

	require.True(t, post.PublishedAt.Valid)
	assert.True(t, post.PublishedAt.Time.Equal(testNow))
}

func TestCancelRequiresScheduledStatus(t *testing.T) {
	posts := newFakePostRepo()
	posts.byID = map[int64]*models.Post{
		1: {ID: 1, UserID: 1, Status: models.PostStatusPublished},
	}
	s := newTestPostService(posts)

	err := s.Cancel(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotScheduled)
}

func TestRescheduleUnknownPost(t *testing.T) {
	s := newTestPostService(newFakePostRepo())

	err := s.Reschedule(context.Background(), 1, 99, testNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestGetEnforcesOwnership(t *testing.T) {
	posts := newFakePostRepo()
	posts.byID = map[int64]*models.Post{
		1: {ID: 1, UserID: 2, Status: models.PostStatusDraft},
	}
	s := newTestPostService(posts)

	_, err := s.Get(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
