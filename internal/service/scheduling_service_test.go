package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
	"github.com/postpilot/postpilot/pkg/utils"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type fakePostRepo struct {
	repository.PostRepository

	due     []*models.DuePost
	listErr error

	published map[int64]string
	failed    map[int64]int

	markPublishedErr error
	markFailedErr    error

	created []*models.Post
	byID    map[int64]*models.Post
}

func newFakePostRepo(due ...*models.DuePost) *fakePostRepo {
	return &fakePostRepo{
		due:       due,
		published: make(map[int64]string),
		failed:    make(map[int64]int),
	}
}

func (f *fakePostRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.DuePost, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.due) > limit {
		return f.due[:limit], nil
	}
	return f.due, nil
}

func (f *fakePostRepo) MarkPublished(ctx context.Context, id int64, twitterPostID string, publishedAt time.Time) error {
	if f.markPublishedErr != nil {
		return f.markPublishedErr
	}
	f.published[id] = twitterPostID
	return nil
}

func (f *fakePostRepo) MarkFailed(ctx context.Context, id int64) error {
	if f.markFailedErr != nil {
		return f.markFailedErr
	}
	f.failed[id]++
	return nil
}

type fakeCredRepo struct {
	repository.CredentialRepository

	setTokenCalls int
	setTokenErr   error
}

func (f *fakeCredRepo) SetToken(ctx context.Context, userID int64, accessToken, refreshToken string, expiresAt time.Time) error {
	if f.setTokenErr != nil {
		return f.setTokenErr
	}
	f.setTokenCalls++
	return nil
}

type fakeTwitter struct {
	TwitterService

	postTweetFn func(text string) (string, error)
	refreshFn   func(refreshToken string) (*transfer.TwitterToken, error)
	tweetCount  int
}

func (f *fakeTwitter) PostTweet(ctx context.Context, accessToken, text string, mediaIDs []string) (string, error) {
	f.tweetCount++
	return f.postTweetFn(text)
}

func (f *fakeTwitter) RefreshToken(ctx context.Context, refreshToken string) (*transfer.TwitterToken, error) {
	return f.refreshFn(refreshToken)
}

func newTestScheduler(posts *fakePostRepo, creds *fakeCredRepo, twitter *fakeTwitter) *schedulingService {
	return &schedulingService{
		cfg:     &config.Config{SecretKey: testSecretKey},
		posts:   posts,
		creds:   creds,
		twitter: twitter,
		limiter: rate.NewLimiter(rate.Inf, 1),
		now:     func() time.Time { return testNow },
	}
}

func encrypt(t *testing.T, plaintext string) string {
	t.Helper()
	out, err := utils.Encrypt([]byte(plaintext), []byte(testSecretKey))
	require.NoError(t, err)
	return out
}

func validCredential(t *testing.T, userID int64) *models.TwitterCredential {
	t.Helper()
	return &models.TwitterCredential{
		ID:           1,
		UserID:       userID,
		AccessToken:  encrypt(t, "access-token"),
		RefreshToken: encrypt(t, "refresh-token"),
		ExpiresAt:    testNow.Add(time.Hour),
	}
}

func expiredCredential(t *testing.T, userID int64) *models.TwitterCredential {
	t.Helper()
	cred := validCredential(t, userID)
	cred.ExpiresAt = testNow.Add(-time.Hour)
	return cred
}

func duePost(id, userID int64, cred *models.TwitterCredential) *models.DuePost {
	return &models.DuePost{
		Post: &models.Post{
			ID:      id,
			UserID:  userID,
			Content: "hello world",
			Status:  models.PostStatusScheduled,
		},
		Credential: cred,
	}
}

func TestRunBatchAllSucceed(t *testing.T) {
	posts := newFakePostRepo(
		duePost(1, 10, validCredential(t, 10)),
		duePost(2, 20, validCredential(t, 20)),
		duePost(3, 30, validCredential(t, 30)),
	)
	twitter := &fakeTwitter{postTweetFn: func(string) (string, error) { return "tweet-id", nil }}
	s := newTestScheduler(posts, &fakeCredRepo{}, twitter)

	result, err := s.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Successful)
	assert.Equal(t, 0, result.Failed)
	assert.Len(t, posts.published, 3)
	assert.Empty(t, posts.failed)
}

func TestRunBatchEmpty(t *testing.T) {
	posts := newFakePostRepo()
	s := newTestScheduler(posts, &fakeCredRepo{}, &fakeTwitter{})

	result, err := s.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, &transfer.BatchResult{}, result)
}

func TestRunBatchFailureIsolation(t *testing.T) {
	posts := newFakePostRepo(
		duePost(1, 10, validCredential(t, 10)),
		duePost(2, 20, validCredential(t, 20)),
		duePost(3, 30, validCredential(t, 30)),
	)
	// fail exactly the second post
	calls := 0
	twitter := &fakeTwitter{}
	twitter.postTweetFn = func(string) (string, error) {
		calls++
		if calls == 2 {
			return "", &PlatformError{Op: "post tweet", StatusCode: 403}
		}
		return "tweet-id", nil
	}
	s := newTestScheduler(posts, &fakeCredRepo{}, twitter)

	result, err := s.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, posts.published, int64(1))
	assert.Contains(t, posts.published, int64(3))
	assert.Equal(t, 1, posts.failed[2])
}

func TestRunBatchListDueErrorIsFatal(t *testing.T) {
	posts := newFakePostRepo()
	posts.listErr = errors.New("connection refused")
	s := newTestScheduler(posts, &fakeCredRepo{}, &fakeTwitter{})

	result, err := s.RunBatch(context.Background())
	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestRunBatchRespectsLimit(t *testing.T) {
	var due []*models.DuePost
	for i := int64(1); i <= 60; i++ {
		due = append(due, duePost(i, i, validCredential(t, i)))
	}
	posts := newFakePostRepo(due...)
	twitter := &fakeTwitter{postTweetFn: func(string) (string, error) { return "tweet-id", nil }}
	s := newTestScheduler(posts, &fakeCredRepo{}, twitter)

	result, err := s.RunBatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, batchLimit, result.Processed)
	assert.Equal(t, batchLimit, result.Successful)
}

func TestPublishOneNoCredential(t *testing.T) {
	posts := newFakePostRepo()
	s := newTestScheduler(posts, &fakeCredRepo{}, &fakeTwitter{})

	err := s.PublishOne(context.Background(), duePost(7, 10, nil))
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Equal(t, 1, posts.failed[7])
	assert.Empty(t, posts.published)
}

func TestPublishOnePlatformErrorMarksFailed(t *testing.T) {
	posts := newFakePostRepo()
	twitter := &fakeTwitter{postTweetFn: func(string) (string, error) {
		return "", &PlatformError{Op: "post tweet", StatusCode: 500, Body: "oops"}
	}}
	s := newTestScheduler(posts, &fakeCredRepo{}, twitter)

	err := s.PublishOne(context.Background(), duePost(7, 10, validCredential(t, 10)))

	var perr *PlatformError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 500, perr.StatusCode)
	assert.Equal(t, 1, posts.failed[7])
}

func TestPublishOneStatusWriteFailureCountsFailed(t *testing.T) {
	posts := newFakePostRepo()
	posts.markPublishedErr = errors.New("deadlock detected")
	twitter := &fakeTwitter{postTweetFn: func(string) (string, error) { return "tweet-id", nil }}
	s := newTestScheduler(posts, &fakeCredRepo{}, twitter)

	err := s.PublishOne(context.Background(), duePost(7, 10, validCredential(t, 10)))
	assert.Error(t, err)
	// the tweet went out but nothing terminal was recorded; a later run
	// sees the row still scheduled
	assert.Empty(t, posts.published)
	assert.Empty(t, posts.failed)
}

func TestEnsureValidCredentialNoWritesWhenFresh(t *testing.T) {
	creds := &fakeCredRepo{}
	s := newTestScheduler(newFakePostRepo(), creds, &fakeTwitter{})

	token, err := s.EnsureValidCredential(context.Background(), validCredential(t, 10))
	require.NoError(t, err)

	assert.Equal(t, "access-token", token)
	assert.Equal(t, 0, creds.setTokenCalls)
}

func TestEnsureValidCredentialRefreshesExpired(t *testing.T) {
	creds := &fakeCredRepo{}
	twitter := &fakeTwitter{refreshFn: func(refreshToken string) (*transfer.TwitterToken, error) {
		assert.Equal(t, "refresh-token", refreshToken)
		return &transfer.TwitterToken{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresAt:    testNow.Add(2 * time.Hour),
		}, nil
	}}
	s := newTestScheduler(newFakePostRepo(), creds, twitter)

	cred := expiredCredential(t, 10)
	token, err := s.EnsureValidCredential(context.Background(), cred)
	require.NoError(t, err)

	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, creds.setTokenCalls)
	assert.Equal(t, testNow.Add(2*time.Hour), cred.ExpiresAt)

	// the in-memory credential now carries the rotated pair encrypted
	decrypted, err := utils.Decrypt(cred.RefreshToken, []byte(testSecretKey))
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", decrypted)
}

func TestRefreshCredentialRotatesBeforeExpiry(t *testing.T) {
	creds := &fakeCredRepo{}
	refreshed := false
	twitter := &fakeTwitter{refreshFn: func(refreshToken string) (*transfer.TwitterToken, error) {
		refreshed = true
		assert.Equal(t, "refresh-token", refreshToken)
		return &transfer.TwitterToken{
			AccessToken:  "new-access",
			RefreshToken: "new-refresh",
			ExpiresAt:    testNow.Add(2 * time.Hour),
		}, nil
	}}
	s := newTestScheduler(newFakePostRepo(), creds, twitter)

	// still 20 minutes of life left; the pre-emptive job rotates it anyway
	cred := validCredential(t, 10)
	cred.ExpiresAt = testNow.Add(20 * time.Minute)

	token, err := s.RefreshCredential(context.Background(), cred)
	require.NoError(t, err)

	assert.True(t, refreshed)
	assert.Equal(t, "new-access", token)
	assert.Equal(t, 1, creds.setTokenCalls)
	assert.Equal(t, testNow.Add(2*time.Hour), cred.ExpiresAt)
}

func TestRefreshCredentialNoRefreshToken(t *testing.T) {
	s := newTestScheduler(newFakePostRepo(), &fakeCredRepo{}, &fakeTwitter{})

	cred := validCredential(t, 10)
	cred.RefreshToken = ""

	_, err := s.RefreshCredential(context.Background(), cred)
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestEnsureValidCredentialNoRefreshToken(t *testing.T) {
	s := newTestScheduler(newFakePostRepo(), &fakeCredRepo{}, &fakeTwitter{})

	cred := expiredCredential(t, 10)
	cred.RefreshToken = ""

	_, err := s.EnsureValidCredential(context.Background(), cred)
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestEnsureValidCredentialPersistFailureDropsToken(t *testing.T) {
	creds := &fakeCredRepo{setTokenErr: errors.New("no rows updated")}
	twitter := &fakeTwitter{refreshFn: func(string) (*transfer.TwitterToken, error) {
		return &transfer.TwitterToken{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresAt: testNow.Add(2 * time.Hour)}, nil
	}}
	s := newTestScheduler(newFakePostRepo(), creds, twitter)

	_, err := s.EnsureValidCredential(context.Background(), expiredCredential(t, 10))
	assert.Error(t, err)
}

func TestPublishOneRefreshFailureMarksFailed(t *testing.T) {
	posts := newFakePostRepo()
	twitter := &fakeTwitter{refreshFn: func(string) (*transfer.TwitterToken, error) {
		return nil, &PlatformError{Op: "refresh token", StatusCode: 400, Body: "invalid_grant"}
	}}
	s := newTestScheduler(posts, &fakeCredRepo{}, twitter)

	err := s.PublishOne(context.Background(), duePost(7, 10, expiredCredential(t, 10)))

	var perr *PlatformError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, posts.failed[7])
	assert.Equal(t, 0, twitter.tweetCount)
}
