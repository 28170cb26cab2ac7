package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
	"github.com/postpilot/postpilot/pkg/utils"
)

// batchLimit caps how many due posts a single run picks up. A backlog
// larger than this drains over consecutive runs.
const batchLimit = 50

// tokenSkew treats a credential as expired slightly before its real
// expiry so a token never dies mid-publish.
const tokenSkew = time.Minute

type SchedulingService interface {
	RunBatch(ctx context.Context) (*transfer.BatchResult, error)
	PublishOne(ctx context.Context, due *models.DuePost) error
	EnsureValidCredential(ctx context.Context, cred *models.TwitterCredential) (string, error)
	RefreshCredential(ctx context.Context, cred *models.TwitterCredential) (string, error)
}

type schedulingService struct {
	cfg     *config.Config
	posts   repository.PostRepository
	creds   repository.CredentialRepository
	twitter TwitterService
	limiter *rate.Limiter
	client  *http.Client
	now     func() time.Time
}

func NewSchedulingService(
	cfg *config.Config,
	posts repository.PostRepository,
	creds repository.CredentialRepository,
	twitter TwitterService) SchedulingService {
	return &schedulingService{
		cfg:     cfg,
		posts:   posts,
		creds:   creds,
		twitter: twitter,
		// one publish per second, to stay clear of the write rate limit
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

// RunBatch selects due posts and publishes them sequentially. One post's
// failure never stops the rest: each failure is recorded on its own row and
// counted, and the run carries on. The only fatal error is being unable to
// read the due set at all.
func (s *schedulingService) RunBatch(ctx context.Context) (*transfer.BatchResult, error) {
	due, err := s.posts.ListDue(ctx, s.now(), batchLimit)
	if err != nil {
		slog.Error("selecting due posts failed", "error", err)
		return nil, err
	}

	result := &transfer.BatchResult{Processed: len(due)}
	if len(due) == 0 {
		return result, nil
	}

	slog.Info("publish run started", "due", len(due))

	for _, dp := range due {
		if err := s.limiter.Wait(ctx); err != nil {
			// context cancelled mid-run; posts not yet reached stay
			// scheduled and are picked up next run
			result.Processed = result.Successful + result.Failed
			return result, nil
		}

		if err := s.PublishOne(ctx, dp); err != nil {
			slog.Info("publish failed", "post_id", dp.Post.ID, "error", err)
			result.Failed++
			continue
		}
		result.Successful++
	}

	slog.Info("publish run finished",
		"processed", result.Processed,
		"successful", result.Successful,
		"failed", result.Failed)

	return result, nil
}

// PublishOne pushes a single due post to Twitter and records the outcome.
// Every return path leaves the row in a terminal state (published or
// failed) except when the status write itself fails, which is logged and
// surfaced so the run counts the post as failed; the row stays scheduled
// and is retried by a later run.
func (s *schedulingService) PublishOne(ctx context.Context, due *models.DuePost) error {
	post := due.Post

	if due.Credential == nil {
		s.markFailed(ctx, post.ID)
		return ErrNoCredential
	}

	accessToken, err := s.EnsureValidCredential(ctx, due.Credential)
	if err != nil {
		s.markFailed(ctx, post.ID)
		return err
	}

	mediaIDs, err := s.uploadMedia(ctx, accessToken, post.MediaURLs)
	if err != nil {
		s.markFailed(ctx, post.ID)
		return err
	}

	tweetID, err := s.twitter.PostTweet(ctx, accessToken, post.Content, mediaIDs)
	if err != nil {
		s.markFailed(ctx, post.ID)
		return err
	}

	if err := s.posts.MarkPublished(ctx, post.ID, tweetID, s.now()); err != nil {
		slog.Error("tweet sent but status write failed", "post_id", post.ID, "tweet_id", tweetID)
		return err
	}

	slog.Info("post published", "post_id", post.ID, "tweet_id", tweetID)
	return nil
}

// EnsureValidCredential returns a plaintext access token ready to use. A
// still-valid credential is decrypted and returned with no writes; an
// expired one goes through RefreshCredential.
func (s *schedulingService) EnsureValidCredential(ctx context.Context, cred *models.TwitterCredential) (string, error) {
	if cred.ExpiresAt.After(s.now().Add(tokenSkew)) {
		return utils.Decrypt(cred.AccessToken, []byte(s.cfg.SecretKey))
	}

	return s.RefreshCredential(ctx, cred)
}

// RefreshCredential rotates the token pair unconditionally, however much
// life the current token has left. The rotated pair is persisted before
// the new token is handed back, so a crash after this call never strands
// an unstored token.
func (s *schedulingService) RefreshCredential(ctx context.Context, cred *models.TwitterCredential) (string, error) {
	if cred.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	refreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	token, err := s.twitter.RefreshToken(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	encryptedAccess, err := utils.Encrypt([]byte(token.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}
	encryptedRefresh, err := utils.Encrypt([]byte(token.RefreshToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return "", err
	}

	err = s.creds.SetToken(ctx, cred.UserID, encryptedAccess, encryptedRefresh, token.ExpiresAt)
	if err != nil {
		return "", err
	}

	cred.AccessToken = encryptedAccess
	cred.RefreshToken = encryptedRefresh
	cred.ExpiresAt = token.ExpiresAt

	return token.AccessToken, nil
}

// uploadMedia fetches each attached file and pushes it to Twitter,
// collecting media IDs for the tweet.
func (s *schedulingService) uploadMedia(ctx context.Context, accessToken string, mediaURLs []string) ([]string, error) {
	if len(mediaURLs) == 0 {
		return nil, nil
	}

	mediaIDs := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		data, contentType, err := s.fetchMedia(ctx, mediaURL)
		if err != nil {
			return nil, err
		}

		mediaID, err := s.twitter.UploadMedia(ctx, accessToken, data, contentType)
		if err != nil {
			return nil, err
		}
		mediaIDs = append(mediaIDs, mediaID)
	}
	return mediaIDs, nil
}

func (s *schedulingService) fetchMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		perr := &PlatformError{Op: "fetch media", StatusCode: resp.StatusCode}
		slog.Info(perr.Error())
		return nil, "", perr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		slog.Info(err.Error())
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// markFailed is best effort. If the write fails the post stays scheduled
// and a later run retries it; the current run still counts it as failed.
func (s *schedulingService) markFailed(ctx context.Context, postID int64) {
	if err := s.posts.MarkFailed(ctx, postID); err != nil {
		slog.Error("marking post failed did not persist", "post_id", postID, "error", err)
	}
}
