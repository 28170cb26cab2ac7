package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	config "github.com/postpilot/postpilot/configs"
	"github.com/postpilot/postpilot/internal/transfer"
)

const (
	twitterAuthorizeURL   = "https://twitter.com/i/oauth2/authorize"
	twitterTokenURL       = "https://api.twitter.com/2/oauth2/token"
	twitterAPIBaseURL     = "https://api.twitter.com/2"
	twitterMediaUploadURL = "https://upload.twitter.com/1.1/media/upload.json"
	twitterScopes         = "tweet.read tweet.write users.read offline.access"
)

// TwitterService wraps the v2 Twitter API. Callers pass decrypted access
// tokens; nothing here touches storage or encryption.
type TwitterService interface {
	AuthURL(state, challenge string) string
	ExchangeCode(ctx context.Context, code, verifier string) (*transfer.TwitterToken, error)
	RefreshToken(ctx context.Context, refreshToken string) (*transfer.TwitterToken, error)
	UserInfo(ctx context.Context, accessToken string) (*transfer.TwitterUser, error)
	PostTweet(ctx context.Context, accessToken, text string, mediaIDs []string) (string, error)
	TweetMetrics(ctx context.Context, accessToken, tweetID string) (*transfer.TweetMetrics, error)
	AccountMetrics(ctx context.Context, accessToken string) (*transfer.AccountMetrics, error)
	UploadMedia(ctx context.Context, accessToken string, media []byte, contentType string) (string, error)
}

type twitterService struct {
	cfg       *config.Config
	client    *http.Client
	tokenURL  string
	apiURL    string
	uploadURL string
}

func NewTwitterService(cfg *config.Config) TwitterService {
	return &twitterService{
		cfg:       cfg,
		client:    &http.Client{Timeout: 30 * time.Second},
		tokenURL:  twitterTokenURL,
		apiURL:    twitterAPIBaseURL,
		uploadURL: twitterMediaUploadURL,
	}
}

func (s *twitterService) AuthURL(state, challenge string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.cfg.TwitterClientID)
	q.Set("redirect_uri", s.cfg.TwitterRedirectURI)
	q.Set("scope", twitterScopes)
	q.Set("state", state)
	q.Set("code_challenge", challenge)
	q.Set("code_challenge_method", "S256")
	return twitterAuthorizeURL + "?" + q.Encode()
}

func (s *twitterService) ExchangeCode(ctx context.Context, code, verifier string) (*transfer.TwitterToken, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.cfg.TwitterRedirectURI)
	data.Set("code_verifier", verifier)
	return s.tokenRequest(ctx, "exchange code", data)
}

func (s *twitterService) RefreshToken(ctx context.Context, refreshToken string) (*transfer.TwitterToken, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return s.tokenRequest(ctx, "refresh token", data)
}

func (s *twitterService) tokenRequest(ctx context.Context, op string, data url.Values) (*transfer.TwitterToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.TwitterClientID, s.cfg.TwitterClientSecret)

	var tokenResponse transfer.TwitterTokenResponse
	if err := s.do(req, op, &tokenResponse); err != nil {
		return nil, err
	}

	return &transfer.TwitterToken{
		AccessToken:  tokenResponse.AccessToken,
		RefreshToken: tokenResponse.RefreshToken,
		ExpiresAt:    GetExpiresAt(tokenResponse.ExpiresIn),
	}, nil
}

func (s *twitterService) UserInfo(ctx context.Context, accessToken string) (*transfer.TwitterUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/users/me", nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var result transfer.TwitterUserResponse
	if err := s.do(req, "user info", &result); err != nil {
		return nil, err
	}
	return &result.Data, nil
}

func (s *twitterService) PostTweet(ctx context.Context, accessToken, text string, mediaIDs []string) (string, error) {
	tweet := transfer.TweetRequest{Text: text}
	if len(mediaIDs) > 0 {
		tweet.Media = &transfer.TweetMedia{MediaIDs: mediaIDs}
	}

	body, err := json.Marshal(tweet)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL+"/tweets",
		bytes.NewReader(body))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	var result transfer.TweetResponse
	if err := s.do(req, "post tweet", &result); err != nil {
		return "", err
	}
	return result.Data.ID, nil
}

func (s *twitterService) TweetMetrics(ctx context.Context, accessToken, tweetID string) (*transfer.TweetMetrics, error) {
	endpoint := fmt.Sprintf("%s/tweets/%s?tweet.fields=public_metrics,non_public_metrics,organic_metrics",
		s.apiURL, tweetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var result transfer.TweetLookupResponse
	if err := s.do(req, "tweet metrics", &result); err != nil {
		return nil, err
	}
	metrics := result.Metrics()
	return &metrics, nil
}

func (s *twitterService) AccountMetrics(ctx context.Context, accessToken string) (*transfer.AccountMetrics, error) {
	endpoint := s.apiURL + "/users/me?user.fields=public_metrics"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var result transfer.UserLookupResponse
	if err := s.do(req, "account metrics", &result); err != nil {
		return nil, err
	}

	pm := result.Data.PublicMetrics
	return &transfer.AccountMetrics{
		FollowersCount: pm.FollowersCount,
		FollowingCount: pm.FollowingCount,
		TweetsCount:    pm.TweetCount,
		ListedCount:    pm.ListedCount,
	}, nil
}

// UploadMedia pushes a media file through the v1.1 chunkless upload endpoint
// and returns the media ID to attach to a tweet.
func (s *twitterService) UploadMedia(ctx context.Context, accessToken string, media []byte, contentType string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormField("media_data")
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	if _, err := part.Write([]byte(base64.StdEncoding.EncodeToString(media))); err != nil {
		slog.Info(err.Error())
		return "", err
	}
	if err := writer.Close(); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &buf)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result transfer.MediaUploadResponse
	if err := s.do(req, "media upload", &result); err != nil {
		return "", err
	}
	return result.MediaIDString, nil
}

// do executes the request and decodes the response, translating any non-2xx
// answer into a *PlatformError.
func (s *twitterService) do(req *http.Request, op string, out interface{}) error {
	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		perr := &PlatformError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
		slog.Info(perr.Error())
		return perr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
