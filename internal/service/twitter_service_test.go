package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/postpilot/postpilot/configs"
)

func newTestTwitter(server *httptest.Server) *twitterService {
	return &twitterService{
		cfg: &config.Config{
			TwitterClientID:     "client-id",
			TwitterClientSecret: "client-secret",
			TwitterRedirectURI:  "http://localhost/callback",
		},
		client:    server.Client(),
		tokenURL:  server.URL + "/2/oauth2/token",
		apiURL:    server.URL + "/2",
		uploadURL: server.URL + "/1.1/media/upload.json",
	}
}

func TestPostTweet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])
		_, hasMedia := body["media"]
		assert.False(t, hasMedia)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"1850000000000000000","text":"hello"}}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	id, err := s.PostTweet(context.Background(), "token-123", "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "1850000000000000000", id)
}

func TestPostTweetWithMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Media struct {
				MediaIDs []string `json:"media_ids"`
			} `json:"media"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"m1", "m2"}, body.Media.MediaIDs)

		w.Write([]byte(`{"data":{"id":"42","text":"hello"}}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	id, err := s.PostTweet(context.Background(), "token-123", "hello", []string{"m1", "m2"})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}

func TestPostTweetNon2xxIsPlatformError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail":"You are not permitted to perform this action."}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	_, err := s.PostTweet(context.Background(), "token-123", "hello", nil)

	var perr *PlatformError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
	assert.Contains(t, perr.Body, "not permitted")
	assert.Contains(t, perr.Error(), "post tweet")
}

func TestRefreshTokenSendsBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostFormValue("grant_type"))
		assert.Equal(t, "old-refresh", r.PostFormValue("refresh_token"))

		w.Write([]byte(`{"access_token":"new-access","refresh_token":"new-refresh","expires_in":7200,"token_type":"bearer"}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	token, err := s.RefreshToken(context.Background(), "old-refresh")
	require.NoError(t, err)

	assert.Equal(t, "new-access", token.AccessToken)
	assert.Equal(t, "new-refresh", token.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), token.ExpiresAt, time.Minute)
}

func TestTweetMetricsPrefersOrganic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets/42", r.URL.Path)
		assert.Contains(t, r.URL.RawQuery, "organic_metrics")

		w.Write([]byte(`{"data":{
			"id":"42",
			"public_metrics":{"retweet_count":3,"reply_count":2,"like_count":10,"quote_count":1,"bookmark_count":4},
			"non_public_metrics":{"impression_count":500,"url_link_clicks":5,"user_profile_clicks":6},
			"organic_metrics":{"impression_count":450,"url_link_clicks":4,"user_profile_clicks":5}
		}}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	metrics, err := s.TweetMetrics(context.Background(), "token-123", "42")
	require.NoError(t, err)

	assert.Equal(t, int64(10), metrics.Likes)
	assert.Equal(t, int64(3), metrics.Retweets)
	assert.Equal(t, int64(450), metrics.Impressions)
	assert.Equal(t, int64(4), metrics.URLLinkClicks)
}

func TestAccountMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/users/me", r.URL.Path)
		w.Write([]byte(`{"data":{"id":"99","username":"acme","public_metrics":{"followers_count":1200,"following_count":300,"tweet_count":4500,"listed_count":12}}}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	metrics, err := s.AccountMetrics(context.Background(), "token-123")
	require.NoError(t, err)

	assert.Equal(t, int64(1200), metrics.FollowersCount)
	assert.Equal(t, int64(4500), metrics.TweetsCount)
}

func TestAuthURL(t *testing.T) {
	s := &twitterService{cfg: &config.Config{
		TwitterClientID:    "client-id",
		TwitterRedirectURI: "http://localhost/callback",
	}}

	authURL := s.AuthURL("state-1", "challenge-1")

	assert.True(t, strings.HasPrefix(authURL, twitterAuthorizeURL+"?"))
	assert.Contains(t, authURL, "code_challenge=challenge-1")
	assert.Contains(t, authURL, "code_challenge_method=S256")
	assert.Contains(t, authURL, "state=state-1")
	assert.Contains(t, authURL, "response_type=code")
}

func TestUploadMedia(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.1/media/upload.json", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.NotEmpty(t, r.PostFormValue("media_data"))

		w.Write([]byte(`{"media_id_string":"710511363345354753"}`))
	}))
	defer server.Close()

	s := newTestTwitter(server)
	id, err := s.UploadMedia(context.Background(), "token-123", []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "710511363345354753", id)
}
