package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/models"
)

var repoNow = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

func newMockRepo(t *testing.T) (PostRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostRepository(db), mock
}

func TestListDueFiltersScheduledAndElapsed(t *testing.T) {
	repo, mock := newMockRepo(t)

	cols := []string{
		"id", "user_id", "product_id", "content", "status", "source", "twitter_post_id",
		"media_urls", "hashtags", "scheduled_for", "published_at", "ai_prompt", "variation_number",
		"created_at", "updated_at",
		"cred_id", "twitter_user_id", "twitter_username", "access_token", "refresh_token", "token_expires_at",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		int64(1), int64(10), nil, "hello", models.PostStatusScheduled, models.PostSourcePlatform, nil,
		"{}", "{}", repoNow.Add(-time.Hour), nil, nil, 0,
		repoNow, repoNow,
		int64(5), "tw-1", "acme", "enc-access", "enc-refresh", repoNow.Add(time.Hour),
	)

	mock.ExpectQuery(`(?s)WHERE p\.status = \$1 AND p\.scheduled_for <= \$2\s+LIMIT \$3`).
		WithArgs(models.PostStatusScheduled, repoNow, 50).
		WillReturnRows(rows)

	due, err := repo.ListDue(context.Background(), repoNow, 50)
	require.NoError(t, err)

	require.Len(t, due, 1)
	assert.Equal(t, int64(1), due[0].Post.ID)
	require.NotNil(t, due[0].Credential)
	assert.Equal(t, "acme", due[0].Credential.Username)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDueWithoutCredential(t *testing.T) {
	repo, mock := newMockRepo(t)

	cols := []string{
		"id", "user_id", "product_id", "content", "status", "source", "twitter_post_id",
		"media_urls", "hashtags", "scheduled_for", "published_at", "ai_prompt", "variation_number",
		"created_at", "updated_at",
		"cred_id", "twitter_user_id", "twitter_username", "access_token", "refresh_token", "token_expires_at",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		int64(2), int64(20), nil, "hello", models.PostStatusScheduled, models.PostSourcePlatform, nil,
		"{}", "{}", repoNow.Add(-time.Hour), nil, nil, 0,
		repoNow, repoNow,
		nil, nil, nil, nil, nil, nil,
	)

	mock.ExpectQuery(`(?s)LEFT JOIN twitter_credentials`).
		WithArgs(models.PostStatusScheduled, repoNow, 50).
		WillReturnRows(rows)

	due, err := repo.ListDue(context.Background(), repoNow, 50)
	require.NoError(t, err)

	require.Len(t, due, 1)
	assert.Nil(t, due[0].Credential)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPublishedOnlyTouchesScheduledRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	// the status guard keeps terminal states sticky: a row that already
	// left scheduled matches zero rows and stays put
	mock.ExpectExec(`(?s)UPDATE posts\s+SET status = \$1, twitter_post_id = \$2, published_at = \$3, updated_at = \$4\s+WHERE id = \$5 AND status = \$6`).
		WithArgs(models.PostStatusPublished, "tweet-1", repoNow, sqlmock.AnyArg(), int64(1), models.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkPublished(context.Background(), 1, "tweet-1", repoNow)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailedOnlyTouchesScheduledRows(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`(?s)UPDATE posts\s+SET status = \$1, updated_at = \$2\s+WHERE id = \$3 AND status = \$4`).
		WithArgs(models.PostStatusFailed, sqlmock.AnyArg(), int64(1), models.PostStatusScheduled).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkFailed(context.Background(), 1)
	require.NoError(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}
