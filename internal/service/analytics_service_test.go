package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
)

type fakeAnalyticsRepo struct {
	repository.AnalyticsRepository

	metrics []*models.PostMetrics
}

func (f *fakeAnalyticsRepo) ListByUserID(ctx context.Context, userID int64, since time.Time, limit int) ([]*models.PostMetrics, error) {
	return f.metrics, nil
}

func (f *fakeAnalyticsRepo) GetByPostID(ctx context.Context, postID, userID int64) (*models.PostMetrics, bool, error) {
	for _, m := range f.metrics {
		if m.PostID == postID && m.UserID == userID {
			return m, true, nil
		}
	}
	return nil, false, nil
}

func newTestAnalytics(repo *fakeAnalyticsRepo) *analyticsService {
	return &analyticsService{
		analytics: repo,
		now:       func() time.Time { return testNow },
	}
}

func metricAt(published time.Time, likes int64) *models.PostMetrics {
	return &models.PostMetrics{
		Likes:           likes,
		Impressions:     1000,
		EngagementRate:  2.0,
		PostPublishedAt: published,
	}
}

func TestOptimalTimesDefaultsOnThinHistory(t *testing.T) {
	repo := &fakeAnalyticsRepo{metrics: []*models.PostMetrics{
		metricAt(testNow, 5),
		metricAt(testNow, 3),
	}}
	s := newTestAnalytics(repo)

	times, err := s.OptimalPostingTimes(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []int{9, 12, 15, 18}, times.BestHours)
	assert.Equal(t, []string{"Tuesday", "Wednesday", "Thursday"}, times.BestDays)
}

func TestOptimalTimesFromHistory(t *testing.T) {
	// 2025-01-14 is a Tuesday
	tuesday9 := time.Date(2025, 1, 14, 9, 0, 0, 0, time.UTC)
	friday16 := time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)

	repo := &fakeAnalyticsRepo{metrics: []*models.PostMetrics{
		metricAt(tuesday9, 100),
		metricAt(tuesday9.Add(-7*24*time.Hour), 80),
		metricAt(friday16, 10),
		metricAt(friday16.Add(-7*24*time.Hour), 5),
		metricAt(friday16.Add(-14*24*time.Hour), 5),
	}}
	s := newTestAnalytics(repo)

	times, err := s.OptimalPostingTimes(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 9, times.BestHours[0])
	assert.Equal(t, "Tuesday", times.BestDays[0])
}

func TestPostMetricsLookup(t *testing.T) {
	repo := &fakeAnalyticsRepo{metrics: []*models.PostMetrics{
		{PostID: 7, UserID: 1, Impressions: 500, Likes: 12},
	}}
	s := newTestAnalytics(repo)

	metrics, err := s.PostMetrics(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(500), metrics.Impressions)

	// another user's post id never resolves
	_, err = s.PostMetrics(context.Background(), 2, 7)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestSummaryAggregation(t *testing.T) {
	day1 := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 12, 15, 0, 0, 0, time.UTC)

	repo := &fakeAnalyticsRepo{metrics: []*models.PostMetrics{
		{PostPublishedAt: day1, Impressions: 100, Likes: 4, Retweets: 1, EngagementRate: 5},
		{PostPublishedAt: day1, Impressions: 200, Likes: 6, EngagementRate: 3},
		{PostPublishedAt: day2, Impressions: 50, Replies: 2, EngagementRate: 4},
	}}
	s := newTestAnalytics(repo)

	summary, err := s.Summary(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalPosts)
	assert.Equal(t, int64(350), summary.TotalImpressions)
	assert.Equal(t, int64(13), summary.TotalEngagements)
	assert.InDelta(t, 4.0, summary.AvgEngagementRate, 0.001)

	require.Len(t, summary.ChartData, 2)
	assert.Equal(t, "2025-01-10", summary.ChartData[0].Date)
	assert.Equal(t, int64(300), summary.ChartData[0].Impressions)
	assert.Equal(t, int64(2), summary.ChartData[0].Posts)
	assert.Equal(t, "2025-01-12", summary.ChartData[1].Date)
}

func TestSummaryEmpty(t *testing.T) {
	s := newTestAnalytics(&fakeAnalyticsRepo{})

	summary, err := s.Summary(context.Background(), 1, 30)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.TotalPosts)
	assert.Zero(t, summary.AvgEngagementRate)
	assert.Empty(t, summary.ChartData)
}

func TestEngagementRate(t *testing.T) {
	rate := engagementRate(&transfer.TweetMetrics{
		Impressions: 1000,
		Likes:       20,
		Retweets:    5,
		Replies:     3,
		Quotes:      1,
		Bookmarks:   1,
	})
	assert.InDelta(t, 3.0, rate, 0.001)

	assert.Zero(t, engagementRate(&transfer.TweetMetrics{Likes: 10}))
}
