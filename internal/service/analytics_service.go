package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/postpilot/postpilot/internal/models"
	"github.com/postpilot/postpilot/internal/repository"
	"github.com/postpilot/postpilot/internal/transfer"
)

// Fallback posting times when a user has too little published history to
// compute their own.
var (
	defaultBestHours = []int{9, 12, 15, 18}
	defaultBestDays  = []string{"Tuesday", "Wednesday", "Thursday"}
)

// minSampleSize is the number of measured posts needed before optimal
// times are computed from the user's own data.
const minSampleSize = 5

type AnalyticsService interface {
	SyncPost(ctx context.Context, post *models.Post) error
	SyncUser(ctx context.Context, userID int64) (*transfer.SyncResult, error)
	PostMetrics(ctx context.Context, userID, postID int64) (*models.PostMetrics, error)
	Summary(ctx context.Context, userID int64, days int) (*transfer.AnalyticsSummary, error)
	DashboardStats(ctx context.Context, userID int64) (*transfer.DashboardStats, error)
	OptimalPostingTimes(ctx context.Context, userID int64) (*transfer.OptimalTimes, error)
	TopPosts(ctx context.Context, userID int64, limit int) ([]*models.PostMetrics, error)
}

type analyticsService struct {
	posts      repository.PostRepository
	creds      repository.CredentialRepository
	analytics  repository.AnalyticsRepository
	twitter    TwitterService
	scheduling SchedulingService
	now        func() time.Time
}

func NewAnalyticsService(
	posts repository.PostRepository,
	creds repository.CredentialRepository,
	analytics repository.AnalyticsRepository,
	twitter TwitterService,
	scheduling SchedulingService) AnalyticsService {
	return &analyticsService{
		posts:      posts,
		creds:      creds,
		analytics:  analytics,
		twitter:    twitter,
		scheduling: scheduling,
		now:        time.Now,
	}
}

// SyncPost pulls the latest engagement counts for one published post and
// stores the snapshot.
func (s *analyticsService) SyncPost(ctx context.Context, post *models.Post) error {
	if !post.TwitterPostID.Valid {
		return ErrNotScheduled
	}

	cred, found, err := s.creds.GetByUserID(ctx, post.UserID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoCredential
	}

	accessToken, err := s.scheduling.EnsureValidCredential(ctx, cred)
	if err != nil {
		return err
	}

	metrics, err := s.twitter.TweetMetrics(ctx, accessToken, post.TwitterPostID.String)
	if err != nil {
		return err
	}

	return s.analytics.UpsertPostMetrics(ctx, &models.PostMetrics{
		PostID:         post.ID,
		UserID:         post.UserID,
		Impressions:    metrics.Impressions,
		Likes:          metrics.Likes,
		Retweets:       metrics.Retweets,
		Replies:        metrics.Replies,
		Quotes:         metrics.Quotes,
		Bookmarks:      metrics.Bookmarks,
		URLLinkClicks:  metrics.URLLinkClicks,
		ProfileClicks:  metrics.ProfileClicks,
		EngagementRate: engagementRate(metrics),
		SyncedAt:       s.now(),
	})
}

// SyncUser refreshes metrics for every post published in the last 30 days
// plus the account-level follower counts. Per-post errors are counted, not
// fatal.
func (s *analyticsService) SyncUser(ctx context.Context, userID int64) (*transfer.SyncResult, error) {
	since := s.now().AddDate(0, 0, -30)
	posts, err := s.posts.ListPublished(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	result := &transfer.SyncResult{}
	for _, post := range posts {
		if err := s.SyncPost(ctx, post); err != nil {
			slog.Info("post metrics sync failed", "post_id", post.ID, "error", err)
			result.Errors++
			continue
		}
		result.Synced++
	}

	if err := s.syncAccount(ctx, userID); err != nil {
		slog.Info("account metrics sync failed", "user_id", userID, "error", err)
		result.Errors++
	}

	return result, nil
}

func (s *analyticsService) syncAccount(ctx context.Context, userID int64) error {
	cred, found, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoCredential
	}

	accessToken, err := s.scheduling.EnsureValidCredential(ctx, cred)
	if err != nil {
		return err
	}

	account, err := s.twitter.AccountMetrics(ctx, accessToken)
	if err != nil {
		return err
	}

	return s.analytics.UpsertAccountMetrics(ctx, &models.AccountMetrics{
		UserID:         userID,
		FollowersCount: account.FollowersCount,
		FollowingCount: account.FollowingCount,
		TweetsCount:    account.TweetsCount,
		ListedCount:    account.ListedCount,
		SyncedAt:       s.now(),
	})
}

// PostMetrics returns the stored snapshot for one of the user's posts.
func (s *analyticsService) PostMetrics(ctx context.Context, userID, postID int64) (*models.PostMetrics, error) {
	metrics, found, err := s.analytics.GetByPostID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrPostNotFound
	}
	return metrics, nil
}

// Summary aggregates stored snapshots over a day window into totals plus a
// per-day chart series.
func (s *analyticsService) Summary(ctx context.Context, userID int64, days int) (*transfer.AnalyticsSummary, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	since := s.now().AddDate(0, 0, -days)

	metrics, err := s.analytics.ListByUserID(ctx, userID, since, 500)
	if err != nil {
		return nil, err
	}

	summary := &transfer.AnalyticsSummary{TotalPosts: len(metrics)}
	daily := make(map[string]*transfer.DailyStat)

	for _, m := range metrics {
		engagements := m.Likes + m.Retweets + m.Replies + m.Quotes + m.Bookmarks
		summary.TotalImpressions += m.Impressions
		summary.TotalEngagements += engagements
		summary.AvgEngagementRate += m.EngagementRate

		day := m.PostPublishedAt.Format("2006-01-02")
		stat, ok := daily[day]
		if !ok {
			stat = &transfer.DailyStat{Date: day}
			daily[day] = stat
		}
		stat.Impressions += m.Impressions
		stat.Engagements += engagements
		stat.Posts++
	}

	if len(metrics) > 0 {
		summary.AvgEngagementRate /= float64(len(metrics))
	}

	for _, stat := range daily {
		summary.ChartData = append(summary.ChartData, *stat)
	}
	sort.Slice(summary.ChartData, func(i, j int) bool {
		return summary.ChartData[i].Date < summary.ChartData[j].Date
	})

	return summary, nil
}

func (s *analyticsService) DashboardStats(ctx context.Context, userID int64) (*transfer.DashboardStats, error) {
	counts, err := s.posts.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	impressions, engagements, avgRate, err := s.analytics.Totals(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &transfer.DashboardStats{
		PublishedPosts:    counts[models.PostStatusPublished],
		ScheduledPosts:    counts[models.PostStatusScheduled],
		FailedPosts:       counts[models.PostStatusFailed],
		TotalImpressions:  impressions,
		TotalEngagements:  engagements,
		AvgEngagementRate: avgRate,
	}
	for _, c := range counts {
		stats.TotalPosts += c
	}

	return stats, nil
}

// OptimalPostingTimes ranks publish hours and weekdays by the engagement
// they earned. With fewer than minSampleSize measured posts the
// industry-standard defaults come back instead.
func (s *analyticsService) OptimalPostingTimes(ctx context.Context, userID int64) (*transfer.OptimalTimes, error) {
	since := s.now().AddDate(0, 0, -90)
	metrics, err := s.analytics.ListByUserID(ctx, userID, since, 500)
	if err != nil {
		return nil, err
	}

	if len(metrics) < minSampleSize {
		return &transfer.OptimalTimes{
			BestHours: defaultBestHours,
			BestDays:  defaultBestDays,
		}, nil
	}

	hourScore := make(map[int]int64)
	dayScore := make(map[string]int64)
	for _, m := range metrics {
		engagements := m.Likes + m.Retweets + m.Replies + m.Quotes + m.Bookmarks
		hourScore[m.PostPublishedAt.Hour()] += engagements
		dayScore[m.PostPublishedAt.Weekday().String()] += engagements
	}

	return &transfer.OptimalTimes{
		BestHours: topKeysInt(hourScore, 4),
		BestDays:  topKeysString(dayScore, 3),
	}, nil
}

func (s *analyticsService) TopPosts(ctx context.Context, userID int64, limit int) ([]*models.PostMetrics, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.analytics.TopByEngagement(ctx, userID, limit)
}

func engagementRate(m *transfer.TweetMetrics) float64 {
	if m.Impressions == 0 {
		return 0
	}
	engagements := m.Likes + m.Retweets + m.Replies + m.Quotes + m.Bookmarks
	return float64(engagements) / float64(m.Impressions) * 100
}

func topKeysInt(scores map[int]int64, n int) []int {
	keys := make([]int, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func topKeysString(scores map[string]int64, n int) []string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if scores[keys[i]] != scores[keys[j]] {
			return scores[keys[i]] > scores[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
