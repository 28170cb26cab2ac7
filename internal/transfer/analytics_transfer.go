package transfer

type DashboardStats struct {
	TotalPosts        int64   `json:"total_posts"`
	PublishedPosts    int64   `json:"published_posts"`
	ScheduledPosts    int64   `json:"scheduled_posts"`
	FailedPosts       int64   `json:"failed_posts"`
	TotalImpressions  int64   `json:"total_impressions"`
	TotalEngagements  int64   `json:"total_engagements"`
	AvgEngagementRate float64 `json:"avg_engagement_rate"`
}

type DailyStat struct {
	Date        string `json:"date"`
	Impressions int64  `json:"impressions"`
	Engagements int64  `json:"engagements"`
	Posts       int64  `json:"posts"`
}

type AnalyticsSummary struct {
	TotalPosts        int         `json:"total_posts"`
	TotalImpressions  int64       `json:"total_impressions"`
	TotalEngagements  int64       `json:"total_engagements"`
	AvgEngagementRate float64     `json:"avg_engagement_rate"`
	ChartData         []DailyStat `json:"chart_data"`
}

type OptimalTimes struct {
	BestHours []int    `json:"best_hours"`
	BestDays  []string `json:"best_days"`
}

type SyncResult struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
}
