package transfer

type PostCreation struct {
	Content      string   `json:"content"`
	ProductID    int64    `json:"product_id"`
	ScheduledFor string   `json:"scheduled_for"` // RFC 3339, empty for draft
	MediaURLs    []string `json:"media_urls"`
	Hashtags     []string `json:"hashtags"`
	AIPrompt     string   `json:"ai_prompt"`
	Immediately  bool     `json:"publish_immediately"`
}

type ManualPost struct {
	Content  string `json:"content"`
	PostedAt string `json:"posted_at"` // RFC 3339, empty for now
}

// BatchResult are the aggregate counters of one publish run.
type BatchResult struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
