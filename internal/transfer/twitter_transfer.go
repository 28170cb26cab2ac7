package transfer

import "time"

// TwitterToken is the decoded response of the OAuth2 token endpoint,
// with expires_in already resolved to an absolute timestamp.
type TwitterToken struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type TwitterTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
}

type TwitterUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

type TwitterUserResponse struct {
	Data TwitterUser `json:"data"`
}

type TweetRequest struct {
	Text  string      `json:"text"`
	Media *TweetMedia `json:"media,omitempty"`
}

type TweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type TweetData struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type TweetResponse struct {
	Data TweetData `json:"data"`
}

type TweetMetrics struct {
	Impressions   int64 `json:"impressions"`
	Likes         int64 `json:"likes"`
	Retweets      int64 `json:"retweets"`
	Replies       int64 `json:"replies"`
	Quotes        int64 `json:"quotes"`
	Bookmarks     int64 `json:"bookmarks"`
	URLLinkClicks int64 `json:"url_link_clicks"`
	ProfileClicks int64 `json:"user_profile_clicks"`
}

type tweetPublicMetrics struct {
	RetweetCount  int64 `json:"retweet_count"`
	ReplyCount    int64 `json:"reply_count"`
	LikeCount     int64 `json:"like_count"`
	QuoteCount    int64 `json:"quote_count"`
	BookmarkCount int64 `json:"bookmark_count"`
}

type tweetPrivateMetrics struct {
	ImpressionCount   int64 `json:"impression_count"`
	URLLinkClicks     int64 `json:"url_link_clicks"`
	UserProfileClicks int64 `json:"user_profile_clicks"`
}

type TweetLookupResponse struct {
	Data struct {
		ID               string               `json:"id"`
		PublicMetrics    *tweetPublicMetrics  `json:"public_metrics"`
		NonPublicMetrics *tweetPrivateMetrics `json:"non_public_metrics"`
		OrganicMetrics   *tweetPrivateMetrics `json:"organic_metrics"`
	} `json:"data"`
}

// Metrics flattens the lookup response, preferring organic counts for
// impression and click fields.
func (r *TweetLookupResponse) Metrics() TweetMetrics {
	var m TweetMetrics
	if pm := r.Data.PublicMetrics; pm != nil {
		m.Likes = pm.LikeCount
		m.Retweets = pm.RetweetCount
		m.Replies = pm.ReplyCount
		m.Quotes = pm.QuoteCount
		m.Bookmarks = pm.BookmarkCount
	}
	if om := r.Data.OrganicMetrics; om != nil {
		m.Impressions = om.ImpressionCount
		m.URLLinkClicks = om.URLLinkClicks
		m.ProfileClicks = om.UserProfileClicks
	} else if npm := r.Data.NonPublicMetrics; npm != nil {
		m.Impressions = npm.ImpressionCount
		m.URLLinkClicks = npm.URLLinkClicks
		m.ProfileClicks = npm.UserProfileClicks
	}
	return m
}

type AccountMetrics struct {
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
	TweetsCount    int64 `json:"tweets_count"`
	ListedCount    int64 `json:"listed_count"`
}

type UserLookupResponse struct {
	Data struct {
		ID            string `json:"id"`
		Username      string `json:"username"`
		PublicMetrics struct {
			FollowersCount int64 `json:"followers_count"`
			FollowingCount int64 `json:"following_count"`
			TweetCount     int64 `json:"tweet_count"`
			ListedCount    int64 `json:"listed_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

type MediaUploadResponse struct {
	MediaIDString string `json:"media_id_string"`
}
