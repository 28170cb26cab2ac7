package transfer

type ContentRequest struct {
	ProductID      int64  `json:"product_id"`
	Prompt         string `json:"prompt"`
	BrandVoice     string `json:"brand_voice"`
	TargetAudience string `json:"target_audience"`
	Count          int    `json:"count"`
}

type ContentVariation struct {
	Content         string   `json:"content"`
	VariationNumber int      `json:"variation_number"`
	Hashtags        []string `json:"hashtags"`
}

type ImproveRequest struct {
	Content        string `json:"content"`
	BrandVoice     string `json:"brand_voice"`
	TargetAudience string `json:"target_audience"`
}
