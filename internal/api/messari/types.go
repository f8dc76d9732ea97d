package messari

// metricsResponse is the payload of /assets/{symbol}/metrics
type metricsResponse struct {
	Data struct {
		Symbol     string `json:"symbol"`
		MarketData struct {
			PriceUSD              *float64 `json:"price_usd"`
			VolumeLast24Hours     *float64 `json:"volume_last_24_hours"`
			RealVolumeLast24Hours *float64 `json:"real_volume_last_24_hours"`
		} `json:"market_data"`
		Marketcap struct {
			CurrentMarketcapUSD *float64 `json:"current_marketcap_usd"`
		} `json:"marketcap"`
		Twitter *struct {
			Followers          *float64 `json:"followers"`
			FollowersChange24h *float64 `json:"followers_change_24h"`
			StatusCount        *float64 `json:"status_count"`
		} `json:"twitter"`
	} `json:"data"`
}

// timeSeriesResponse is the payload of /assets/{symbol}/metrics/{metric}/time-series.
// Each value row is [timestamp, column...]; null cells decode to nil.
type timeSeriesResponse struct {
	Data struct {
		Values [][]*float64 `json:"values"`
	} `json:"data"`
}

// newsResponse is the payload of /news
type newsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Content     string `json:"content"`
		URL         string `json:"url"`
		PublishedAt string `json:"published_at"`
		Author      *struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"data"`
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
