package domain

import "time"

// StockTheme is a stored theme association for one ticker.
type StockTheme struct {
	Theme      string    `json:"theme"`
	Category   Category  `json:"category,omitempty"`
	Confidence float64   `json:"confidence"`
	Source     Source    `json:"source"`
	Evidence   string    `json:"evidence,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StockMatch is a stock associated with a queried theme.
type StockMatch struct {
	Ticker     string  `json:"ticker"`
	Name       string  `json:"name"`
	MarketCap  float64 `json:"market_cap,omitempty"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// ThemeCount summarises how many stocks carry a theme.
type ThemeCount struct {
	Theme         string   `json:"theme"`
	Category      Category `json:"category,omitempty"`
	StockCount    int      `json:"stock_count"`
	AvgConfidence float64  `json:"avg_confidence"`
}

// StoreStats reports row counts of the result store.
type StoreStats struct {
	Stocks         int `json:"stocks"`
	Themes         int `json:"themes"`
	Associations   int `json:"associations"`
	SocialMessages int `json:"social_messages"`
}

// CompanyThemes is a stored company together with its themes.
type CompanyThemes struct {
	Profile CompanyProfile `json:"profile"`
	Themes  []StockTheme   `json:"themes"`
}
