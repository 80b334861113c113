package domain

import (
	"strings"
	"time"
)

// CompanyProfile holds structured company data merged from profile providers.
type CompanyProfile struct {
	Ticker          string  `json:"ticker"`
	Name            string  `json:"name"`
	Sector          string  `json:"sector,omitempty"`
	Industry        string  `json:"industry,omitempty"`
	SICCode         string  `json:"sic_code,omitempty"`
	MarketCap       float64 `json:"market_cap,omitempty"`
	Exchange        string  `json:"exchange,omitempty"`
	BusinessSummary string  `json:"business_summary,omitempty"`
}

// Merge fills empty fields of p from other. The first non-empty value wins.
func (p CompanyProfile) Merge(other CompanyProfile) CompanyProfile {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	p.Ticker = pick(p.Ticker, other.Ticker)
	p.Name = pick(p.Name, other.Name)
	p.Sector = pick(p.Sector, other.Sector)
	p.Industry = pick(p.Industry, other.Industry)
	p.SICCode = pick(p.SICCode, other.SICCode)
	p.Exchange = pick(p.Exchange, other.Exchange)
	p.BusinessSummary = pick(p.BusinessSummary, other.BusinessSummary)
	if p.MarketCap == 0 {
		p.MarketCap = other.MarketCap
	}
	return p
}

// NewsSignal is a summary of recent news coverage for a company.
type NewsSignal struct {
	// Themes are provider theme codes, deduplicated.
	Themes []string

	// Titles are article titles; len(Titles) is the article count.
	Titles []string

	// Tone is the average article tone. Only meaningful when HasTone is set.
	Tone    float64
	HasTone bool
}

// PatentSignal is a summary of a company's patent portfolio.
type PatentSignal struct {
	// CPCCodes are classification codes, deduplicated.
	CPCCodes []string

	// Titles are patent titles.
	Titles []string

	// Count is the number of patents found.
	Count int
}

// Sentiment is a social message's self-reported sentiment.
type Sentiment string

// Sentiments.
const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = ""
)

// ParseSentiment normalises provider sentiment labels. Unknown labels are neutral.
func ParseSentiment(s string) Sentiment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bullish":
		return SentimentBullish
	case "bearish":
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// SocialMessage is a single collected social-media message.
type SocialMessage struct {
	Ticker    string
	Source    string
	MessageID string
	Body      string
	Sentiment Sentiment
	CreatedAt time.Time
}

// SocialSignal is the set of neutral-or-positive messages for a company.
type SocialSignal struct {
	Messages []SocialMessage
}

// Text joins message bodies with single spaces.
func (s SocialSignal) Text() string {
	bodies := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		if body := strings.TrimSpace(m.Body); body != "" {
			bodies = append(bodies, body)
		}
	}
	return strings.Join(bodies, " ")
}

// GenerationRequest is the bounded context handed to a theme generator.
type GenerationRequest struct {
	Ticker      string
	CompanyName string
	Sector      string
	Industry    string

	// Passages are the filtered chunk texts in document order.
	Passages []string

	// TokenBudget caps the passage tokens sent to the model. Zero means no cap.
	TokenBudget int
}

// GeneratedTheme is a free-text theme proposed by a language model.
type GeneratedTheme struct {
	Text          string
	Confidence    float64
	HasConfidence bool
}
