package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure ResultStore implements the interface.
var _ driven.ResultStore = (*ResultStore)(nil)

// ResultStore is an in-memory implementation of driven.ResultStore.
// Theme categories are shared across tickers the way the SQL stores share
// a themes table.
type ResultStore struct {
	mu         sync.RWMutex
	profiles   map[string]domain.CompanyProfile
	themes     map[string][]domain.StockTheme
	categories map[string]domain.Category
	runs       map[string]time.Time
	social     *SocialStore
	now        func() time.Time
}

// NewResultStore creates a new in-memory result store. social may be nil;
// it is only used to report message counts in Stats.
func NewResultStore(social *SocialStore) *ResultStore {
	return &ResultStore{
		profiles:   make(map[string]domain.CompanyProfile),
		themes:     make(map[string][]domain.StockTheme),
		categories: make(map[string]domain.Category),
		runs:       make(map[string]time.Time),
		social:     social,
		now:        time.Now,
	}
}

// SaveResult replaces the ticker's theme associations.
func (s *ResultStore) SaveResult(_ context.Context, result *domain.ThemeResult) error {
	if result == nil {
		return fmt.Errorf("%w: nil result", domain.ErrInvalidInput)
	}
	ticker, err := domain.NormalizeTicker(result.Ticker)
	if err != nil {
		return err
	}
	now := s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := s.profiles[ticker]
	profile.Ticker = ticker
	if profile.Name == "" {
		profile.Name = result.CompanyName
	}
	s.profiles[ticker] = profile

	themes := make([]domain.StockTheme, 0, len(result.Themes))
	for _, t := range result.Themes {
		if t.Category != "" {
			s.categories[t.Theme] = t.Category
		}
		themes = append(themes, domain.StockTheme{
			Theme:      t.Theme,
			Confidence: t.Confidence,
			Source:     t.Source,
			Evidence:   t.Evidence,
			UpdatedAt:  now,
		})
	}
	s.themes[ticker] = themes
	s.runs[ticker] = now
	return nil
}

// SaveProfile creates or updates the company. Blank fields keep stored values.
func (s *ResultStore) SaveProfile(_ context.Context, profile domain.CompanyProfile) error {
	ticker, err := domain.NormalizeTicker(profile.Ticker)
	if err != nil {
		return err
	}
	profile.Ticker = ticker
	profile.BusinessSummary = ""

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[ticker] = profile.Merge(s.profiles[ticker])
	return nil
}

// GetProfile returns the stored company.
func (s *ResultStore) GetProfile(_ context.Context, ticker string) (*domain.CompanyProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[tickerKey(ticker)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// GetThemes returns a ticker's themes at or above minConfidence.
func (s *ResultStore) GetThemes(_ context.Context, ticker string, minConfidence float64) ([]domain.StockTheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StockTheme
	for _, t := range s.themes[tickerKey(ticker)] {
		if t.Confidence < minConfidence {
			continue
		}
		t.Category = s.categories[t.Theme]
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Theme < out[j].Theme
	})
	return out, nil
}

// FindStocks returns stocks carrying theme, strongest first.
func (s *ResultStore) FindStocks(_ context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.StockMatch
	for ticker, themes := range s.themes {
		for _, t := range themes {
			if t.Theme != theme || t.Confidence < minConfidence {
				continue
			}
			p := s.profiles[ticker]
			out = append(out, domain.StockMatch{
				Ticker:     ticker,
				Name:       p.Name,
				MarketCap:  p.MarketCap,
				Confidence: t.Confidence,
				Source:     t.Source,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].Ticker < out[j].Ticker
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ThemeDistribution counts stocks per theme, most common first.
func (s *ResultStore) ThemeDistribution(_ context.Context) ([]domain.ThemeCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]*domain.ThemeCount)
	for _, themes := range s.themes {
		for _, t := range themes {
			c, ok := counts[t.Theme]
			if !ok {
				c = &domain.ThemeCount{Theme: t.Theme, Category: s.categories[t.Theme]}
				counts[t.Theme] = c
			}
			c.StockCount++
			c.AvgConfidence += t.Confidence
		}
	}

	out := make([]domain.ThemeCount, 0, len(counts))
	for _, c := range counts {
		c.AvgConfidence /= float64(c.StockCount)
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StockCount != out[j].StockCount {
			return out[i].StockCount > out[j].StockCount
		}
		return out[i].Theme < out[j].Theme
	})
	return out, nil
}

// Tickers returns every stored ticker in ascending order.
func (s *ResultStore) Tickers(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.profiles))
	for t := range s.profiles {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// RefreshedSince returns tickers whose themes were saved at or after since.
func (s *ResultStore) RefreshedSince(_ context.Context, since time.Time) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for t, at := range s.runs {
		if !at.Before(since) {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Stats reports entry counts.
func (s *ResultStore) Stats(_ context.Context) (domain.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := domain.StoreStats{Stocks: len(s.profiles)}
	seen := make(map[string]struct{})
	for _, themes := range s.themes {
		stats.Associations += len(themes)
		for _, t := range themes {
			seen[t.Theme] = struct{}{}
		}
	}
	stats.Themes = len(seen)
	if s.social != nil {
		stats.SocialMessages = s.social.Len()
	}
	return stats, nil
}

// Close is a no-op.
func (s *ResultStore) Close() error {
	return nil
}

func tickerKey(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
