package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

// SaveResult replaces the ticker's theme associations and records the run.
func (s *resultStore) SaveResult(ctx context.Context, result *domain.ThemeResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	ticker, err := domain.NormalizeTicker(result.Ticker)
	if err != nil {
		return err
	}
	now := formatTime(s.store.now())

	sources, err := json.Marshal(nonNil(result.Metadata.SourcesUsed))
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	unavailable, err := json.Marshal(nonNil(result.Metadata.Unavailable))
	if err != nil {
		return fmt.Errorf("marshalling unavailable: %w", err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	// The stock row must exist for the foreign key; keep any richer name.
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stocks (ticker, name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = CASE WHEN stocks.name = '' THEN excluded.name ELSE stocks.name END,
			updated_at = excluded.updated_at
	`, ticker, result.CompanyName, now); err != nil {
		return fmt.Errorf("upserting stock: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM stock_themes WHERE ticker = ?", ticker); err != nil {
		return fmt.Errorf("clearing themes: %w", err)
	}

	for _, theme := range result.Themes {
		var themeID int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO themes (name, category) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET
				category = CASE WHEN excluded.category = '' THEN themes.category ELSE excluded.category END
			RETURNING id
		`, theme.Theme, string(theme.Category)).Scan(&themeID)
		if err != nil {
			return fmt.Errorf("upserting theme %q: %w", theme.Theme, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stock_themes (ticker, theme_id, confidence, source, evidence, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, ticker, themeID, theme.Confidence, string(theme.Source), theme.Evidence, now); err != nil {
			return fmt.Errorf("inserting theme %q: %w", theme.Theme, err)
		}
	}

	runID := result.RunID
	if runID == "" {
		runID = ticker + ":" + now
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO extraction_runs (id, ticker, sources_used, total_candidates, chunks_total,
			chunks_relevant, filing_origin, unavailable, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sources_used = excluded.sources_used,
			total_candidates = excluded.total_candidates,
			chunks_total = excluded.chunks_total,
			chunks_relevant = excluded.chunks_relevant,
			filing_origin = excluded.filing_origin,
			unavailable = excluded.unavailable,
			created_at = excluded.created_at
	`, runID, ticker, string(sources), result.Metadata.TotalCandidates, result.Metadata.ChunksTotal,
		result.Metadata.ChunksRelevant, string(result.Metadata.FilingOrigin), string(unavailable), now); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing result: %w", err)
	}
	return nil
}

// SaveProfile creates or updates the company row. Blank fields never
// overwrite stored values.
func (s *resultStore) SaveProfile(ctx context.Context, profile domain.CompanyProfile) error {
	ticker, err := domain.NormalizeTicker(profile.Ticker)
	if err != nil {
		return err
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO stocks (ticker, name, sector, industry, sic_code, market_cap, exchange, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(ticker) DO UPDATE SET
			name = COALESCE(NULLIF(excluded.name, ''), stocks.name),
			sector = COALESCE(NULLIF(excluded.sector, ''), stocks.sector),
			industry = COALESCE(NULLIF(excluded.industry, ''), stocks.industry),
			sic_code = COALESCE(NULLIF(excluded.sic_code, ''), stocks.sic_code),
			market_cap = CASE WHEN excluded.market_cap = 0 THEN stocks.market_cap ELSE excluded.market_cap END,
			exchange = COALESCE(NULLIF(excluded.exchange, ''), stocks.exchange),
			updated_at = excluded.updated_at
	`, ticker, profile.Name, profile.Sector, profile.Industry, profile.SICCode,
		profile.MarketCap, profile.Exchange, formatTime(s.store.now()))
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored company row.
func (s *resultStore) GetProfile(ctx context.Context, ticker string) (*domain.CompanyProfile, error) {
	var p domain.CompanyProfile
	err := s.store.db.QueryRowContext(ctx, `
		SELECT ticker, name, sector, industry, sic_code, market_cap, exchange
		FROM stocks WHERE ticker = ?
	`, tickerKey(ticker)).Scan(&p.Ticker, &p.Name, &p.Sector, &p.Industry,
		&p.SICCode, &p.MarketCap, &p.Exchange)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// GetThemes returns a ticker's themes at or above minConfidence.
func (s *resultStore) GetThemes(ctx context.Context, ticker string, minConfidence float64) ([]domain.StockTheme, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.name, t.category, st.confidence, st.source, st.evidence, st.updated_at
		FROM stock_themes st
		JOIN themes t ON t.id = st.theme_id
		WHERE st.ticker = ? AND st.confidence >= ?
		ORDER BY st.confidence DESC, t.name ASC
	`, tickerKey(ticker), minConfidence)
	if err != nil {
		return nil, fmt.Errorf("querying themes: %w", err)
	}
	defer rows.Close()

	var themes []domain.StockTheme //nolint:prealloc // size unknown from query
	for rows.Next() {
		var (
			th        domain.StockTheme
			category  string
			source    string
			updatedAt string
		)
		if err := rows.Scan(&th.Theme, &category, &th.Confidence, &source, &th.Evidence, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning theme: %w", err)
		}
		th.Category = domain.Category(category)
		th.Source = domain.Source(source)
		th.UpdatedAt = parseTime(updatedAt)
		themes = append(themes, th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating themes: %w", err)
	}
	return themes, nil
}

// FindStocks returns stocks carrying theme, strongest first.
func (s *resultStore) FindStocks(ctx context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT s.ticker, s.name, s.market_cap, st.confidence, st.source
		FROM stock_themes st
		JOIN themes t ON t.id = st.theme_id
		JOIN stocks s ON s.ticker = st.ticker
		WHERE t.name = ? AND st.confidence >= ?
		ORDER BY st.confidence DESC, s.ticker ASC
		LIMIT ?
	`, theme, minConfidence, limit)
	if err != nil {
		return nil, fmt.Errorf("querying stocks: %w", err)
	}
	defer rows.Close()

	var matches []domain.StockMatch //nolint:prealloc // size unknown from query
	for rows.Next() {
		var m domain.StockMatch
		var source string
		if err := rows.Scan(&m.Ticker, &m.Name, &m.MarketCap, &m.Confidence, &source); err != nil {
			return nil, fmt.Errorf("scanning stock: %w", err)
		}
		m.Source = domain.Source(source)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stocks: %w", err)
	}
	return matches, nil
}

// ThemeDistribution counts stocks per theme, most common first.
func (s *resultStore) ThemeDistribution(ctx context.Context) ([]domain.ThemeCount, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.name, t.category, COUNT(*), AVG(st.confidence)
		FROM stock_themes st
		JOIN themes t ON t.id = st.theme_id
		GROUP BY t.id
		ORDER BY COUNT(*) DESC, t.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying distribution: %w", err)
	}
	defer rows.Close()

	var counts []domain.ThemeCount //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.ThemeCount
		var category string
		if err := rows.Scan(&c.Theme, &category, &c.StockCount, &c.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scanning distribution: %w", err)
		}
		c.Category = domain.Category(category)
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating distribution: %w", err)
	}
	return counts, nil
}

// Tickers returns every stored ticker in ascending order.
func (s *resultStore) Tickers(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "SELECT ticker FROM stocks ORDER BY ticker")
}

// RefreshedSince returns tickers with an extraction run at or after since.
func (s *resultStore) RefreshedSince(ctx context.Context, since time.Time) ([]string, error) {
	return s.strings(ctx, `
		SELECT DISTINCT ticker FROM extraction_runs WHERE created_at >= ? ORDER BY ticker
	`, formatTime(since))
}

// Stats reports row counts.
func (s *resultStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stats domain.StoreStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM stocks),
			(SELECT COUNT(DISTINCT theme_id) FROM stock_themes),
			(SELECT COUNT(*) FROM stock_themes),
			(SELECT COUNT(*) FROM social_messages)
	`).Scan(&stats.Stocks, &stats.Themes, &stats.Associations, &stats.SocialMessages)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("querying stats: %w", err)
	}
	return stats, nil
}

// Close closes the underlying database.
func (s *resultStore) Close() error {
	return s.store.Close()
}

func (s *resultStore) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tickers: %w", err)
	}
	defer rows.Close()

	var out []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scanning ticker: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickers: %w", err)
	}
	return out, nil
}

// tickerKey upper-cases a ticker for lookups without validating it.
func tickerKey(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
