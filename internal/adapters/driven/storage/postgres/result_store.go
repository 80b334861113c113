package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// resultStore implements driven.ResultStore.
type resultStore struct {
	store *Store
}

var _ driven.ResultStore = (*resultStore)(nil)

// SaveResult replaces the ticker's theme associations and records the run
// in one transaction.
func (s *resultStore) SaveResult(ctx context.Context, result *domain.ThemeResult) error {
	if result == nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, errNilResult)
	}
	ticker, err := domain.NormalizeTicker(result.Ticker)
	if err != nil {
		return err
	}
	now := s.store.now().UTC()

	sources, err := json.Marshal(nonNil(result.Metadata.SourcesUsed))
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}
	unavailable, err := json.Marshal(nonNil(result.Metadata.Unavailable))
	if err != nil {
		return fmt.Errorf("marshalling unavailable: %w", err)
	}

	tx, err := s.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, `
		INSERT INTO stocks (ticker, name, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (ticker) DO UPDATE SET
			name = CASE WHEN stocks.name = '' THEN EXCLUDED.name ELSE stocks.name END,
			updated_at = EXCLUDED.updated_at
	`, ticker, result.CompanyName, now); err != nil {
		return fmt.Errorf("upserting stock: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM stock_themes WHERE ticker = $1", ticker); err != nil {
		return fmt.Errorf("clearing themes: %w", err)
	}

	for _, theme := range result.Themes {
		var themeID int64
		err := tx.QueryRow(ctx, `
			INSERT INTO themes (name, category) VALUES ($1, $2)
			ON CONFLICT (name) DO UPDATE SET
				category = CASE WHEN EXCLUDED.category = '' THEN themes.category ELSE EXCLUDED.category END
			RETURNING id
		`, theme.Theme, string(theme.Category)).Scan(&themeID)
		if err != nil {
			return fmt.Errorf("upserting theme %q: %w", theme.Theme, err)
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO stock_themes (ticker, theme_id, confidence, source, evidence, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, ticker, themeID, theme.Confidence, string(theme.Source), theme.Evidence, now); err != nil {
			return fmt.Errorf("inserting theme %q: %w", theme.Theme, err)
		}
	}

	runID := result.RunID
	if runID == "" {
		runID = ticker + ":" + now.Format(time.RFC3339)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO extraction_runs (id, ticker, sources_used, total_candidates, chunks_total,
			chunks_relevant, filing_origin, unavailable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			sources_used = EXCLUDED.sources_used,
			total_candidates = EXCLUDED.total_candidates,
			chunks_total = EXCLUDED.chunks_total,
			chunks_relevant = EXCLUDED.chunks_relevant,
			filing_origin = EXCLUDED.filing_origin,
			unavailable = EXCLUDED.unavailable,
			created_at = EXCLUDED.created_at
	`, runID, ticker, string(sources), result.Metadata.TotalCandidates, result.Metadata.ChunksTotal,
		result.Metadata.ChunksRelevant, string(result.Metadata.FilingOrigin), string(unavailable), now); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
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
	_, err = s.store.pool.Exec(ctx, `
		INSERT INTO stocks (ticker, name, sector, industry, sic_code, market_cap, exchange, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ticker) DO UPDATE SET
			name = COALESCE(NULLIF(EXCLUDED.name, ''), stocks.name),
			sector = COALESCE(NULLIF(EXCLUDED.sector, ''), stocks.sector),
			industry = COALESCE(NULLIF(EXCLUDED.industry, ''), stocks.industry),
			sic_code = COALESCE(NULLIF(EXCLUDED.sic_code, ''), stocks.sic_code),
			market_cap = CASE WHEN EXCLUDED.market_cap = 0 THEN stocks.market_cap ELSE EXCLUDED.market_cap END,
			exchange = COALESCE(NULLIF(EXCLUDED.exchange, ''), stocks.exchange),
			updated_at = EXCLUDED.updated_at
	`, ticker, profile.Name, profile.Sector, profile.Industry, profile.SICCode,
		profile.MarketCap, profile.Exchange, s.store.now().UTC())
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

// GetProfile returns the stored company row.
func (s *resultStore) GetProfile(ctx context.Context, ticker string) (*domain.CompanyProfile, error) {
	var p domain.CompanyProfile
	err := s.store.pool.QueryRow(ctx, `
		SELECT ticker, name, sector, industry, sic_code, market_cap, exchange
		FROM stocks WHERE ticker = $1
	`, tickerKey(ticker)).Scan(&p.Ticker, &p.Name, &p.Sector, &p.Industry, &p.SICCode, &p.MarketCap, &p.Exchange)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// GetThemes returns a ticker's themes at or above minConfidence.
func (s *resultStore) GetThemes(ctx context.Context, ticker string, minConfidence float64) ([]domain.StockTheme, error) {
	rows, err := s.store.pool.Query(ctx, `
		SELECT t.name, t.category, st.confidence, st.source, st.evidence, st.updated_at
		FROM stock_themes st
		JOIN themes t ON t.id = st.theme_id
		WHERE st.ticker = $1 AND st.confidence >= $2
		ORDER BY st.confidence DESC, t.name ASC
	`, tickerKey(ticker), minConfidence)
	if err != nil {
		return nil, fmt.Errorf("querying themes: %w", err)
	}
	defer rows.Close()

	var themes []domain.StockTheme
	for rows.Next() {
		var th domain.StockTheme
		var category, source string
		if err := rows.Scan(&th.Theme, &category, &th.Confidence, &source, &th.Evidence, &th.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning theme: %w", err)
		}
		th.Category = domain.Category(category)
		th.Source = domain.Source(source)
		th.UpdatedAt = th.UpdatedAt.UTC()
		themes = append(themes, th)
	}
	return themes, rows.Err()
}

// FindStocks returns stocks carrying theme, strongest first.
func (s *resultStore) FindStocks(ctx context.Context, theme string, minConfidence float64, limit int) ([]domain.StockMatch, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	rows, err := s.store.pool.Query(ctx, `
		SELECT s.ticker, s.name, s.market_cap, st.confidence, st.source
		FROM stock_themes st
		JOIN themes t ON t.id = st.theme_id
		JOIN stocks s ON s.ticker = st.ticker
		WHERE t.name = $1 AND st.confidence >= $2
		ORDER BY st.confidence DESC, s.ticker ASC
		LIMIT $3
	`, theme, minConfidence, limitArg)
	if err != nil {
		return nil, fmt.Errorf("querying stocks: %w", err)
	}
	defer rows.Close()

	var matches []domain.StockMatch
	for rows.Next() {
		var m domain.StockMatch
		var source string
		if err := rows.Scan(&m.Ticker, &m.Name, &m.MarketCap, &m.Confidence, &source); err != nil {
			return nil, fmt.Errorf("scanning stock: %w", err)
		}
		m.Source = domain.Source(source)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// ThemeDistribution counts stocks per theme, most common first.
func (s *resultStore) ThemeDistribution(ctx context.Context) ([]domain.ThemeCount, error) {
	rows, err := s.store.pool.Query(ctx, `
		SELECT t.name, t.category, COUNT(*), AVG(st.confidence)
		FROM stock_themes st
		JOIN themes t ON t.id = st.theme_id
		GROUP BY t.id, t.name, t.category
		ORDER BY COUNT(*) DESC, t.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying distribution: %w", err)
	}
	defer rows.Close()

	var counts []domain.ThemeCount
	for rows.Next() {
		var c domain.ThemeCount
		var category string
		var n int64
		if err := rows.Scan(&c.Theme, &category, &n, &c.AvgConfidence); err != nil {
			return nil, fmt.Errorf("scanning distribution: %w", err)
		}
		c.Category = domain.Category(category)
		c.StockCount = int(n)
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Tickers returns every stored ticker in ascending order.
func (s *resultStore) Tickers(ctx context.Context) ([]string, error) {
	return s.strings(ctx, "SELECT ticker FROM stocks ORDER BY ticker")
}

// RefreshedSince returns tickers with an extraction run at or after since.
func (s *resultStore) RefreshedSince(ctx context.Context, since time.Time) ([]string, error) {
	return s.strings(ctx, "SELECT DISTINCT ticker FROM extraction_runs WHERE created_at >= $1 ORDER BY ticker", since.UTC())
}

// Stats reports row counts.
func (s *resultStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var stocks, themes, assoc, social int64
	err := s.store.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM stocks),
			(SELECT COUNT(DISTINCT theme_id) FROM stock_themes),
			(SELECT COUNT(*) FROM stock_themes),
			(SELECT COUNT(*) FROM social_messages)
	`).Scan(&stocks, &themes, &assoc, &social)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("querying stats: %w", err)
	}
	return domain.StoreStats{
		Stocks:         int(stocks),
		Themes:         int(themes),
		Associations:   int(assoc),
		SocialMessages: int(social),
	}, nil
}

// Close closes the pool.
func (s *resultStore) Close() error {
	return s.store.Close()
}

func (s *resultStore) strings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.store.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tickers: %w", err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning tickers: %w", err)
	}
	return out, nil
}
