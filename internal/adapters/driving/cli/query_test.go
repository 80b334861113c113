package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestLookupCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "lookup", "acme", "--min-confidence", "0.5")
	require.NoError(t, err)

	assert.InDelta(t, 0.5, ts.query.lastMin, 1e-9)
	assert.Contains(t, out, "ACME  Acme Robotics Inc")
	assert.Contains(t, out, "Industrials / Machinery")
	assert.Contains(t, out, "robotics")
}

func TestLookupCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.company = nil

	_, err := execute(t, "lookup", "ZZZZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZZZZ has no stored themes")
	assert.Contains(t, err.Error(), "stockthemes extract ZZZZ")
}

func TestLookupCmd_NoThemes(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.company.Themes = nil

	out, err := execute(t, "lookup", "ACME")
	require.NoError(t, err)
	assert.Contains(t, out, "No themes stored.")
}

func TestLookupCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "lookup", "ACME", "--json")
	require.NoError(t, err)

	var company domain.CompanyThemes
	require.NoError(t, json.Unmarshal([]byte(out), &company))
	assert.Equal(t, "ACME", company.Profile.Ticker)
	require.Len(t, company.Themes, 1)
	assert.Equal(t, "robotics", company.Themes[0].Theme)
}

func TestFindCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "find", "automation", "-n", "10")
	require.NoError(t, err)

	assert.Equal(t, 10, ts.query.lastLimit)
	assert.Contains(t, out, "ACME")
	assert.Contains(t, out, "1 stocks")
}

func TestFindCmd_DefaultLimit(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "find", "robotics")
	require.NoError(t, err)
	assert.Equal(t, 50, ts.query.lastLimit)
}

func TestFindCmd_NoResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.stocks = nil

	out, err := execute(t, "find", "quantum computing")
	require.NoError(t, err)
	assert.Contains(t, out, `No stocks found for "quantum computing".`)
}

func TestStatsCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "robotics")
}

func TestStatsCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "stats", "--json")
	require.NoError(t, err)

	var got struct {
		Stats        domain.StoreStats   `json:"stats"`
		Distribution []domain.ThemeCount `json:"distribution"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 42, got.Stats.SocialMessages)
	require.Len(t, got.Distribution, 1)
	assert.Equal(t, 1, got.Distribution[0].StockCount)
}

func TestThemesCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "themes")
	require.NoError(t, err)
	assert.Contains(t, out, "robotics")
	assert.Contains(t, out, "1 themes")
}

func TestThemesCmd_JSONOmitsVectors(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.query.taxonomy[0].Vector = []float32{0.1, 0.2}

	out, err := execute(t, "themes", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, "vector")
	assert.Contains(t, out, `"synonyms"`)
}

func TestQueryCmds_NotConfigured(t *testing.T) {
	for _, args := range [][]string{
		{"lookup", "ACME"},
		{"find", "robotics"},
		{"stats"},
		{"themes"},
	} {
		t.Run(args[0], func(t *testing.T) {
			SetServices(Services{})
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "query service not configured")
		})
	}
}
