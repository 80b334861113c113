package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialCollectCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "social", "collect", "acme", "nvda")
	require.NoError(t, err)

	assert.Equal(t, []string{"ACME", "NVDA"}, ts.social.tickers)
	assert.Contains(t, out, "Collected 2 tickers: 60 messages fetched, 10 new")
	assert.NotContains(t, out, "Failures:")
}

func TestSocialCollectCmd_FromCatalog(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "social", "collect")
	require.NoError(t, err)
	assert.Equal(t, []string{"MSFT", "AAPL"}, ts.social.tickers)
}

func TestSocialCollectCmd_EmptyCatalog(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.tickers.stored = nil

	out, err := execute(t, "social", "collect")
	require.NoError(t, err)
	assert.Contains(t, out, "No tickers to collect.")
	assert.Nil(t, ts.social.tickers)
}

func TestSocialCollectCmd_NotConfigured(t *testing.T) {
	SetServices(Services{})
	_, err := execute(t, "social", "collect", "ACME")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "social collector not configured")
}
