package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

type stubProvider struct {
	out domain.Outcome[domain.CompanyProfile]
}

func (s stubProvider) FetchProfile(_ context.Context, _ string) domain.Outcome[domain.CompanyProfile] {
	return s.out
}

func TestComposite_Merge(t *testing.T) {
	yahoo := stubProvider{out: domain.Available(domain.CompanyProfile{
		Ticker:    "ACME",
		Name:      "Acme Devices",
		Sector:    "Technology",
		MarketCap: 2e9,
	})}
	sec := stubProvider{out: domain.Available(domain.CompanyProfile{
		Ticker:   "ACME",
		Name:     "ACME DEVICES INC",
		SICCode:  "3571",
		Exchange: "Nasdaq",
	})}

	profile, ok := NewComposite(yahoo, nil, sec).FetchProfile(context.Background(), "acme").Get()
	require.True(t, ok)
	assert.Equal(t, domain.CompanyProfile{
		Ticker:    "ACME",
		Name:      "Acme Devices",
		Sector:    "Technology",
		SICCode:   "3571",
		MarketCap: 2e9,
		Exchange:  "Nasdaq",
	}, profile)
}

func TestComposite_PartialFailure(t *testing.T) {
	yahoo := stubProvider{out: domain.Missing[domain.CompanyProfile]("yahoo", domain.ReasonFailed, errors.New("boom"))}
	sec := stubProvider{out: domain.Available(domain.CompanyProfile{Name: "ACME DEVICES INC"})}

	profile, ok := NewComposite(yahoo, sec).FetchProfile(context.Background(), " acme ").Get()
	require.True(t, ok)
	assert.Equal(t, "ACME", profile.Ticker)
	assert.Equal(t, "ACME DEVICES INC", profile.Name)
}

func TestComposite_AllMissing(t *testing.T) {
	yahoo := stubProvider{out: domain.Missing[domain.CompanyProfile]("yahoo", domain.ReasonFailed, nil)}
	sec := stubProvider{out: domain.Missing[domain.CompanyProfile]("sec", domain.ReasonNotFound, nil)}

	out := NewComposite(yahoo, sec).FetchProfile(context.Background(), "ZZZZ")
	assert.False(t, out.IsAvailable())
	assert.Equal(t, "sec", out.Unavailable().Provider)
	assert.Equal(t, domain.ReasonNotFound, out.Unavailable().Reason)

	empty := NewComposite().FetchProfile(context.Background(), "ZZZZ")
	assert.ErrorIs(t, empty.Unavailable().Err, domain.ErrMissingService)
}
