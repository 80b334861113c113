package patentsview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/httpclient"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

const patentsJSON = `{"error":false,"count":3,"patents":[
  {"patent_id":"1","patent_title":"Wrist-worn heart monitor","cpc_at_issue":[{"cpc_group_id":"A61B5/02","cpc_subclass_id":"A61B"},{"cpc_group_id":"G04G21/02","cpc_subclass_id":"G04G"}]},
  {"patent_id":"2","patent_title":"Neural network accelerator","cpc_at_issue":[{"cpc_group_id":"G06N3/08","cpc_subclass_id":"G06N"},{"cpc_group_id":"A61B5/02","cpc_subclass_id":"A61B"}]},
  {"patent_id":"3","patent_title":" ","cpc_at_issue":[{"cpc_group_id":"","cpc_subclass_id":"H01M"}]}
]}`

func TestFetchPatents(t *testing.T) {
	var query map[string]any
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("q")), &query))
		assert.JSONEq(t, `{"size":100}`, r.URL.Query().Get("o"))
		_, _ = w.Write([]byte(patentsJSON))
	}))
	defer srv.Close()

	p := New(httpclient.New(ProviderName, nil), Config{APIKey: "k3y", BaseURL: srv.URL + "/"})
	signal, ok := p.FetchPatents(context.Background(), "Acme Devices, Inc.").Get()
	require.True(t, ok)

	assert.Equal(t, 3, signal.Count)
	assert.Equal(t, []string{"Wrist-worn heart monitor", "Neural network accelerator"}, signal.Titles)
	assert.Equal(t, []string{"A61B5/02", "G04G21/02", "G06N3/08", "H01M"}, signal.CPCCodes)
	assert.Equal(t, "k3y", apiKey)
	assert.Equal(t, map[string]any{
		"_contains": map[string]any{"assignees.assignee_organization": "Acme Devices"},
	}, query)
}

func TestFetchPatents_NoKey(t *testing.T) {
	p := New(httpclient.New(ProviderName, nil), Config{})
	out := p.FetchPatents(context.Background(), "Acme")
	assert.Equal(t, domain.ReasonNoCredential, out.Unavailable().Reason)
	assert.ErrorIs(t, out.Unavailable().Err, domain.ErrNoCredential)
}

func TestFetchPatents_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason domain.UnavailableReason
	}{
		{"forbidden", http.StatusForbidden, `{}`, domain.ReasonNoCredential},
		{"server error", http.StatusInternalServerError, `{}`, domain.ReasonFailed},
		{"api error flag", http.StatusOK, `{"error":true}`, domain.ReasonFailed},
		{"not json", http.StatusOK, `<html>`, domain.ReasonFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := New(httpclient.New(ProviderName, nil), Config{APIKey: "k", BaseURL: srv.URL})
			out := p.FetchPatents(context.Background(), "Acme")
			assert.False(t, out.IsAvailable())
			assert.Equal(t, tt.reason, out.Unavailable().Reason)
		})
	}

	t.Run("blank name", func(t *testing.T) {
		p := New(httpclient.New(ProviderName, nil), Config{APIKey: "k"})
		out := p.FetchPatents(context.Background(), " , ")
		assert.Equal(t, domain.ReasonNotFound, out.Unavailable().Reason)
	})
}

func TestCleanCompanyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Apple Inc.", "Apple"},
		{"Microsoft Corporation", "Microsoft"},
		{"Alphabet Inc", "Alphabet"},
		{"Acme Devices, Inc.", "Acme Devices"},
		{"Shell PLC", "Shell"},
		{"Siemens AG", "Siemens"},
		{"  Tesla  ", "Tesla"},
		{"Coca-Cola Co", "Coca-Cola"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanCompanyName(tt.in), tt.in)
	}
}
