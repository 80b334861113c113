package dedupe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/stockthemes/internal/core/domain"
)

func TestProcessor_Process(t *testing.T) {
	p := New()
	assert.Equal(t, "dedupe", p.Name())

	in := []domain.TextChunk{
		{Ordinal: 0, Text: "Forward-looking statements apply."},
		{Ordinal: 1, Text: "We design chips."},
		{Ordinal: 2, Text: "forward-looking   STATEMENTS apply."},
		{Ordinal: 3, Text: "We sell wearables."},
	}

	out, err := p.Process(context.Background(), &domain.SourceDocument{}, in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "We design chips.", out[1].Text)
	assert.Equal(t, "We sell wearables.", out[2].Text)
	for i, c := range out {
		assert.Equal(t, i, c.Ordinal)
	}
	assert.Equal(t, 3, in[3].Ordinal, "input must not be mutated")
}

func TestProcessor_Process_Empty(t *testing.T) {
	out, err := New().Process(context.Background(), &domain.SourceDocument{}, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
