package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	var none *Ports
	assert.ErrorIs(t, none.Validate(), ErrInvalidPorts)
	assert.ErrorIs(t, (&Ports{Batch: &MockBatchService{}}).Validate(), ErrMissingQueryService)
	assert.NoError(t, (&Ports{Query: &MockQueryService{}}).Validate())

	p := NewPorts(&MockQueryService{}, &MockBatchService{})
	assert.NoError(t, p.Validate())
	assert.NotNil(t, p.Batch)
}
