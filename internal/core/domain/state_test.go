package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExportState(t *testing.T) {
	state := NewExportState()
	require.NotNil(t, state)

	assert.Equal(t, StateVersion, state.Version)
	assert.Empty(t, state.DoneIDs)
	assert.Empty(t, state.DiscoveredIDs)
	assert.Empty(t, state.ProcessedPages)
}

func TestExportState_IsDone(t *testing.T) {
	state := NewExportState()
	state.DoneIDs[42] = struct{}{}

	assert.True(t, state.IsDone(42))
	assert.False(t, state.IsDone(43))
}
