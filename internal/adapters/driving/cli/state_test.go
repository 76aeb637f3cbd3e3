package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runninglog/runlog-cli/internal/adapters/driven/state/memory"
	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
)

func setupStateTest(t *testing.T, store driven.StateStore) *bytes.Buffer {
	t.Helper()

	oldFactory := stateStoreFactory
	oldRoot := outputRoot
	stateStoreFactory = func(_ string) (driven.StateStore, error) {
		return store, nil
	}
	outputRoot = t.TempDir()

	t.Cleanup(func() {
		stateStoreFactory = oldFactory
		outputRoot = oldRoot
		rootCmd.SetArgs(nil)
		stateOutputDir = ""
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	return buf
}

func TestStateShowCmd(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()
	require.NoError(t, store.AddDiscovered(ctx, []int64{1, 2, 3, 4}))
	require.NoError(t, store.MarkDone(ctx, 1))
	require.NoError(t, store.MarkDone(ctx, 2))
	require.NoError(t, store.MarkPageProcessed(ctx, 1))
	buf := setupStateTest(t, store)

	rootCmd.SetArgs([]string{"state", "show", "--athlete", "7"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Discovered workouts: 4")
	assert.Contains(t, buf.String(), "Exported workouts:   2")
	assert.Contains(t, buf.String(), "Pending workouts:    2")
	assert.Contains(t, buf.String(), "List pages scanned:  1")
}

func TestStateResetCmd(t *testing.T) {
	store := memory.NewStateStore()
	ctx := context.Background()
	require.NoError(t, store.AddDiscovered(ctx, []int64{1, 2}))
	require.NoError(t, store.MarkDone(ctx, 1))
	buf := setupStateTest(t, store)

	rootCmd.SetArgs([]string{"state", "reset", "--athlete", "7"})
	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "state cleared")

	state, err := store.State(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.DoneIDs)
	assert.Len(t, state.DiscoveredIDs, 2, "discovery results survive a reset")
}

func TestStateCmd_NotConfigured(t *testing.T) {
	oldFactory := stateStoreFactory
	stateStoreFactory = nil
	defer func() {
		stateStoreFactory = oldFactory
		rootCmd.SetArgs(nil)
	}()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"state", "show", "--athlete", "7"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestStateCmd_RejectsInvalidAthlete(t *testing.T) {
	setupStateTest(t, memory.NewStateStore())

	rootCmd.SetArgs([]string{"state", "show", "--athlete", "-1"})
	err := rootCmd.Execute()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "invalid athlete ID")
}
