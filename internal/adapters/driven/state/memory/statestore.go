// Package memory provides an in-memory StateStore. It satisfies the
// same serialisation contract as the file store but persists nothing,
// which makes it the store of choice for tests.
package memory

import (
	"context"
	"sync"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is an in-memory implementation of driven.StateStore.
type StateStore struct {
	mu    sync.Mutex
	state *domain.ExportState
}

// NewStateStore creates an empty in-memory state store.
func NewStateStore() *StateStore {
	return &StateStore{state: domain.NewExportState()}
}

// State returns a snapshot of the current export state.
func (s *StateStore) State(_ context.Context) (*domain.ExportState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// IsDone reports whether the workout has been fully exported.
func (s *StateStore) IsDone(_ context.Context, wid int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsDone(wid)
}

// MarkDone records a workout as fully exported.
func (s *StateStore) MarkDone(_ context.Context, wid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DoneIDs[wid] = struct{}{}
	return nil
}

// AddDiscovered records workout IDs seen during discovery.
func (s *StateStore) AddDiscovered(_ context.Context, wids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wid := range wids {
		s.state.DiscoveredIDs[wid] = struct{}{}
	}
	return nil
}

// MarkPageProcessed records a workout-list page as scraped.
func (s *StateStore) MarkPageProcessed(_ context.Context, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ProcessedPages[page] = struct{}{}
	return nil
}

// Remove clears specific workout IDs from the done set.
func (s *StateStore) Remove(_ context.Context, wids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wid := range wids {
		delete(s.state.DoneIDs, wid)
	}
	return nil
}

// Clear empties the done set entirely.
func (s *StateStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DoneIDs = make(map[int64]struct{})
	return nil
}

// Flush is a no-op; nothing is persisted.
func (s *StateStore) Flush(_ context.Context) error { return nil }

func (s *StateStore) snapshot() *domain.ExportState {
	copied := domain.NewExportState()
	copied.Version = s.state.Version
	for wid := range s.state.DoneIDs {
		copied.DoneIDs[wid] = struct{}{}
	}
	for wid := range s.state.DiscoveredIDs {
		copied.DiscoveredIDs[wid] = struct{}{}
	}
	for page := range s.state.ProcessedPages {
		copied.ProcessedPages[page] = struct{}{}
	}
	return copied
}
