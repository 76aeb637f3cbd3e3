// Package file provides the durable, crash-safe StateStore. One JSON
// record per athlete holds the done set and discovery bookkeeping;
// every mutation rewrites the record through an atomic rename so a
// crash mid-write can never leave a half-written file.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/core/ports/driven"
	"github.com/runninglog/runlog-cli/internal/logger"
)

// Ensure StateStore implements the interface.
var _ driven.StateStore = (*StateStore)(nil)

// StateStore is a file-based implementation of driven.StateStore.
// A single mutex serialises every mutation, so two concurrent
// MarkDone calls never interleave their writes.
type StateStore struct {
	mu    sync.Mutex
	path  string
	state *domain.ExportState
}

// stateFile is the on-disk form. The v1 layout (before discovery
// bookkeeping moved to its current keys) is read for migration only.
type stateFile struct {
	Version        int     `json:"version"`
	DoneIDs        []int64 `json:"done_ids"`
	DiscoveredIDs  []int64 `json:"discovered_ids"`
	ProcessedPages []int   `json:"processed_pages"`

	// v1 keys, never written.
	LegacyDone       []int64 `json:"done_wids,omitempty"`
	LegacyDiscovered []int64 `json:"discovered_wids,omitempty"`
	LegacyPages      []int   `json:"processed_workout_list_pages,omitempty"`
}

// NewStateStore opens (or creates) the state record at path. A missing
// file yields an empty state; unparseable bytes fail with
// domain.ErrCorruptState and are never silently discarded. A record at
// an older schema version is migrated in memory and persisted
// immediately.
func NewStateStore(path string) (*StateStore, error) {
	s := &StateStore{path: path, state: domain.NewExportState()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", path, err)
	}

	var raw stateFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrCorruptState, path, err)
	}

	migrated := raw.Version < domain.StateVersion
	if migrated {
		logger.Info("Migrating state %s from version %d to %d", path, raw.Version, domain.StateVersion)
		raw = migrate(raw)
	}

	for _, wid := range raw.DoneIDs {
		s.state.DoneIDs[wid] = struct{}{}
	}
	for _, wid := range raw.DiscoveredIDs {
		s.state.DiscoveredIDs[wid] = struct{}{}
	}
	for _, page := range raw.ProcessedPages {
		s.state.ProcessedPages[page] = struct{}{}
	}

	if migrated {
		if err := s.persistLocked(); err != nil {
			return nil, fmt.Errorf("persist migrated state: %w", err)
		}
	}
	return s, nil
}

// migrate lifts a v1 record into the current layout.
func migrate(raw stateFile) stateFile {
	if len(raw.DoneIDs) == 0 {
		raw.DoneIDs = raw.LegacyDone
	}
	if len(raw.DiscoveredIDs) == 0 {
		raw.DiscoveredIDs = raw.LegacyDiscovered
	}
	if len(raw.ProcessedPages) == 0 {
		raw.ProcessedPages = raw.LegacyPages
	}
	raw.Version = domain.StateVersion
	return raw
}

// Path returns the state file path.
func (s *StateStore) Path() string { return s.path }

// State returns a snapshot of the current export state.
func (s *StateStore) State(_ context.Context) (*domain.ExportState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := domain.NewExportState()
	for wid := range s.state.DoneIDs {
		copied.DoneIDs[wid] = struct{}{}
	}
	for wid := range s.state.DiscoveredIDs {
		copied.DiscoveredIDs[wid] = struct{}{}
	}
	for page := range s.state.ProcessedPages {
		copied.ProcessedPages[page] = struct{}{}
	}
	return copied, nil
}

// IsDone reports whether the workout has been fully exported.
func (s *StateStore) IsDone(_ context.Context, wid int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsDone(wid)
}

// MarkDone records a workout as fully exported and persists before
// returning.
func (s *StateStore) MarkDone(_ context.Context, wid int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DoneIDs[wid] = struct{}{}
	return s.persistLocked()
}

// AddDiscovered records workout IDs seen during discovery.
func (s *StateStore) AddDiscovered(_ context.Context, wids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wid := range wids {
		s.state.DiscoveredIDs[wid] = struct{}{}
	}
	return s.persistLocked()
}

// MarkPageProcessed records a workout-list page as scraped.
func (s *StateStore) MarkPageProcessed(_ context.Context, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ProcessedPages[page] = struct{}{}
	return s.persistLocked()
}

// Remove clears specific workout IDs from the done set.
func (s *StateStore) Remove(_ context.Context, wids []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, wid := range wids {
		delete(s.state.DoneIDs, wid)
	}
	return s.persistLocked()
}

// Clear empties the done set entirely. Discovery bookkeeping is kept:
// the identifier universe has not changed, only its completion.
func (s *StateStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.DoneIDs = make(map[int64]struct{})
	return s.persistLocked()
}

// Flush ensures the latest state has reached storage.
func (s *StateStore) Flush(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// persistLocked writes the state through a temp file and atomic
// rename. Callers hold s.mu.
func (s *StateStore) persistLocked() error {
	out := stateFile{
		Version:        domain.StateVersion,
		DoneIDs:        sortedKeys(s.state.DoneIDs),
		DiscoveredIDs:  sortedKeys(s.state.DiscoveredIDs),
		ProcessedPages: sortedPages(s.state.ProcessedPages),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".runlog-state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file %s: %w", s.path, err)
	}
	return nil
}

func sortedKeys(set map[int64]struct{}) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedPages(set map[int]struct{}) []int {
	pages := make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)
	return pages
}
