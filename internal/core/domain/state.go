package domain

// StateVersion is the current schema version of the persisted export
// state. Version 1 predates discovery bookkeeping; loading a v1 record
// migrates it in memory and persists the migrated form.
const StateVersion = 2

// ExportState is the durable record of export progress for one athlete.
// Exactly one state record exists per athlete.
type ExportState struct {
	// Version is the schema version of the record.
	Version int

	// DoneIDs holds the workout IDs whose artifacts have been fully
	// written. An ID is present only after its artifact is on disk.
	DoneIDs map[int64]struct{}

	// DiscoveredIDs holds every workout ID seen on a list page, done
	// or not. Discovery unions this with freshly scraped pages.
	DiscoveredIDs map[int64]struct{}

	// ProcessedPages holds the workout-list page numbers already
	// scraped, so a resumed run does not refetch them.
	ProcessedPages map[int]struct{}
}

// NewExportState returns an empty state at the current schema version.
func NewExportState() *ExportState {
	return &ExportState{
		Version:        StateVersion,
		DoneIDs:        make(map[int64]struct{}),
		DiscoveredIDs:  make(map[int64]struct{}),
		ProcessedPages: make(map[int]struct{}),
	}
}

// IsDone reports whether the workout has been fully exported.
func (s *ExportState) IsDone(wid int64) bool {
	_, ok := s.DoneIDs[wid]
	return ok
}
