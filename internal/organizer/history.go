package organizer

import (
	"time"

	"asset-organizer/internal/model"
)

// HistoryStore persists a record of archive and restore runs.
type HistoryStore interface {
	// CreateRun inserts a new run.
	CreateRun(run *model.Run) error

	// FinishRun sets the finish time and final status of a run.
	FinishRun(runID string, status string, finishedAt time.Time) error

	// AddRunEntry records the outcome for one package of a run.
	AddRunEntry(entry *model.RunEntry) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*model.Run, error)

	// FindRun returns the run whose id starts with prefix. It returns
	// nil, nil when nothing matches and an error when the prefix is ambiguous.
	FindRun(prefix string) (*model.Run, error)

	// ListRunEntries returns the entries of a run in sequence order.
	ListRunEntries(runID string) ([]*model.RunEntry, error)

	// Close closes the underlying storage.
	Close() error
}

// EntriesFromReport converts an archive report into history entries.
func EntriesFromReport(runID string, report *ArchiveReport) []*model.RunEntry {
	entries := make([]*model.RunEntry, 0, len(report.Entries))
	for _, e := range report.Entries {
		entry := &model.RunEntry{
			RunID:           runID,
			Seq:             e.Index,
			PackageID:       e.Record.ID,
			Title:           e.Record.Title,
			Decision:        string(e.Decision),
			MatchState:      e.State.String(),
			SourcePath:      e.Record.FullFilePath,
			DestinationPath: e.Destination,
		}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		entries = append(entries, entry)
	}
	return entries
}
