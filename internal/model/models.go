package model

import "time"

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// Run is one recorded archive or restore invocation.
type Run struct {
	ID         string // UUID
	OpID       string // Operation id shared with the log file
	Operation  string // "archive" or "restore"
	Source     string // Location name
	DryRun     bool
	StartedAt  time.Time
	FinishedAt *time.Time // nil while the run is in progress
	Status     string
}

// RunEntry is the outcome for one package within a run.
type RunEntry struct {
	RunID           string // Foreign key to Run
	Seq             int    // Position within the run
	PackageID       int
	Title           string
	Decision        string // IGNORED, EXISTS, COPIED, ...
	MatchState      string // None, Partial, Exact
	SourcePath      string
	DestinationPath string
	Error           string
}
