package app

import (
	"time"

	"asset-organizer/internal/model"
)

// Operation tracks a CLI invocation. Only commands that copy files
// persist it as a history run; read-only commands keep it in memory with
// an empty RunID.
type Operation struct {
	RunID  string
	OpID   string
	Name   string
	Status string
}

// NewOperation creates an in-memory operation. opID is derived from
// startedAt so log lines and history rows of one invocation share it.
func NewOperation(name string, startedAt time.Time) *Operation {
	return &Operation{
		OpID:   OpIDFor(startedAt),
		Name:   name,
		Status: model.RunStatusRunning,
	}
}

// OpIDFor formats t as an operation id.
func OpIDFor(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// Persisted returns true if this operation has been saved as a history run.
func (op *Operation) Persisted() bool {
	return op.RunID != ""
}
