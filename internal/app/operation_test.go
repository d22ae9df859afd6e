package app

import (
	"testing"
	"time"

	"asset-organizer/internal/model"
)

func TestNewOperation(t *testing.T) {
	started := time.Date(2024, 3, 9, 8, 7, 6, 0, time.FixedZone("CET", 3600))

	tests := []struct {
		name      string
		operation string
	}{
		{name: "archive", operation: "archive"},
		{name: "read only", operation: "scan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.operation, started)

			if op.Name != tt.operation {
				t.Errorf("Name = %q, want %q", op.Name, tt.operation)
			}
			if op.OpID != "20240309T070706Z" {
				t.Errorf("OpID = %q, want %q", op.OpID, "20240309T070706Z")
			}
			if op.Status != model.RunStatusRunning {
				t.Errorf("Status = %q, want %q", op.Status, model.RunStatusRunning)
			}
			if op.RunID != "" {
				t.Errorf("RunID = %q, want empty", op.RunID)
			}
		})
	}
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		name  string
		runID string
		want  bool
	}{
		{name: "not persisted without run id", runID: "", want: false},
		{name: "persisted with run id", runID: "run-1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{RunID: tt.runID}
			if got := op.Persisted(); got != tt.want {
				t.Errorf("Persisted() = %v, want %v", got, tt.want)
			}
		})
	}
}
