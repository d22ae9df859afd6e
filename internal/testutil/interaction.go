package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Prompt is one question asked through a StubConfirmer.
type Prompt struct {
	Title   string
	Message string
}

// StubConfirmer answers every prompt with Answer and records the prompts.
type StubConfirmer struct {
	Answer  bool
	Prompts []Prompt
}

func NewStubConfirmer(answer bool) *StubConfirmer {
	return &StubConfirmer{Answer: answer}
}

func (c *StubConfirmer) Confirm(title, message string) bool {
	c.Prompts = append(c.Prompts, Prompt{Title: title, Message: message})
	return c.Answer
}

// LogEntry is one message captured by RecordingLogger.
type LogEntry struct {
	Level string
	Msg   string
	Args  []any
}

// String renders the entry as "LEVEL msg k=v ...".
func (e LogEntry) String() string {
	var sb strings.Builder
	sb.WriteString(e.Level)
	sb.WriteString(" ")
	sb.WriteString(e.Msg)
	for i := 0; i+1 < len(e.Args); i += 2 {
		fmt.Fprintf(&sb, " %v=%v", e.Args[i], e.Args[i+1])
	}
	return sb.String()
}

// RecordingLogger captures log messages for assertions. Safe for concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

// Entries returns a copy of the captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Count returns how many entries have the given level and message.
func (l *RecordingLogger) Count(level, msg string) int {
	n := 0
	for _, e := range l.Entries() {
		if e.Level == level && e.Msg == msg {
			n++
		}
	}
	return n
}

// RecordingProgress captures progress callbacks.
type RecordingProgress struct {
	Labels    []string
	DoneCalls int
}

func (p *RecordingProgress) Step(label string, index, total int) {
	p.Labels = append(p.Labels, fmt.Sprintf("%d/%d %s", index+1, total, label))
}

func (p *RecordingProgress) Done() { p.DoneCalls++ }
