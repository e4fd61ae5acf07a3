package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// Entry is one captured log line.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// LogRecorder is a slog.Handler that keeps every record in memory so
// tests can assert on what a component logged. All levels are captured
// regardless of the logger's configured level, and the recorder is
// safe for concurrent use within a test.
type LogRecorder struct {
	mu      sync.Mutex
	entries []Entry
	bound   []slog.Attr
	shared  *LogRecorder
	t       testing.TB
}

// NewTestLogger returns a logger wired to a fresh recorder. Captured
// lines are echoed through t.Logf so failures show the full log.
func NewTestLogger(t testing.TB) (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{t: t}
	return slog.New(rec), rec
}

// Enabled implements slog.Handler; the recorder captures every level.
func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *LogRecorder) Handle(_ context.Context, record slog.Record) error {
	attrs := make(map[string]any, record.NumAttrs()+len(r.bound))
	for _, a := range r.bound {
		attrs[a.Key] = a.Value.Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	root := r.root()
	root.mu.Lock()
	root.entries = append(root.entries, Entry{
		Level:   record.Level,
		Message: record.Message,
		Attrs:   attrs,
	})
	root.mu.Unlock()

	if r.t != nil {
		r.t.Logf("[%s] %s %v", record.Level, record.Message, attrs)
	}
	return nil
}

// WithAttrs implements slog.Handler. The child handler carries the
// bound attributes but records into the same buffer, so assertions on
// the recorder returned by NewTestLogger still see every line.
func (r *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make([]slog.Attr, 0, len(r.bound)+len(attrs))
	bound = append(bound, r.bound...)
	bound = append(bound, attrs...)
	return &LogRecorder{bound: bound, shared: r.root(), t: r.t}
}

// WithGroup implements slog.Handler. Groups are flattened; test
// assertions match on the leaf key.
func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

func (r *LogRecorder) root() *LogRecorder {
	if r.shared != nil {
		return r.shared
	}
	return r
}

// Entries returns a copy of everything captured so far.
func (r *LogRecorder) Entries() []Entry {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	out := make([]Entry, len(root.entries))
	copy(out, root.entries)
	return out
}

// AtLevel returns the captured entries at exactly the given level.
func (r *LogRecorder) AtLevel(level slog.Level) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// HasAttr reports whether any entry carries the attribute.
func (r *LogRecorder) HasAttr(key string, value any) bool {
	for _, e := range r.Entries() {
		if got, ok := e.Attrs[key]; ok && got == value {
			return true
		}
	}
	return false
}

// Len returns the number of captured entries.
func (r *LogRecorder) Len() int { return len(r.Entries()) }

// Reset discards everything captured so far.
func (r *LogRecorder) Reset() {
	root := r.root()
	root.mu.Lock()
	defer root.mu.Unlock()
	root.entries = root.entries[:0]
}

// AssertLogContains fails the test when no entry at the level has a
// message containing the substring.
func AssertLogContains(t testing.TB, rec *LogRecorder, level slog.Level, substr string) {
	t.Helper()
	entries := rec.AtLevel(level)
	for _, e := range entries {
		if strings.Contains(e.Message, substr) {
			return
		}
	}
	t.Errorf("no %s log containing %q", level, substr)
	for _, e := range entries {
		t.Logf("  captured: %s", e.Message)
	}
}

// AssertLogAttr fails the test when no entry carries the attribute.
func AssertLogAttr(t testing.TB, rec *LogRecorder, key string, want any) {
	t.Helper()
	if rec.HasAttr(key, want) {
		return
	}
	t.Errorf("no log entry with %s=%v", key, want)
	for _, e := range rec.Entries() {
		t.Logf("  captured: %s %v", e.Message, e.Attrs)
	}
}

// AssertNoErrors fails the test when any error-level entry was logged.
func AssertNoErrors(t testing.TB, rec *LogRecorder) {
	t.Helper()
	for _, e := range rec.AtLevel(slog.LevelError) {
		t.Errorf("unexpected error log: %s %v", e.Message, e.Attrs)
	}
}
