// Package miglog collects per-page migration log entries and renders them
// for the destination summary field, a global JSONL log, and a SQLite store.
package miglog

import (
	"sort"
	"time"
)

// Level orders log entries by severity. Lower sorts first.
type Level int

const (
	LevelError   Level = 1
	LevelWarning Level = 2
	LevelInfo    Level = 3
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	}
	return "INFO"
}

// ParseLevel maps a level name back to its value. Unknown names read as INFO.
func ParseLevel(s string) Level {
	switch s {
	case "ERROR":
		return LevelError
	case "WARNING":
		return LevelWarning
	}
	return LevelInfo
}

// Entry is a single migration log line.
type Entry struct {
	Level     Level
	Message   string
	Context   string
	Timestamp time.Time
}

// Stats counts entries by level.
type Stats struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Total    int `json:"total"`
}

// Logger accumulates entries while one page migrates. Not safe for
// concurrent use; each page gets its own logger.
type Logger struct {
	// PagePath is the destination CMS path of the page being migrated.
	PagePath string

	// FilePath is the origin XML file on disk.
	FilePath string

	entries []Entry
	now     func() time.Time
}

// New creates a logger for one page migration.
func New(pagePath, filePath string) *Logger {
	return &Logger{PagePath: pagePath, FilePath: filePath, now: time.Now}
}

func (l *Logger) add(level Level, message, context string) {
	l.entries = append(l.entries, Entry{
		Level:     level,
		Message:   message,
		Context:   context,
		Timestamp: l.now().UTC(),
	})
}

// Error records a failed operation, e.g. a missing asset ID.
func (l *Logger) Error(message, context string) { l.add(LevelError, message, context) }

// Warning records a planned skip, downgrade, or removal.
func (l *Logger) Warning(message, context string) { l.add(LevelWarning, message, context) }

// Info records a successful migration step.
func (l *Logger) Info(message, context string) { l.add(LevelInfo, message, context) }

// Entries returns the entries in the order they were recorded.
func (l *Logger) Entries() []Entry { return l.entries }

// Sorted returns the entries ordered by level, errors first. The sort is
// stable so entries of equal level keep their recorded order.
func (l *Logger) Sorted() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// HasErrors reports whether any ERROR entry was recorded.
func (l *Logger) HasErrors() bool {
	for _, e := range l.entries {
		if e.Level == LevelError {
			return true
		}
	}
	return false
}

// Stats returns entry counts by level.
func (l *Logger) Stats() Stats {
	s := Stats{Total: len(l.entries)}
	for _, e := range l.entries {
		switch e.Level {
		case LevelError:
			s.Errors++
		case LevelWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}
