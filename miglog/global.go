package miglog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one line of the global JSONL log.
type Record struct {
	FilePath  string `json:"file_path"`
	PagePath  string `json:"page_path"`
	Level     string `json:"level"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Context   string `json:"context,omitempty"`
}

type header struct {
	Type    string `json:"type"`
	Started string `json:"started"`
	Version string `json:"version"`
}

const headerType = "migration_log_header"

// GlobalLog aggregates every page's entries into one JSONL file across a
// batch run. Appends are serialized so concurrent batch workers never
// interleave lines.
type GlobalLog struct {
	path string

	mu sync.Mutex
}

// NewGlobalLog points at a JSONL log file. Nothing is written until
// Initialize or Append.
func NewGlobalLog(path string) *GlobalLog {
	return &GlobalLog{path: path}
}

// Initialize truncates the log and writes a header line.
func (g *GlobalLog) Initialize() error {
	if dir := filepath.Dir(g.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("miglog: %w", err)
		}
	}
	h := header{Type: headerType, Started: time.Now().UTC().Format(time.RFC3339), Version: "1.0"}
	b, err := json.Marshal(h)
	if err != nil {
		return err
	}
	return os.WriteFile(g.path, append(b, '\n'), 0o644)
}

// Append writes the logger's entries to the log, one JSON object per line.
// Safe for concurrent use.
func (g *GlobalLog) Append(l *Logger) error {
	if len(l.Entries()) == 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	f, err := os.OpenFile(g.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("miglog: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, e := range l.Entries() {
		rec := Record{
			FilePath:  l.FilePath,
			PagePath:  l.PagePath,
			Level:     e.Level.String(),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Message:   e.Message,
			Context:   e.Context,
		}
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ReadRecords returns every entry record in the log, skipping the header and
// any unparseable lines.
func (g *GlobalLog) ReadRecords() ([]Record, error) {
	f, err := os.Open(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("miglog: %w", err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var h header
		if err := json.Unmarshal(line, &h); err == nil && h.Type == headerType {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	return out, sc.Err()
}

// Stats tallies the log by level and distinct file.
func (g *GlobalLog) Stats() (Stats, int, error) {
	recs, err := g.ReadRecords()
	if err != nil {
		return Stats{}, 0, err
	}
	var s Stats
	files := make(map[string]struct{})
	for _, r := range recs {
		s.Total++
		files[r.FilePath] = struct{}{}
		switch ParseLevel(r.Level) {
		case LevelError:
			s.Errors++
		case LevelWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s, len(files), nil
}
