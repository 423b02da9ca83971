package miglog

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"
)

// Schema for the migration_log table. Call Store.Init() or apply manually.
const Schema = `
CREATE TABLE IF NOT EXISTS migration_log (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	file_path TEXT NOT NULL,
	page_path TEXT NOT NULL,
	level INTEGER NOT NULL,
	message TEXT NOT NULL,
	context TEXT,
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_migration_log_page ON migration_log(page_path);
CREATE INDEX IF NOT EXISTS idx_migration_log_errors ON migration_log(level) WHERE level = 1;
`

// Store persists migration log entries to a SQLite table asynchronously.
type Store struct {
	db   *sql.DB
	ch   chan Record
	done chan struct{}
	once sync.Once
}

// NewStore creates a log store backed by the given database connection.
func NewStore(db *sql.DB) *Store {
	s := &Store{
		db:   db,
		ch:   make(chan Record, 1024),
		done: make(chan struct{}),
	}
	go s.flushLoop()
	return s
}

// Init creates the migration_log table if it doesn't exist.
func (s *Store) Init() error {
	_, err := s.db.Exec(Schema)
	return err
}

// RecordPage queues every entry of a finished page's logger. Non-blocking;
// drops when the buffer is full.
func (s *Store) RecordPage(l *Logger) {
	for _, e := range l.Entries() {
		rec := Record{
			FilePath:  l.FilePath,
			PagePath:  l.PagePath,
			Level:     e.Level.String(),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Message:   e.Message,
			Context:   e.Context,
		}
		select {
		case s.ch <- rec:
		default:
		}
	}
}

// Close drains the buffer and stops the flush goroutine.
func (s *Store) Close() error {
	s.once.Do(func() {
		close(s.ch)
		<-s.done
	})
	return nil
}

func (s *Store) flushLoop() {
	defer close(s.done)

	batch := make([]Record, 0, 64)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-s.ch:
			if !ok {
				s.flushBatch(batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= 64 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				s.flushBatch(batch)
				batch = batch[:0]
			}
		}
	}
}

func (s *Store) flushBatch(batch []Record) {
	if len(batch) == 0 {
		return
	}

	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("miglog store: begin tx", "error", err)
		return
	}

	stmt, err := tx.Prepare(`INSERT INTO migration_log (file_path, page_path, level, message, context, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		slog.Error("miglog store: prepare", "error", err)
		return
	}
	defer stmt.Close()

	for _, rec := range batch {
		ts, _ := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if _, err := stmt.Exec(rec.FilePath, rec.PagePath, int(ParseLevel(rec.Level)), rec.Message, rec.Context, ts.UnixMicro()); err != nil {
			slog.Error("miglog store: insert", "error", err)
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("miglog store: commit", "error", err)
	}
}

// PageSummary rolls up one page's entries.
type PageSummary struct {
	PagePath string `json:"page_path"`
	FilePath string `json:"file_path"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Infos    int    `json:"infos"`
}

// PageSummaries returns a per-page roll-up ordered by page path.
func (s *Store) PageSummaries() ([]PageSummary, error) {
	rows, err := s.db.Query(`
		SELECT page_path, file_path,
			SUM(level = 1), SUM(level = 2), SUM(level = 3)
		FROM migration_log
		GROUP BY page_path, file_path
		ORDER BY page_path`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PageSummary
	for rows.Next() {
		var ps PageSummary
		if err := rows.Scan(&ps.PagePath, &ps.FilePath, &ps.Errors, &ps.Warnings, &ps.Infos); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// PageRecords returns one page's entries in insertion order.
func (s *Store) PageRecords(pagePath string) ([]Record, error) {
	rows, err := s.db.Query(`
		SELECT file_path, page_path, level, message, COALESCE(context, ''), timestamp
		FROM migration_log
		WHERE page_path = ?
		ORDER BY id`, pagePath)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var level int
		var ts int64
		if err := rows.Scan(&rec.FilePath, &rec.PagePath, &level, &rec.Message, &rec.Context, &ts); err != nil {
			return nil, err
		}
		rec.Level = Level(level).String()
		rec.Timestamp = time.UnixMicro(ts).UTC().Format(time.RFC3339Nano)
		out = append(out, rec)
	}
	return out, rows.Err()
}
