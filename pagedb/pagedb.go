// Package pagedb tracks which origin pages already exist in the destination
// CMS. It maps origin source paths to destination document IDs so batch runs
// can find the live document to merge into.
package pagedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wjoell/slc-migrate/dbopen"
)

// Schema for the pages table.
const Schema = `
CREATE TABLE IF NOT EXISTS pages (
	source_path TEXT PRIMARY KEY,
	document_id TEXT NOT NULL,
	folder_path TEXT,
	page_name TEXT NOT NULL,
	xml_source TEXT,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_document_id ON pages(document_id);
CREATE INDEX IF NOT EXISTS idx_pages_folder ON pages(folder_path);
`

// ErrNotFound is returned when a source path has no tracked document.
var ErrNotFound = errors.New("pagedb: page not found")

// Page is one tracked page mapping.
type Page struct {
	SourcePath string `json:"source_path"`
	DocumentID string `json:"document_id"`
	FolderPath string `json:"folder_path,omitempty"`
	PageName   string `json:"page_name"`
	XMLSource  string `json:"xml_source,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

// Config configures the page database.
type Config struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// Logger for open diagnostics.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Path == "" {
		c.Path = "migration.db"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// DB is the page tracking database.
type DB struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens or creates the page database.
func Open(cfg Config) (*DB, error) {
	cfg.defaults()
	db, err := dbopen.Open(cfg.Path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, fmt.Errorf("pagedb: %w", err)
	}
	cfg.Logger.Debug("page database opened", "path", cfg.Path)
	return &DB{db: db, log: cfg.Logger}, nil
}

// NewWithDB wraps an existing connection; the schema must already be applied.
func NewWithDB(db *sql.DB) *DB {
	return &DB{db: db, log: slog.Default()}
}

// Close closes the underlying database.
func (d *DB) Close() error { return d.db.Close() }

// Put inserts or replaces a page mapping.
func (d *DB) Put(ctx context.Context, p Page) error {
	if p.UpdatedAt == "" {
		p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := dbopen.Exec(ctx, d.db, `
		INSERT OR REPLACE INTO pages (source_path, document_id, folder_path, page_name, xml_source, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.SourcePath, p.DocumentID, p.FolderPath, p.PageName, p.XMLSource, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pagedb: put %s: %w", p.SourcePath, err)
	}
	return nil
}

// DocumentID resolves a source path to its destination document ID.
func (d *DB) DocumentID(ctx context.Context, sourcePath string) (string, error) {
	var id string
	err := d.db.QueryRowContext(ctx,
		`SELECT document_id FROM pages WHERE source_path = ?`, sourcePath).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}
	if err != nil {
		return "", fmt.Errorf("pagedb: %w", err)
	}
	return id, nil
}

// Get returns the full page record for a source path.
func (d *DB) Get(ctx context.Context, sourcePath string) (Page, error) {
	var p Page
	err := d.db.QueryRowContext(ctx, `
		SELECT source_path, document_id, COALESCE(folder_path, ''), page_name, COALESCE(xml_source, ''), updated_at
		FROM pages WHERE source_path = ?`, sourcePath).
		Scan(&p.SourcePath, &p.DocumentID, &p.FolderPath, &p.PageName, &p.XMLSource, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Page{}, fmt.Errorf("%w: %s", ErrNotFound, sourcePath)
	}
	if err != nil {
		return Page{}, fmt.Errorf("pagedb: %w", err)
	}
	return p, nil
}

// InFolder lists tracked pages under a folder path, ordered by source path.
func (d *DB) InFolder(ctx context.Context, folderPath string) ([]Page, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT source_path, document_id, COALESCE(folder_path, ''), page_name, COALESCE(xml_source, ''), updated_at
		FROM pages WHERE folder_path = ? ORDER BY source_path`, folderPath)
	if err != nil {
		return nil, fmt.Errorf("pagedb: %w", err)
	}
	defer rows.Close()

	var out []Page
	for rows.Next() {
		var p Page
		if err := rows.Scan(&p.SourcePath, &p.DocumentID, &p.FolderPath, &p.PageName, &p.XMLSource, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of tracked pages.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pagedb: %w", err)
	}
	return n, nil
}
