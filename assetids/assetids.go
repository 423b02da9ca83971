// Package assetids resolves legacy image filenames to destination asset
// identifiers. The table is loaded once from a flat CSV and is read-only for
// the rest of the run.
package assetids

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
)

// Table maps legacy filenames and URLs to destination asset IDs. Safe for
// concurrent readers once built.
type Table struct {
	ids map[string]string
	log *slog.Logger
}

// Config configures table loading.
type Config struct {
	// Path is the CSV file holding name and asset_id columns.
	Path string `json:"path" yaml:"path"`

	// Logger for load and miss diagnostics.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Load reads the lookup table from the configured CSV file.
func Load(cfg Config) (*Table, error) {
	cfg.defaults()
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("assetids: %w", err)
	}
	defer f.Close()

	t, err := Read(f, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("assetids: %s: %w", cfg.Path, err)
	}
	cfg.Logger.Info("asset id table loaded", "path", cfg.Path, "entries", t.Len())
	return t, nil
}

// Read builds a table from CSV content. The header row names the columns;
// "name" and "asset_id" are required, anything else is ignored. Rows with an
// empty name or id are skipped.
func Read(r io.Reader, log *slog.Logger) (*Table, error) {
	if log == nil {
		log = slog.Default()
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	nameCol, idCol := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "name":
			nameCol = i
		case "asset_id":
			idCol = i
		}
	}
	if nameCol < 0 || idCol < 0 {
		return nil, fmt.Errorf("missing name or asset_id column in header %v", header)
	}

	t := &Table{ids: make(map[string]string), log: log}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if nameCol >= len(rec) || idCol >= len(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameCol])
		id := strings.TrimSpace(rec[idCol])
		if name == "" || id == "" {
			continue
		}
		t.ids[name] = id
	}
	return t, nil
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.ids) }

// Lookup resolves a legacy filename or URL to an asset ID. The exact key is
// tried first, then the key with any leading path stripped. A miss returns
// ok=false; it is a content gap for the caller to log, not an error.
func (t *Table) Lookup(key string) (id string, ok bool) {
	if t == nil || key == "" {
		return "", false
	}
	if id, ok := t.ids[key]; ok {
		return id, true
	}
	if base := path.Base(key); base != key {
		if id, ok := t.ids[base]; ok {
			return id, true
		}
	}
	t.log.Debug("asset id miss", "key", key)
	return "", false
}
