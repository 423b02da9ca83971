package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wjoell/slc-migrate/cascade"
)

// BatchConfig controls the batch driver.
type BatchConfig struct {
	// Workers bounds the worker pool. 1 serializes the run.
	Workers int `yaml:"workers"`

	// Delay is an optional pause between pages on a serialized run, to
	// respect the CMS rate limit.
	Delay time.Duration `yaml:"delay"`

	// ResumeAfter skips every file up to and including this source path.
	ResumeAfter string `yaml:"resume_after"`

	// DryRun maps and merges but never writes back to the CMS.
	DryRun bool `yaml:"dry_run"`
}

// Config is the engine's file-backed configuration.
type Config struct {
	// SourceDir holds the exported origin XML tree.
	SourceDir string `yaml:"source_dir"`

	// AssetCSV is the legacy-filename to asset-ID lookup table.
	AssetCSV string `yaml:"asset_csv"`

	// GlobalLog is the batch-wide JSONL migration log.
	GlobalLog string `yaml:"global_log"`

	// LogDB is an optional SQLite sink for the report server.
	LogDB string `yaml:"log_db"`

	// PageDB maps source paths to destination document IDs.
	PageDB string `yaml:"page_db"`

	// Domain is the legacy site domain for internal-link rewriting.
	Domain string `yaml:"domain"`

	CMS   cascade.Config `yaml:"cms"`
	Batch BatchConfig    `yaml:"batch"`
}

func (c *Config) defaults() {
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = 1
	}
	if c.GlobalLog == "" {
		c.GlobalLog = "migration-log.jsonl"
	}
	if c.PageDB == "" {
		c.PageDB = "migration.db"
	}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("engine: config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: config %s: %w", path, err)
	}
	cfg.defaults()
	return cfg, nil
}
