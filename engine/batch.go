package engine

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wjoell/slc-migrate/pagedb"
)

// BatchStats accumulates the outcome of a batch run.
type BatchStats struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
	Skipped int `json:"skipped"`

	// LastSuccessful is the final source path that migrated cleanly, for
	// feeding back into resume_after.
	LastSuccessful string `json:"last_successful,omitempty"`
}

// ListSources walks dir and returns every .xml file in lexical order.
// Directories whose name starts with "_" are skipped; the export tool uses
// that prefix for scratch folders.
func ListSources(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), "_") && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// MigrateBatch migrates every source file under dir. A page failure is
// logged and counted but never stops the run; a canceled context does.
func (e *Engine) MigrateBatch(ctx context.Context, dir string, cfg BatchConfig) (BatchStats, error) {
	paths, err := ListSources(dir)
	if err != nil {
		return BatchStats{}, err
	}

	var stats BatchStats
	if cfg.ResumeAfter != "" {
		cut := -1
		for i, p := range paths {
			if p == cfg.ResumeAfter || e.relSourcePath(p) == cfg.ResumeAfter {
				cut = i
				break
			}
		}
		if cut >= 0 {
			stats.Skipped = cut + 1
			paths = paths[cut+1:]
		}
	}

	if cfg.Workers <= 1 {
		for i, p := range paths {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			if i > 0 && cfg.Delay > 0 {
				select {
				case <-time.After(cfg.Delay):
				case <-ctx.Done():
					return stats, ctx.Err()
				}
			}
			e.migrateOne(ctx, p, &stats, nil)
		}
		return stats, ctx.Err()
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		work = make(chan string)
	)
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				e.migrateOne(ctx, p, &stats, &mu)
			}
		}()
	}
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		work <- p
	}
	close(work)
	wg.Wait()
	return stats, ctx.Err()
}

func (e *Engine) migrateOne(ctx context.Context, path string, stats *BatchStats, mu *sync.Mutex) {
	res, err := e.MigratePage(ctx, path)
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	if errors.Is(err, pagedb.ErrNotFound) {
		stats.Skipped++
		e.log.Info("no page mapping, skipped", "source", path)
		return
	}
	if err != nil {
		stats.Errors++
		e.log.Error("page migration failed", "source", path, "error", err)
		return
	}
	stats.Success++
	stats.LastSuccessful = path
	e.log.Info("page migrated",
		"source", path,
		"page", res.PagePath,
		"sections", res.Sections,
		"items", res.Items,
		"log_errors", res.Stats.Errors,
		"log_warnings", res.Stats.Warnings)
}
