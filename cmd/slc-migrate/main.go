// Command slc-migrate moves legacy XML page exports into the structured
// content model of the destination CMS.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wjoell/slc-migrate/assetids"
	"github.com/wjoell/slc-migrate/cascade"
	"github.com/wjoell/slc-migrate/dbopen"
	"github.com/wjoell/slc-migrate/engine"
	"github.com/wjoell/slc-migrate/mapper"
	"github.com/wjoell/slc-migrate/miglog"
	"github.com/wjoell/slc-migrate/pagedb"
	"github.com/wjoell/slc-migrate/report"
	"github.com/wjoell/slc-migrate/richtext"
	_ "modernc.org/sqlite"
)

const usage = `usage: slc-migrate <command> [flags]

commands:
  page    migrate one origin XML file
  news    migrate one news article XML file
  batch   migrate every XML file under the source directory
  report  serve the migration log database over HTTP
`

func main() {
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "page":
		err = runPage(ctx, os.Args[2:], false)
	case "news":
		err = runPage(ctx, os.Args[2:], true)
	case "batch":
		err = runBatch(ctx, os.Args[2:])
	case "report":
		err = runReport(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// runtime bundles the engine with everything that must be closed after it.
type runtime struct {
	cfg     engine.Config
	eng     *engine.Engine
	closers []func() error
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			slog.Error("close", "error", err)
		}
	}
}

func buildRuntime(cfgPath string, dryRun bool) (*runtime, error) {
	cfg, err := engine.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg}

	var table *assetids.Table
	if cfg.AssetCSV != "" {
		table, err = assetids.Load(assetids.Config{Path: cfg.AssetCSV})
		if err != nil {
			rt.close()
			return nil, err
		}
	} else {
		slog.Warn("no asset_csv configured, every image lookup will miss")
	}
	cleaner := richtext.NewCleaner(richtext.CleanerConfig{Domain: cfg.Domain})
	m := mapper.New(mapper.Config{Assets: table, Cleaner: cleaner})

	client, err := cascade.New(cfg.CMS)
	if err != nil {
		rt.close()
		return nil, err
	}

	pages, err := pagedb.Open(pagedb.Config{Path: cfg.PageDB})
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.closers = append(rt.closers, pages.Close)

	global := miglog.NewGlobalLog(cfg.GlobalLog)
	if _, err := os.Stat(cfg.GlobalLog); os.IsNotExist(err) {
		if err := global.Initialize(); err != nil {
			rt.close()
			return nil, err
		}
	}

	var store *miglog.Store
	if cfg.LogDB != "" {
		db, err := dbopen.Open(cfg.LogDB, dbopen.WithMkdirAll(), dbopen.WithSchema(miglog.Schema))
		if err != nil {
			rt.close()
			return nil, err
		}
		store = miglog.NewStore(db)
		rt.closers = append(rt.closers, store.Close, db.Close)
	}

	rt.eng, err = engine.New(engine.Options{
		Mapper:    m,
		Client:    client,
		Pages:     pages,
		Sink:      global,
		Store:     store,
		SourceDir: cfg.SourceDir,
		DryRun:    dryRun || cfg.Batch.DryRun,
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

func runPage(ctx context.Context, args []string, news bool) error {
	name := "page"
	if news {
		name = "news"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfgPath := fs.String("config", env("MIGRATE_CONFIG", "config.yaml"), "configuration file")
	dryRun := fs.Bool("dry-run", false, "map and merge without writing back")
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("source XML file required")
	}

	rt, err := buildRuntime(*cfgPath, *dryRun)
	if err != nil {
		return err
	}
	defer rt.close()

	for _, src := range fs.Args() {
		var res *engine.Result
		if news {
			res, err = rt.eng.MigrateNews(ctx, src)
		} else {
			res, err = rt.eng.MigratePage(ctx, src)
		}
		if err != nil {
			return err
		}
		slog.Info("page migrated",
			"source", res.SourcePath,
			"page", res.PagePath,
			"sections", res.Sections,
			"items", res.Items,
			"log_errors", res.Stats.Errors,
			"log_warnings", res.Stats.Warnings)
	}
	return nil
}

func runBatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	cfgPath := fs.String("config", env("MIGRATE_CONFIG", "config.yaml"), "configuration file")
	dryRun := fs.Bool("dry-run", false, "map and merge without writing back")
	workers := fs.Int("workers", 0, "override configured worker count")
	resumeAfter := fs.String("resume-after", "", "skip every file up to and including this one")
	fs.Parse(args)

	rt, err := buildRuntime(*cfgPath, *dryRun)
	if err != nil {
		return err
	}
	defer rt.close()

	batch := rt.cfg.Batch
	if *workers > 0 {
		batch.Workers = *workers
	}
	if *resumeAfter != "" {
		batch.ResumeAfter = *resumeAfter
	}

	stats, err := rt.eng.MigrateBatch(ctx, rt.cfg.SourceDir, batch)
	slog.Info("batch finished",
		"success", stats.Success,
		"errors", stats.Errors,
		"skipped", stats.Skipped,
		"last_successful", stats.LastSuccessful)
	return err
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	cfgPath := fs.String("config", env("MIGRATE_CONFIG", "config.yaml"), "configuration file")
	addr := fs.String("addr", env("REPORT_ADDR", ":8086"), "listen address")
	fs.Parse(args)

	cfg, err := engine.LoadConfig(*cfgPath)
	if err != nil {
		return err
	}
	if cfg.LogDB == "" {
		return errors.New("report: log_db must be set in the configuration")
	}
	db, err := dbopen.Open(cfg.LogDB, dbopen.WithSchema(miglog.Schema))
	if err != nil {
		return err
	}
	defer db.Close()
	store := miglog.NewStore(db)
	defer store.Close()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           report.New(store, slog.Default()).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		slog.Info("report server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
