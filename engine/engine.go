// Package engine drives whole-page migrations: parse the origin export,
// detect active regions, map their items, merge into the live destination
// document, and write the result back. One page at a time, no shared mutable
// state beyond the read-only asset table.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/wjoell/slc-migrate/cascade"
	"github.com/wjoell/slc-migrate/destination"
	"github.com/wjoell/slc-migrate/mapper"
	"github.com/wjoell/slc-migrate/miglog"
	"github.com/wjoell/slc-migrate/origin"
)

// DocumentClient reads and edits live destination documents.
type DocumentClient interface {
	ReadPage(ctx context.Context, id string) (*cascade.Page, error)
	EditPage(ctx context.Context, page *cascade.Page) error
}

// PageResolver maps origin source paths to destination document IDs.
type PageResolver interface {
	DocumentID(ctx context.Context, sourcePath string) (string, error)
}

// LogSink receives each page's finished migration log.
type LogSink interface {
	Append(l *miglog.Logger) error
}

// Engine migrates origin pages into the destination CMS.
type Engine struct {
	mapper    *mapper.Mapper
	client    DocumentClient
	pages     PageResolver
	sink      LogSink
	store     *miglog.Store
	log       *slog.Logger
	sourceDir string
	dryRun    bool
}

// Options wires the engine's collaborators.
type Options struct {
	Mapper *mapper.Mapper
	Client DocumentClient
	Pages  PageResolver
	Sink   LogSink

	// Store is an optional SQLite log sink for the report server.
	Store *miglog.Store

	// SourceDir is stripped from file paths to form page-db keys.
	SourceDir string

	Logger *slog.Logger
	DryRun bool
}

// New creates an engine. Mapper, Client and Pages are required.
func New(opts Options) (*Engine, error) {
	if opts.Mapper == nil || opts.Client == nil || opts.Pages == nil {
		return nil, fmt.Errorf("engine: mapper, client and page resolver required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		mapper:    opts.Mapper,
		client:    opts.Client,
		pages:     opts.Pages,
		sink:      opts.Sink,
		store:     opts.Store,
		log:       opts.Logger,
		sourceDir: strings.TrimRight(opts.SourceDir, "/"),
		dryRun:    opts.DryRun,
	}, nil
}

// Result summarizes one page migration.
type Result struct {
	SourcePath string
	PagePath   string
	DocumentID string
	Sections   int
	Items      int
	Stats      miglog.Stats
}

// MigratePage runs the full pipeline for one origin XML file. Structural
// failures return an error; content gaps land in the page's migration log
// and the page still succeeds.
func (e *Engine) MigratePage(ctx context.Context, sourcePath string) (*Result, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	doc, err := origin.Parse(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	mlog := miglog.New(doc.Meta.Path, sourcePath)
	sections, itemCount := e.mapDocument(doc, mlog)

	relPath := e.relSourcePath(sourcePath)
	docID, err := e.pages.DocumentID(ctx, relPath)
	if err != nil {
		return nil, fmt.Errorf("engine: %s: %w", sourcePath, err)
	}

	page, err := e.client.ReadPage(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("engine: read live document %s: %w", docID, err)
	}
	if page.StructuredData == nil {
		return nil, fmt.Errorf("engine: live document %s has no structured data", docID)
	}

	if len(sections) > 0 {
		mlog.Info(fmt.Sprintf("Created %d section(s) with %d content item(s)", len(sections), itemCount), "")
	}

	merged, err := destination.Merge(page.StructuredData.Nodes, sections, mlog.Summary())
	if err != nil {
		return nil, fmt.Errorf("engine: merge into %s: %w", docID, err)
	}
	page.StructuredData.Nodes = merged

	if e.dryRun {
		e.log.Info("dry run, skipping write", "source", sourcePath, "document", docID)
	} else if err := e.client.EditPage(ctx, page); err != nil {
		return nil, fmt.Errorf("engine: write %s: %w", docID, err)
	}

	e.flushLog(mlog)
	return &Result{
		SourcePath: sourcePath,
		PagePath:   doc.Meta.Path,
		DocumentID: docID,
		Sections:   len(sections),
		Items:      itemCount,
		Stats:      mlog.Stats(),
	}, nil
}

func (e *Engine) flushLog(mlog *miglog.Logger) {
	if e.sink != nil {
		if err := e.sink.Append(mlog); err != nil {
			e.log.Error("append migration log", "error", err)
		}
	}
	if e.store != nil {
		e.store.RecordPage(mlog)
	}
}

// relSourcePath strips the source directory prefix so page-db keys stay
// stable across machines.
func (e *Engine) relSourcePath(p string) string {
	return strings.TrimPrefix(strings.TrimPrefix(p, e.sourceDir), "/")
}

// mapDocument maps every active region and groups the items into sparse
// destination sections, intro first, then primary, then secondary. A region
// opens a new section; an item-level heading override does too.
func (e *Engine) mapDocument(doc *origin.Document, mlog *miglog.Logger) ([]*destination.Node, int) {
	active := doc.DetectActiveRegions()

	var groups []sectionGroup
	if active[origin.RegionIntro] {
		groups = appendItems(groups, e.mapper.MapIntro(doc, mlog), true)
	}
	for _, region := range []string{origin.RegionPrimary, origin.RegionSecondary} {
		if !active[region] {
			continue
		}
		newSection := region == origin.RegionSecondary
		for _, it := range doc.ActiveItems(region) {
			groups = appendItems(groups, e.mapper.MapItem(it, mlog), newSection)
			newSection = false
		}
	}

	return buildSections(groups)
}

func buildSections(groups []sectionGroup) ([]*destination.Node, int) {
	sections := make([]*destination.Node, 0, len(groups))
	total := 0
	for _, g := range groups {
		children := []*destination.Node{
			destination.Text("section-mode", "flow"),
			destination.Text("content-heading", g.heading),
		}
		for _, it := range g.items {
			children = append(children, it.Node)
		}
		sections = append(sections, destination.Group(destination.SectionIdentifier, children...))
		total += len(g.items)
	}
	return sections, total
}

type sectionGroup struct {
	heading string
	items   []mapper.Item
}

// appendItems distributes mapped items across section groups. An item whose
// SectionHeading is set always starts a new group carrying that heading.
func appendItems(groups []sectionGroup, items []mapper.Item, startNew bool) []sectionGroup {
	for _, it := range items {
		switch {
		case it.SectionHeading != "":
			groups = append(groups, sectionGroup{heading: it.SectionHeading, items: []mapper.Item{it}})
			startNew = false
		case startNew || len(groups) == 0:
			groups = append(groups, sectionGroup{items: []mapper.Item{it}})
			startNew = false
		default:
			last := &groups[len(groups)-1]
			last.items = append(last.items, it)
		}
	}
	return groups
}
