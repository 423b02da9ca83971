package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wjoell/slc-migrate/destination"
	"github.com/wjoell/slc-migrate/miglog"
	"github.com/wjoell/slc-migrate/origin"
)

// Wired metadata fields logged into the news migration summary.
var newsWiredFields = []string{"title", "description", "keywords", "summary", "display-name", "start-date"}

// MigrateNews runs the news-article pipeline for one origin XML file. News
// bodies skip the region machinery: the whole <content> element maps through
// the block-image splitter and every item lands in a single flow section.
// Page type and hero heading are set from the article metadata.
func (e *Engine) MigrateNews(ctx context.Context, sourcePath string) (*Result, error) {
	f, err := os.Open(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	doc, err := origin.Parse(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	pagePath := doc.Meta.Path
	if pagePath == "" {
		pagePath = doc.Meta.Title
	}
	mlog := miglog.New(pagePath, sourcePath)

	pageType := newsPageType(sourcePath)
	mlog.Info("page-type = "+pageType, "")
	logNewsMetadata(doc, mlog)

	var items int
	var sections []*destination.Node
	if content := doc.Page.Find("content"); content != nil {
		mapped := e.mapper.MapNews(content.InnerXML(), mlog)
		sections, items = buildSections(appendItems(nil, mapped, true))
	} else {
		mlog.Warning("No content element found in origin", "")
	}

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

	nodes := page.StructuredData.Nodes
	if pt := destination.Find(nodes, "page-type"); pt != nil {
		pt.Text = pageType
	}
	if hero := destination.Find(nodes, "group-hero"); hero != nil {
		if heading := newsHeading(doc); heading != "" {
			hero.SetChildText("heading", heading)
			mlog.Info("heading = "+truncate(heading, 50), "")
		}
	}

	if items > 0 {
		mlog.Info(fmt.Sprintf("Created %d content items", items), "")
	}

	merged, err := destination.Merge(nodes, sections, mlog.Summary())
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
		PagePath:   pagePath,
		DocumentID: docID,
		Sections:   len(sections),
		Items:      items,
		Stats:      mlog.Stats(),
	}, nil
}

// newsPageType derives the destination page type from the source filename.
func newsPageType(sourcePath string) string {
	if strings.Contains(strings.ToLower(filepath.Base(sourcePath)), "feature") {
		return "feature-story"
	}
	return "news"
}

// newsHeading prefers the article headline over the page title.
func newsHeading(doc *origin.Document) string {
	if h := doc.Page.ChildText("headline"); h != "" {
		return h
	}
	return doc.Meta.Title
}

// logNewsMetadata records wired and dynamic metadata into the page log so the
// summary documents what carried over. Yes/No dynamic values are normalized
// to booleans.
func logNewsMetadata(doc *origin.Document, mlog *miglog.Logger) {
	for _, field := range newsWiredFields {
		if v := doc.Page.ChildText(field); v != "" {
			mlog.Info(fmt.Sprintf("WIRED %s = %s", field, truncate(v, 50)), "")
		}
	}
	for _, dm := range doc.Page.FindAll("dynamic-metadata") {
		name := dm.ChildText("name")
		if name == "" {
			continue
		}
		var values []string
		for _, v := range dm.FindAll("value") {
			if t := v.Text(); t != "" {
				values = append(values, t)
			}
		}
		switch {
		case len(values) == 0:
		case len(values) == 1 && (values[0] == "Yes" || values[0] == "No"):
			mlog.Info(fmt.Sprintf("META %s = %s (was: %s)", name, boolWord(values[0]), values[0]), "")
		case len(values) == 1:
			mlog.Info(fmt.Sprintf("META %s = %s", name, values[0]), "")
		default:
			mlog.Info(fmt.Sprintf("META %s = [%s]", name, strings.Join(values, ", ")), "")
		}
	}
}

func boolWord(v string) string {
	if v == "Yes" {
		return "true"
	}
	return "false"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
