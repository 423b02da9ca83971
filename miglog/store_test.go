package miglog_test

import (
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/wjoell/slc-migrate/dbopen"
	"github.com/wjoell/slc-migrate/miglog"
)

func TestStoreRoundTrip(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(miglog.Schema))
	store := miglog.NewStore(db)

	l := miglog.New("/about/history", "/exports/history.xml")
	l.Error("NO ASSET ID FOUND: photo.jpg", "")
	l.Warning("Image removed from content: a.jpg", "")
	l.Info("migrated section", "h2[1]")
	store.RecordPage(l)

	l2 := miglog.New("/academics", "/exports/academics.xml")
	l2.Info("migrated section", "")
	store.RecordPage(l2)

	// Close drains the async buffer.
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	sums, err := store.PageSummaries()
	if err != nil {
		t.Fatalf("PageSummaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	// Ordered by page path.
	if sums[0].PagePath != "/about/history" || sums[1].PagePath != "/academics" {
		t.Fatalf("summary order: %+v", sums)
	}
	first := sums[0]
	if first.Errors != 1 || first.Warnings != 1 || first.Infos != 1 {
		t.Errorf("roll-up = %+v", first)
	}

	recs, err := store.PageRecords("/about/history")
	if err != nil {
		t.Fatalf("PageRecords: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	if recs[0].Level != "ERROR" || recs[0].Message != "NO ASSET ID FOUND: photo.jpg" {
		t.Errorf("first record = %+v", recs[0])
	}
	if recs[2].Context != "h2[1]" {
		t.Errorf("context lost: %+v", recs[2])
	}
}

func TestGlobalLogRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "migration.jsonl")
	g := miglog.NewGlobalLog(path)
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	l := miglog.New("/about", "/exports/about.xml")
	l.Error("boom", "ctx")
	l.Info("ok", "")
	if err := g.Append(l); err != nil {
		t.Fatalf("Append: %v", err)
	}

	recs, err := g.ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2 (header skipped)", len(recs))
	}
	if recs[0].PagePath != "/about" || recs[0].Level != "ERROR" || recs[0].Context != "ctx" {
		t.Errorf("record = %+v", recs[0])
	}

	stats, files, err := g.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Errors != 1 || stats.Infos != 1 || stats.Total != 2 || files != 1 {
		t.Errorf("stats = %+v files = %d", stats, files)
	}
}

func TestGlobalLogMissingFile(t *testing.T) {
	g := miglog.NewGlobalLog(filepath.Join(t.TempDir(), "absent.jsonl"))
	recs, err := g.ReadRecords()
	if err != nil || recs != nil {
		t.Errorf("ReadRecords = %v, %v; want nil, nil", recs, err)
	}
}
