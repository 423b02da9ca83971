package miglog

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
)

func TestGlobalLogRoundTrip(t *testing.T) {
	g := NewGlobalLog(filepath.Join(t.TempDir(), "log.jsonl"))
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	l := New("/about/history", "/exports/about/history.xml")
	l.Error("NO ASSET ID FOUND: a.jpg", "")
	l.Info("migrated section", "h2[1]")
	if err := g.Append(l); err != nil {
		t.Fatalf("Append: %v", err)
	}

	recs, err := g.ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].PagePath != "/about/history" || recs[0].Level != "ERROR" {
		t.Errorf("first record = %+v", recs[0])
	}

	stats, files, err := g.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Errors != 1 || stats.Infos != 1 || stats.Total != 2 || files != 1 {
		t.Errorf("stats = %+v, files = %d", stats, files)
	}
}

// Concurrent batch workers append whole pages at once; every line must stay
// a parseable record even when a page's entries exceed one write.
func TestGlobalLogConcurrentAppend(t *testing.T) {
	g := NewGlobalLog(filepath.Join(t.TempDir(), "log.jsonl"))
	if err := g.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	const workers = 8
	const perPage = 200

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := New(fmt.Sprintf("/page/%d", w), fmt.Sprintf("/exports/page-%d.xml", w))
			for i := range perPage {
				l.Info(fmt.Sprintf("migrated section %d on worker %d with a long enough message to overrun buffered writes", i, w), "")
			}
			if err := g.Append(l); err != nil {
				t.Errorf("Append: %v", err)
			}
		}()
	}
	wg.Wait()

	recs, err := g.ReadRecords()
	if err != nil {
		t.Fatalf("ReadRecords: %v", err)
	}
	if len(recs) != workers*perPage {
		t.Fatalf("records = %d, want %d", len(recs), workers*perPage)
	}
	byPage := make(map[string]int)
	for _, r := range recs {
		byPage[r.PagePath]++
	}
	for page, n := range byPage {
		if n != perPage {
			t.Errorf("page %s has %d records, want %d", page, n, perPage)
		}
	}
}
