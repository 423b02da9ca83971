package report_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wjoell/slc-migrate/dbopen"
	"github.com/wjoell/slc-migrate/miglog"
	"github.com/wjoell/slc-migrate/report"
	_ "modernc.org/sqlite"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(miglog.Schema))
	store := miglog.NewStore(db)

	a := miglog.New("/about/history", "about/history.xml")
	a.Error("NO ASSET ID FOUND: ghost.jpg", "")
	a.Warning("Accordion panel dropped (display=Off): Archive", "")
	b := miglog.New("/news/opening", "news/opening.xml")
	b.Info("Created 2 section(s) with 3 content item(s)", "")
	store.RecordPage(a)
	store.RecordPage(b)
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(report.New(store, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestPagesEndpoint(t *testing.T) {
	srv := testServer(t)

	var pages []miglog.PageSummary
	if code := getJSON(t, srv.URL+"/api/pages", &pages); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if len(pages) != 2 {
		t.Fatalf("pages = %d, want 2", len(pages))
	}
	// Ordered by page path.
	if pages[0].PagePath != "/about/history" || pages[1].PagePath != "/news/opening" {
		t.Errorf("order = %q, %q", pages[0].PagePath, pages[1].PagePath)
	}
	if pages[0].Errors != 1 || pages[0].Warnings != 1 || pages[1].Infos != 1 {
		t.Errorf("counts = %+v", pages)
	}
}

func TestRecordsEndpoint(t *testing.T) {
	srv := testServer(t)

	var records []miglog.Record
	if code := getJSON(t, srv.URL+"/api/records?page=/about/history", &records); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].Level != "ERROR" || records[0].Message != "NO ASSET ID FOUND: ghost.jpg" {
		t.Errorf("first record = %+v", records[0])
	}

	var missing map[string]string
	if code := getJSON(t, srv.URL+"/api/records", &missing); code != 400 {
		t.Errorf("missing page param status = %d, want 400", code)
	}

	var empty []miglog.Record
	if code := getJSON(t, srv.URL+"/api/records?page=/nowhere", &empty); code != 200 || len(empty) != 0 {
		t.Errorf("unknown page: status %d, records %d", code, len(empty))
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t)

	var stats struct {
		Pages    int `json:"pages"`
		Errors   int `json:"errors"`
		Warnings int `json:"warnings"`
		Infos    int `json:"infos"`
	}
	if code := getJSON(t, srv.URL+"/api/stats", &stats); code != 200 {
		t.Fatalf("status = %d", code)
	}
	if stats.Pages != 2 || stats.Errors != 1 || stats.Warnings != 1 || stats.Infos != 1 {
		t.Errorf("stats = %+v", stats)
	}
}
