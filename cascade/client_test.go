package cascade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wjoell/slc-migrate/destination"
)

const pageJSON = `{
	"id": "doc1",
	"name": "history",
	"path": "/about/history",
	"siteName": "www",
	"metadata": {"title": "History"},
	"structuredData": {
		"definitionPath": "structured/page",
		"structuredDataNodes": [
			{"type": "text", "identifier": "page-type", "text": "standard"}
		]
	}
}`

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL, APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestReadPage(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/read/page/doc1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var req struct {
			Authentication struct {
				APIKey string `json:"apiKey"`
			} `json:"authentication"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Authentication.APIKey != "k" {
			t.Errorf("apiKey = %q", req.Authentication.APIKey)
		}
		w.Write([]byte(`{"success": true, "asset": {"page": ` + pageJSON + `}}`))
	})

	page, err := c.ReadPage(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if page.Path != "/about/history" {
		t.Errorf("path = %q", page.Path)
	}
	if len(page.StructuredData.Nodes) != 1 || page.StructuredData.Nodes[0].Identifier != "page-type" {
		t.Errorf("nodes = %+v", page.StructuredData.Nodes)
	}
	if _, ok := page.Raw["metadata"]; !ok {
		t.Error("unmodeled field dropped on read")
	}
}

func TestEditPagePreservesUnmodeledFields(t *testing.T) {
	var edited map[string]any
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/read/page/doc1":
			w.Write([]byte(`{"success": true, "asset": {"page": ` + pageJSON + `}}`))
		case "/api/v1/edit/page/doc1":
			var req struct {
				Asset struct {
					Page map[string]any `json:"page"`
				} `json:"asset"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatal(err)
			}
			edited = req.Asset.Page
			w.Write([]byte(`{"success": true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	page, err := c.ReadPage(ctx, "doc1")
	if err != nil {
		t.Fatal(err)
	}
	page.StructuredData.Nodes = []*destination.Node{destination.Text("page-type", "updated")}
	if err := c.EditPage(ctx, page); err != nil {
		t.Fatalf("EditPage: %v", err)
	}

	if _, ok := edited["metadata"]; !ok {
		t.Error("metadata not round-tripped through edit")
	}
	sd := edited["structuredData"].(map[string]any)
	nodes := sd["structuredDataNodes"].([]any)
	if nodes[0].(map[string]any)["text"] != "updated" {
		t.Errorf("edited nodes = %v", nodes)
	}
}

func TestAPIFailure(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "no such asset"}`))
	})
	if _, err := c.ReadPage(context.Background(), "missing"); err == nil {
		t.Fatal("ReadPage succeeded on API failure")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Error("New accepted empty base URL")
	}
	if _, err := New(Config{BaseURL: "https://cms"}); err == nil {
		t.Error("New accepted missing credentials")
	}
}
