// Package cascade is a thin REST client for the destination CMS. It reads
// and edits page assets whose structured data carries the destination node
// tree; all content transformation happens elsewhere.
package cascade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wjoell/slc-migrate/destination"
)

// Config configures the CMS client. Either APIKey or Username/Password must
// be set.
type Config struct {
	// BaseURL is the CMS origin, e.g. "https://cms.example.edu:8443".
	BaseURL string `json:"base_url" yaml:"base_url"`

	APIKey   string `json:"api_key" yaml:"api_key"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client talks to the CMS REST API.
type Client struct {
	cfg    Config
	client *http.Client
}

// New creates a CMS client.
func New(cfg Config) (*Client, error) {
	cfg.defaults()
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("cascade: base URL required")
	}
	if cfg.APIKey == "" && cfg.Username == "" {
		return nil, fmt.Errorf("cascade: api key or username/password required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type authentication struct {
	APIKey   string `json:"apiKey,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// StructuredData is the structured-content envelope of a page asset.
type StructuredData struct {
	DefinitionID   string              `json:"definitionId,omitempty"`
	DefinitionPath string              `json:"definitionPath,omitempty"`
	Nodes          []*destination.Node `json:"structuredDataNodes"`
}

// Page is the slice of a page asset this client reads and writes. Unmodeled
// fields round-trip through Raw so edits never drop them.
type Page struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Path           string          `json:"path,omitempty"`
	SiteName       string          `json:"siteName,omitempty"`
	StructuredData *StructuredData `json:"structuredData,omitempty"`

	Raw map[string]json.RawMessage `json:"-"`
}

type asset struct {
	Page json.RawMessage `json:"page"`
}

type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Asset   *asset `json:"asset,omitempty"`
}

type apiRequest struct {
	Authentication authentication   `json:"authentication"`
	Asset          *json.RawMessage `json:"asset,omitempty"`
}

func (c *Client) auth() authentication {
	if c.cfg.APIKey != "" {
		return authentication{APIKey: c.cfg.APIKey}
	}
	return authentication{Username: c.cfg.Username, Password: c.cfg.Password}
}

// ReadPage fetches a page asset by its document ID.
func (c *Client) ReadPage(ctx context.Context, id string) (*Page, error) {
	resp, err := c.call(ctx, "read", "page", id, nil)
	if err != nil {
		return nil, err
	}
	if resp.Asset == nil || len(resp.Asset.Page) == 0 {
		return nil, fmt.Errorf("cascade: read page %s: empty asset", id)
	}
	return decodePage(resp.Asset.Page)
}

// EditPage writes a page asset back. The page's Raw fields are merged under
// the modeled ones so the CMS sees the complete asset it served.
func (c *Client) EditPage(ctx context.Context, page *Page) error {
	body, err := encodePage(page)
	if err != nil {
		return fmt.Errorf("cascade: edit page %s: %w", page.ID, err)
	}
	wrapped, err := json.Marshal(map[string]json.RawMessage{"page": body})
	if err != nil {
		return err
	}
	raw := json.RawMessage(wrapped)
	if _, err := c.call(ctx, "edit", "page", page.ID, &raw); err != nil {
		return err
	}
	c.cfg.Logger.Debug("page edited", "id", page.ID, "path", page.Path)
	return nil
}

func (c *Client) call(ctx context.Context, op, assetType, id string, assetBody *json.RawMessage) (*apiResponse, error) {
	reqBody, err := json.Marshal(apiRequest{Authentication: c.auth(), Asset: assetBody})
	if err != nil {
		return nil, fmt.Errorf("cascade: marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/%s/%s/%s", c.cfg.BaseURL, op, assetType, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cascade: POST %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cascade: HTTP %d from %s %s/%s: %s", resp.StatusCode, op, assetType, id, string(respBody))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("cascade: decode response: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("cascade: %s %s/%s failed: %s", op, assetType, id, result.Message)
	}
	return &result, nil
}

// decodePage splits a raw page object into modeled fields plus a Raw map of
// everything else.
func decodePage(raw json.RawMessage) (*Page, error) {
	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("cascade: decode page: %w", err)
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, err
	}
	for _, known := range []string{"id", "name", "path", "siteName", "structuredData"} {
		delete(all, known)
	}
	p.Raw = all
	return &p, nil
}

func encodePage(p *Page) (json.RawMessage, error) {
	out := make(map[string]any, len(p.Raw)+5)
	for k, v := range p.Raw {
		out[k] = v
	}
	if p.ID != "" {
		out["id"] = p.ID
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Path != "" {
		out["path"] = p.Path
	}
	if p.SiteName != "" {
		out["siteName"] = p.SiteName
	}
	if p.StructuredData != nil {
		out["structuredData"] = p.StructuredData
	}
	return json.Marshal(out)
}
