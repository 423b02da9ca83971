package richtext

import (
	"strings"
	"testing"
)

// recorder captures reported notes for assertions.
type recorder struct {
	errors   []string
	warnings []string
	infos    []string
}

func (r *recorder) Error(message, context string)   { r.errors = append(r.errors, message) }
func (r *recorder) Warning(message, context string) { r.warnings = append(r.warnings, message) }
func (r *recorder) Info(message, context string)    { r.infos = append(r.infos, message) }

func (r *recorder) hasWarning(substr string) bool {
	for _, w := range r.warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func cleanHTML(t *testing.T, in string) string {
	t.Helper()
	f, err := Parse(in)
	if err != nil {
		t.Fatalf("Parse(%q): %v", in, err)
	}
	NewCleaner(CleanerConfig{}).Clean(f, &recorder{})
	return f.HTML()
}

func TestCleanRewritesInternalLinks(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"domain stripped", "https://www.sarahlawrence.edu/about/history.html", "/about/history"},
		{"migration suffix", "https://www.sarahlawrence.edu/about/index-migration.html", "/about/index"},
		{"hash fragment dropped", "https://www.sarahlawrence.edu/about/index.html#accordion-2", "/about/index"},
		{"bare domain root", "https://www.sarahlawrence.edu", "/index"},
		{"trailing slash", "https://www.sarahlawrence.edu/global-education/", "/global-education/index"},
		{"http scheme", "http://www.sarahlawrence.edu/news.html", "/news"},
		{"schemeless domain", "www.sarahlawrence.edu/about/", "/about/index"},
		{"root-relative html", "/ecc/index.html", "/ecc/index"},
		{"root-relative anchor kept", "/about/index.html#top", "/about/index#top"},
		{"external untouched", "https://example.com/page.html", "https://example.com/page.html"},
		{"mailto untouched", "mailto:info@sarahlawrence.edu", "mailto:info@sarahlawrence.edu"},
		{"anchor-only untouched", "#section-2", "#section-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanHTML(t, `<p><a href="`+tt.href+`">link</a></p>`)
			want := `<p><a href="` + tt.want + `">link</a></p>`
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestCleanLeavesPDFLinksQualified(t *testing.T) {
	f, err := Parse(`<p><a href="https://www.sarahlawrence.edu/media/catalogue.pdf">catalogue</a></p>`)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	NewCleaner(CleanerConfig{}).Clean(f, rec)

	if !strings.Contains(f.HTML(), "https://www.sarahlawrence.edu/media/catalogue.pdf") {
		t.Errorf("PDF link was rewritten: %s", f.HTML())
	}
	if !rec.hasWarning("PDF link left fully qualified") {
		t.Errorf("PDF link not reported, warnings: %v", rec.warnings)
	}
}

func TestCleanUnwrapsAndStrips(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"span unwrapped", `<p>one <span>two</span> three</p>`, `<p>one two three</p>`},
		{"nested wrappers", `<p><span><u>deep</u></span></p>`, `<p>deep</p>`},
		{"div unwrapped", `<div><p>kept</p></div>`, `<p>kept</p>`},
		{"class stripped", `<p class="intro">text</p>`, `<p>text</p>`},
		{"aria stripped", `<p aria-hidden="true" id="x">text</p>`, `<p id="x">text</p>`},
		{"nbsp normalized", "<p>a\u00a0b</p>", `<p>a b</p>`},
		{"empty element pruned", `<p>text</p><p></p>`, `<p>text</p>`},
		{"emptied wrapper pruned", `<p><span></span></p><p>kept</p>`, `<p>kept</p>`},
		{"br survives", `<p>one<br/>two</p>`, `<p>one<br/>two</p>`},
		{"hr pruned", `<p>one</p><hr/>`, `<p>one</p>`},
		{"em kept", `<p><em>kept</em></p>`, `<p><em>kept</em></p>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanHTML(t, tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanRemovesAndReportsImages(t *testing.T) {
	f, err := Parse(`<p>before <img src="/images/photo.jpg" alt="x"/> after</p>`)
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	NewCleaner(CleanerConfig{}).Clean(f, rec)

	if strings.Contains(f.HTML(), "img") {
		t.Errorf("image not removed: %s", f.HTML())
	}
	if !rec.hasWarning("photo.jpg") {
		t.Errorf("image removal not reported, warnings: %v", rec.warnings)
	}
}

// Cleaning must be idempotent: a second pass over already-clean content is a
// no-op.
func TestCleanIdempotent(t *testing.T) {
	inputs := []string{
		`<p>plain text</p>`,
		"<p><span class=\"x\">wrapped <u>deep</u></span>\u00a0tail</p>",
		`<p><a href="https://www.sarahlawrence.edu/about/index.html#frag">link</a></p>`,
		`<div><div><p>nested</p></div></div>`,
		`<p><img src="/a/b.png"/></p><p></p>`,
		`<h2>heading</h2><p>body <em>em</em></p><hr/>`,
	}
	c := NewCleaner(CleanerConfig{})
	for _, in := range inputs {
		f, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		c.Clean(f, &recorder{})
		once := f.HTML()

		f2, err := Parse(once)
		if err != nil {
			t.Fatalf("reparse(%q): %v", once, err)
		}
		c.Clean(f2, &recorder{})
		if twice := f2.HTML(); twice != once {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	}
}
