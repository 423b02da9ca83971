package miglog

import (
	"strings"
	"testing"
	"time"
)

func fixedLogger() *Logger {
	l := New("/about/history", "/exports/about/history.xml")
	l.now = func() time.Time {
		return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	}
	return l
}

func TestSortedErrorsFirst(t *testing.T) {
	l := fixedLogger()
	l.Info("migrated section", "h2[1]")
	l.Warning("Image removed from content: a.jpg", "")
	l.Error("NO ASSET ID FOUND: b.jpg", "")
	l.Info("migrated section", "h2[2]")

	sorted := l.Sorted()
	if sorted[0].Level != LevelError {
		t.Fatalf("first sorted entry = %v, want ERROR", sorted[0].Level)
	}
	if sorted[1].Level != LevelWarning {
		t.Fatalf("second sorted entry = %v, want WARNING", sorted[1].Level)
	}
	// Stable: the two INFO entries keep recorded order.
	if sorted[2].Context != "h2[1]" || sorted[3].Context != "h2[2]" {
		t.Errorf("INFO order not preserved: %v, %v", sorted[2].Context, sorted[3].Context)
	}
	// Recorded order untouched.
	if l.Entries()[0].Level != LevelInfo {
		t.Error("Entries() order changed by Sorted()")
	}
}

func TestStatsAndHasErrors(t *testing.T) {
	l := fixedLogger()
	if l.HasErrors() {
		t.Error("empty logger reports errors")
	}
	l.Error("boom", "")
	l.Warning("w1", "")
	l.Warning("w2", "")
	l.Info("i", "")

	got := l.Stats()
	want := Stats{Errors: 1, Warnings: 2, Infos: 1, Total: 4}
	if got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
	if !l.HasErrors() {
		t.Error("HasErrors = false after Error")
	}
}

func TestSummaryFormat(t *testing.T) {
	l := fixedLogger()
	l.Info("migrated section", "h2[1]")
	l.Error("NO ASSET ID FOUND: photo.jpg", "")

	got := l.Summary()
	want := "<code>2026-03-14T09:26:53Z\n" +
		"[ERROR] NO ASSET ID FOUND: photo.jpg\n" +
		"[INFO] migrated section (h2[1])</code>"
	if got != want {
		t.Errorf("Summary =\n%q\nwant\n%q", got, want)
	}
}

func TestSummaryEmpty(t *testing.T) {
	if got := fixedLogger().Summary(); got != "<code>No migration log entries.</code>" {
		t.Errorf("empty Summary = %q", got)
	}
}

// Markup in messages must not survive into the summary field.
func TestSummarySanitizesMarkup(t *testing.T) {
	l := fixedLogger()
	l.Warning(`stripped tag <script>alert(1)</script> from A&B`, "")

	got := l.Summary()
	if strings.Contains(got, "<script>") {
		t.Fatalf("script tag survived: %q", got)
	}
	if !strings.Contains(got, "A&amp;B") {
		t.Errorf("ampersand not escaped: %q", got)
	}
}

func TestContextSnippet(t *testing.T) {
	got := ContextSnippet("<p>Some <strong>bold</strong> text</p>")
	if !strings.Contains(got, "**bold**") {
		t.Errorf("snippet = %q, want markdown emphasis", got)
	}
	if strings.Contains(got, "\n") {
		t.Errorf("snippet contains newline: %q", got)
	}

	long := strings.Repeat("<p>word </p>", 100)
	if s := ContextSnippet(long); len(s) > 210 {
		t.Errorf("snippet not truncated, len = %d", len(s))
	}
}
