package miglog

import (
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// summaryPolicy strips markup from log lines before they are embedded in the
// destination summary field. Text content comes back entity-escaped, so the
// rendered field stays valid XHTML.
var summaryPolicy = bluemonday.StrictPolicy()

// Summary renders the entries for the destination migration-summary field:
// a single code element holding a UTC timestamp header followed by one line
// per entry, errors first.
func (l *Logger) Summary() string {
	if len(l.entries) == 0 {
		return "<code>No migration log entries.</code>"
	}

	lines := make([]string, 0, len(l.entries))
	for _, e := range l.Sorted() {
		line := "[" + e.Level.String() + "] " + e.Message
		if e.Context != "" {
			line += " (" + e.Context + ")"
		}
		lines = append(lines, summaryPolicy.Sanitize(line))
	}

	var sb strings.Builder
	sb.WriteString("<code>")
	sb.WriteString(l.now().UTC().Format(time.RFC3339))
	sb.WriteByte('\n')
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("</code>")
	return sb.String()
}

var snippetConverter = md.NewConverter(
	md.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// ContextSnippet condenses an HTML excerpt into a short single-line markdown
// string suitable for an entry's context field. Conversion failures fall back
// to the raw input, truncated the same way.
func ContextSnippet(html string) string {
	const maxLen = 200

	out, err := snippetConverter.ConvertString(html)
	if err != nil {
		out = html
	}
	out = strings.Join(strings.Fields(out), " ")
	if len(out) > maxLen {
		out = out[:maxLen] + "..."
	}
	return out
}
