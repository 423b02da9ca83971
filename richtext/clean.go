package richtext

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CleanerConfig configures the fragment cleaner.
type CleanerConfig struct {
	// Domain is the site's own host. Links to it are rewritten to
	// root-relative CMS paths (default: www.sarahlawrence.edu).
	Domain string `json:"domain" yaml:"domain"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *CleanerConfig) defaults() {
	if c.Domain == "" {
		c.Domain = "www.sarahlawrence.edu"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Cleaner normalizes rich-text fragments for the destination CMS. Cleaning
// is recursive and idempotent: running it twice produces the same output as
// running it once.
//
// Rules:
//   - internal links are rewritten to root-relative paths, hash fragments
//     dropped, "-migration.html" then ".html" suffixes stripped, directory
//     URLs completed with "index"; PDF links stay fully qualified and are
//     reported for follow-up
//   - span, div and u wrappers are unwrapped, children promoted in place
//   - aria-* and class attributes are stripped from every element
//   - img elements are removed, their filenames reported
//   - non-breaking spaces become plain spaces
//   - elements left with no children are pruned, except br and wbr
type Cleaner struct {
	cfg CleanerConfig
}

// NewCleaner creates a cleaner with the given configuration.
func NewCleaner(cfg CleanerConfig) *Cleaner {
	cfg.defaults()
	return &Cleaner{cfg: cfg}
}

// Clean normalizes the fragment in place.
func (c *Cleaner) Clean(f *Fragment, rep Reporter) {
	c.CleanNode(f.Root(), rep)
}

// CleanNode normalizes the subtree under n in place. The node n itself is
// treated as a container and never removed.
func (c *Cleaner) CleanNode(n *html.Node, rep Reporter) {
	c.transform(n, rep)
	prune(n)
}

func (c *Cleaner) transform(n *html.Node, rep Reporter) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling

		switch child.Type {
		case html.TextNode:
			child.Data = normalizeSpaces(child.Data)

		case html.ElementNode:
			switch child.DataAtom {
			case atom.Img:
				ref := ClassifyImage(child)
				if ref.Filename != "" {
					rep.Warning("Image removed from content: "+ref.Filename, "")
				}
				n.RemoveChild(child)
				child = next
				continue

			case atom.Span, atom.Div, atom.U:
				// Promote children in place, then drop the wrapper. The
				// first promoted child becomes the next node to visit so
				// nested wrappers unwrap fully in one pass.
				first := child.FirstChild
				for gc := child.FirstChild; gc != nil; {
					gcNext := gc.NextSibling
					child.RemoveChild(gc)
					n.InsertBefore(gc, child)
					gc = gcNext
				}
				n.RemoveChild(child)
				if first != nil {
					next = first
				}
				child = next
				continue
			}

			if child.DataAtom == atom.A {
				if href := attr(child, "href"); href != "" {
					setAttr(child, "href", c.rewriteHref(href, rep))
				}
			}
			stripAttrs(child)
			c.transform(child, rep)
		}
		child = next
	}
}

// prune removes elements left with neither text nor children, bottom-up so
// wrappers emptied by their children's removal go too. br and wbr survive.
func prune(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode {
			prune(child)
			if child.FirstChild == nil && child.DataAtom != atom.Br && child.DataAtom != atom.Wbr {
				n.RemoveChild(child)
			}
		}
		child = next
	}
}

func stripAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key == "class" || strings.HasPrefix(a.Key, "aria-") {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func normalizeSpaces(s string) string {
	return strings.ReplaceAll(s, "\u00a0", " ")
}

// rewriteHref applies the internal-link rules. Links to other hosts pass
// through untouched.
func (c *Cleaner) rewriteHref(href string, rep Reporter) string {
	if path, ok := stripDomain(href, c.cfg.Domain); ok {
		if isPDF(path) {
			rep.Warning("PDF link left fully qualified: "+href, "")
			return href
		}
		if i := strings.Index(path, "#"); i >= 0 {
			path = path[:i]
		}
		switch {
		case path == "" || path == "/":
			path = "/index"
		case strings.HasSuffix(path, "/"):
			path += "index"
		case strings.Contains(path, "-migration.html"):
			path = strings.ReplaceAll(path, "-migration.html", "")
		case strings.HasSuffix(path, ".html"):
			path = strings.TrimSuffix(path, ".html")
		}
		return path
	}

	// Root-relative paths still carrying a legacy .html suffix.
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "#") {
		return href
	}
	if isPDF(href) {
		return href
	}
	if strings.Contains(href, "-migration.html") {
		return strings.ReplaceAll(href, "-migration.html", "")
	}
	if i := strings.Index(href, ".html"); i >= 0 {
		rest := href[i+len(".html"):]
		href = href[:i]
		if strings.HasPrefix(rest, "#") {
			href += rest
		}
	}
	return href
}

// stripDomain reports whether href targets the site's own host and, if so,
// returns the path that follows it.
func stripDomain(href, domain string) (string, bool) {
	for _, prefix := range []string{"https://" + domain, "http://" + domain, domain} {
		if rest, ok := strings.CutPrefix(href, prefix); ok {
			if rest == "" || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "#") {
				return rest, true
			}
		}
	}
	return "", false
}

func isPDF(path string) bool {
	return strings.Contains(strings.ToLower(path), ".pdf")
}
