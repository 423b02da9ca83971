package richtext

import (
	"log/slog"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Section is one heading+content unit produced by splitting a rich-text
// fragment at heading boundaries.
type Section struct {
	// Heading is the heading's inner markup with strong wrappers removed
	// (em survives). Empty for a headless leading section.
	Heading string

	// HeadingLevel is "h2" through "h5", or "" for a headless section.
	HeadingLevel string

	// Override carries a section-level heading produced by the h2-to-h3
	// merge: set only when an empty h2 immediately preceded this h3.
	Override string

	// Fragment holds the cleaned body content.
	Fragment *Fragment

	// Floated is the one floated image honored for this section, if any.
	Floated *ImageRef

	// Media marks a standalone block-image section. A media section has no
	// heading and no content of its own.
	Media *ImageRef
}

// IsMedia reports whether the section stands in for a block image rather
// than prose.
func (s *Section) IsMedia() bool { return s.Media != nil }

// emptyBody reports whether the section carries no visible content.
// Whitespace-only markup counts as empty so stray editor paragraphs never
// block the h2-to-h3 merge.
func (s *Section) emptyBody() bool {
	return s.Floated == nil && s.Media == nil && s.Fragment.Text() == ""
}

// SplitterConfig configures the section splitter.
type SplitterConfig struct {
	// Cleaner normalizes each section's content before emission. A default
	// cleaner is built when nil.
	Cleaner *Cleaner `json:"-" yaml:"-"`

	// Logger for debug messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *SplitterConfig) defaults() {
	if c.Cleaner == nil {
		c.Cleaner = NewCleaner(CleanerConfig{Logger: c.Logger})
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Splitter partitions rich-text fragments into ordered sections.
//
// Each h2-h5 element starts a new section; content before the first heading
// (or all content when there are no headings) forms a headless leading
// section. Floated images are extracted onto their section, first one wins.
// Block images are pulled out as standalone media sections. After splitting,
// an empty h2 immediately followed by an h3 collapses into the h3 section
// with the h2 text carried as Override.
type Splitter struct {
	cfg SplitterConfig
}

// NewSplitter creates a splitter with the given configuration.
func NewSplitter(cfg SplitterConfig) *Splitter {
	cfg.defaults()
	return &Splitter{cfg: cfg}
}

// Split consumes the fragment and returns its ordered sections. The
// fragment's nodes are moved into the sections; the input is spent.
func (s *Splitter) Split(f *Fragment, rep Reporter) []*Section {
	var sections []*Section
	cur := &Section{Fragment: NewFragment()}
	var pendingMedia []*Section

	flush := func() {
		if cur.Heading != "" || cur.HeadingLevel != "" || !cur.emptyBody() {
			sections = append(sections, cur)
		}
		sections = append(sections, pendingMedia...)
		pendingMedia = nil
	}

	for _, n := range f.Nodes() {
		if isHeading(n) {
			flush()
			cur = &Section{HeadingLevel: n.Data, Fragment: NewFragment()}
			cur.Heading = s.extractHeading(n, cur, rep)
			continue
		}

		if n.Type == html.ElementNode {
			for _, img := range findImages(n) {
				ref := ClassifyImage(img)
				switch ref.Role {
				case RoleFloated:
					img.Parent.RemoveChild(img)
					if cur.Floated == nil {
						r := ref
						cur.Floated = &r
					} else {
						rep.Warning("Additional floated image removed: "+ref.Filename, "")
					}
				case RoleBlock:
					img.Parent.RemoveChild(img)
					r := ref
					pendingMedia = append(pendingMedia, &Section{Media: &r, Fragment: NewFragment()})
				}
				// Inline images stay put; the cleaner strips and reports them.
			}
		}
		if n.Parent == nil {
			// The node itself was an extracted image.
			continue
		}
		cur.Fragment.Append(n)
	}
	flush()

	for _, sec := range sections {
		if !sec.IsMedia() {
			s.cfg.Cleaner.Clean(sec.Fragment, rep)
		}
	}

	return mergeEmptyH2(sections)
}

// extractHeading removes embedded images from the heading element and
// returns its remaining inner markup. A floated image becomes the section's
// floated image; anything else is reported and dropped.
func (s *Splitter) extractHeading(h *html.Node, sec *Section, rep Reporter) string {
	for _, img := range findImages(h) {
		ref := ClassifyImage(img)
		img.Parent.RemoveChild(img)
		switch {
		case ref.Role == RoleFloated && sec.Floated == nil:
			r := ref
			sec.Floated = &r
		case ref.Role == RoleFloated:
			rep.Warning("Additional floated image in heading removed: "+ref.Filename, "")
		default:
			rep.Warning("Image found in heading, no float class: "+ref.Filename, "")
		}
	}
	unwrapStrong(h)
	return strings.TrimSpace(renderChildren(h))
}

// mergeEmptyH2 applies the h2-to-h3 rule once, left to right: an h2 section
// with heading text but no body, immediately followed by an h3 section, is
// consumed into the h3 as its Override and never emitted on its own.
func mergeEmptyH2(sections []*Section) []*Section {
	out := make([]*Section, 0, len(sections))
	for i := 0; i < len(sections); i++ {
		sec := sections[i]
		if sec.HeadingLevel == "h2" && sec.Heading != "" && sec.emptyBody() &&
			i+1 < len(sections) && sections[i+1].HeadingLevel == "h3" {
			sections[i+1].Override = sec.Heading
			continue
		}
		out = append(out, sec)
	}
	return out
}

// unwrapStrong promotes the children of strong elements in place. Headings
// keep emphasis but lose bold wrappers.
func unwrapStrong(n *html.Node) {
	child := n.FirstChild
	for child != nil {
		next := child.NextSibling
		if child.Type == html.ElementNode {
			if child.DataAtom == atom.Strong || child.DataAtom == atom.B {
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
			unwrapStrong(child)
		}
		child = next
	}
}
