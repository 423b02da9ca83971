// Package mapper converts active origin items into destination structured
// content. One pure mapping per origin type; content gaps degrade to "no
// output plus a log entry" and never fail the page.
package mapper

import (
	"log/slog"

	"github.com/wjoell/slc-migrate/assetids"
	"github.com/wjoell/slc-migrate/destination"
	"github.com/wjoell/slc-migrate/origin"
	"github.com/wjoell/slc-migrate/richtext"
)

// Item is one mapped destination content item. SectionHeading is set when
// the item must open a new destination section carrying that heading, which
// happens when the splitter's h2-to-h3 merge produced a heading override.
type Item struct {
	Node           *destination.Node
	SectionHeading string
}

// Config configures the mapper registry.
type Config struct {
	// Assets resolves legacy image filenames to destination asset IDs.
	Assets *assetids.Table `json:"-" yaml:"-"`

	// Splitter partitions rich-text fields. A default is built when nil.
	Splitter *richtext.Splitter `json:"-" yaml:"-"`

	// Cleaner normalizes rich text that bypasses the splitter.
	Cleaner *richtext.Cleaner `json:"-" yaml:"-"`

	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Cleaner == nil {
		c.Cleaner = richtext.NewCleaner(richtext.CleanerConfig{Logger: c.Logger})
	}
	if c.Splitter == nil {
		c.Splitter = richtext.NewSplitter(richtext.SplitterConfig{Cleaner: c.Cleaner, Logger: c.Logger})
	}
}

// Mapper dispatches origin items to per-type mapping functions.
type Mapper struct {
	cfg Config
}

// New creates a mapper registry.
func New(cfg Config) *Mapper {
	cfg.defaults()
	return &Mapper{cfg: cfg}
}

// MapItem converts one active origin item. The returned slice may be empty;
// every empty result for a non-empty item leaves a trace in the log.
func (m *Mapper) MapItem(it *origin.Item, rep richtext.Reporter) []Item {
	el := it.Element()
	switch ParseItemType(it.Type) {
	case TypeText:
		return m.mapText(el, rep)
	case TypeAccordion:
		return m.mapAccordion(el, rep)
	case TypeQuote:
		return m.mapQuote(el)
	case TypeVideo:
		return m.mapVideo(el, rep)
	case TypeImage:
		return m.mapImage(el, rep)
	case TypeForm:
		return m.mapForm(el, rep)
	case TypeGallery:
		m.logGallery(el, rep)
		return nil
	case TypeExternalBlock:
		return m.mapExternalBlock(el, rep)
	case TypeButtonNav:
		m.logButtonNav(el, rep)
		return nil
	case TypeActionLinks:
		rep.Warning("Excluded: Action Links item", "")
		return nil
	default:
		rep.Warning("Excluded: unmapped item type "+orUnknown(it.Type), "")
		return nil
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}

// resolveAsset looks up an image's destination asset ID. A miss is recorded
// as an error entry so the page summary surfaces the gap.
func (m *Mapper) resolveAsset(ref richtext.ImageRef, rep richtext.Reporter) (string, bool) {
	id, ok := m.cfg.Assets.Lookup(ref.Filename)
	if !ok {
		rep.Error("NO ASSET ID FOUND: "+ref.Filename, "")
		return "", false
	}
	return id, true
}

// proseItem builds a prose content item for one split section.
func proseItem(sec *richtext.Section) *destination.Node {
	return destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "prose"),
		destination.Group("group-content-heading",
			destination.Text("heading-text", sec.Heading),
			destination.Text("heading-level", headingLevel(sec)),
		),
		destination.Text("wysiwyg", sec.Fragment.HTML()),
	)
}

func headingLevel(sec *richtext.Section) string {
	if sec.HeadingLevel == "" {
		return "h2"
	}
	return sec.HeadingLevel
}

// mediaImageItem builds a standalone media item for a block image.
func mediaImageItem(assetID, caption, size string) *destination.Node {
	return destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "media"),
		destination.Group("group-single-media",
			destination.Text("media-type", "img-pub-api"),
			destination.Text("pub-api-asset-id", assetID),
			destination.Text("caption", caption),
			destination.Text("size", size),
		),
	)
}

// sectionItems converts split sections into content items. Floated images
// with a resolvable asset ID upgrade their section to prose-image; block
// images become standalone media items in place.
func (m *Mapper) sectionItems(sections []*richtext.Section, rep richtext.Reporter) []Item {
	var out []Item
	for _, sec := range sections {
		if sec.IsMedia() {
			id, ok := m.resolveAsset(*sec.Media, rep)
			if !ok {
				continue
			}
			caption := ""
			if sec.Media.Captioned {
				caption = sec.Media.AltText
			}
			out = append(out, Item{Node: mediaImageItem(id, caption, "lg")})
			continue
		}

		item := proseItem(sec)
		if sec.Floated != nil {
			if id, ok := m.resolveAsset(*sec.Floated, rep); ok {
				item.SetChildText("content-item-type", "prose-image")
				caption := ""
				if sec.Floated.Captioned {
					caption = sec.Floated.AltText
				}
				item.Children = append(item.Children, destination.Group("group-single-media",
					destination.Text("media-type", "img-pub-api"),
					destination.Text("pub-api-asset-id", id),
					destination.Text("caption", caption),
					destination.Text("position", sec.Floated.Side),
					destination.Text("size", "md"),
				))
			}
		}
		out = append(out, Item{Node: item, SectionHeading: sec.Override})
	}
	return out
}
