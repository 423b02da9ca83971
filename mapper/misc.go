package mapper

import (
	"strings"

	"github.com/wjoell/slc-migrate/destination"
	"github.com/wjoell/slc-migrate/miglog"
	"github.com/wjoell/slc-migrate/origin"
	"github.com/wjoell/slc-migrate/richtext"
)

// mapQuote emits one quote item. An empty quote body produces nothing.
func (m *Mapper) mapQuote(el *origin.Element) []Item {
	group := el.Find("group-quote")
	if group == nil {
		return nil
	}
	body := group.ChildText("quote-text")
	if body == "" {
		return nil
	}

	item := destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "quote"),
		destination.Text("wysiwyg", body),
		destination.Group("quote",
			destination.Text("quote-author", group.ChildText("quote-citation-text")),
		),
	)
	return []Item{{Node: item}}
}

// formProviders maps origin provider names to destination identifiers.
// Unrecognized values fall back to basin.
var formProviders = map[string]string{
	"Basin": "basin",
	"Slate": "slate",
}

// mapForm emits one form item. An item without a form ID is excluded.
func (m *Mapper) mapForm(el *origin.Element, rep richtext.Reporter) []Item {
	group := el.Find("group-form")
	if group == nil {
		return nil
	}
	formID := group.ChildText("form-id")
	if formID == "" {
		rep.Warning("Excluded: Form item with no form ID", "")
		return nil
	}

	formType, ok := formProviders[group.ChildText("form-provider")]
	if !ok {
		formType = "basin"
	}
	item := destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "form"),
		destination.Group("group-forms",
			destination.Text("form-type", formType),
			destination.Text("form-id", formID),
			destination.Text("accessible-title", group.ChildText("form-title")),
		),
	)
	return []Item{{Node: item}}
}

// logGallery records a gallery for manual placement. Galleries attach at the
// section level in the destination schema, so the mapper never emits an item
// for them.
func (m *Mapper) logGallery(el *origin.Element, rep richtext.Reporter) {
	id := ""
	if g := el.Find("publish-api-gallery"); g != nil {
		id = g.ChildText("gallery-api-id")
	}
	if id == "" {
		rep.Warning("Gallery item with no gallery-api-id, nothing to place", "")
		return
	}
	rep.Warning("Gallery requires manual placement: gallery-api-id "+id, "")
}

// logButtonNav records a button navigation group with enough label/target
// detail for manual follow-up.
func (m *Mapper) logButtonNav(el *origin.Element, rep richtext.Reporter) {
	buttons := el.FindAll("group-button-links")
	if len(buttons) == 0 {
		rep.Warning("Excluded: Button navigation group (no buttons)", "")
		return
	}

	details := make([]string, 0, len(buttons))
	for _, b := range buttons {
		label := b.ChildText("button-link-label")
		switch {
		case b.ChildText("ext-button-link") != "":
			details = append(details, label+" -> "+b.ChildText("ext-button-link"))
		case b.Child("button-link") != nil:
			details = append(details, label+" -> "+b.Child("button-link").ChildText("path"))
		default:
			details = append(details, label)
		}
	}
	rep.Warning("Excluded: Button navigation group: "+strings.Join(details, ", "), "")
}

// mapExternalBlock triages the generic block container on its nested
// subtype. List Index expands into cards; Simple Content is flagged for
// manual review; everything else is excluded.
func (m *Mapper) mapExternalBlock(el *origin.Element, rep richtext.Reporter) []Item {
	group := el.Find("group-block")
	if group == nil {
		rep.Warning("Excluded: External Block with no block group", "")
		return nil
	}

	switch blockType := group.ChildText("type"); blockType {
	case "List Index":
		return m.mapListIndex(group, rep)
	case "Simple Content":
		m.logSimpleContent(el, group, rep)
		return nil
	default:
		rep.Warning("Excluded: External Block ("+orUnknown(blockType)+")", "")
		return nil
	}
}

// logSimpleContent flags a Simple Content block for manual review,
// distinguishing embed code from real prose.
func (m *Mapper) logSimpleContent(el, group *origin.Element, rep richtext.Reporter) {
	heading := el.ChildText("section-heading")
	if heading == "" {
		heading = "(no heading)"
	}

	var content string
	if block := group.Child("block"); block != nil {
		if c := block.Child("content"); c != nil {
			content = c.InnerXML()
		}
	}
	if content == "" {
		rep.Warning("Excluded: External Block (Simple Content - empty)", "")
		return
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "<script") || strings.Contains(lower, "<style") || strings.Contains(content, "mc_embed") {
		rep.Warning(`MANUAL: External Block (Simple Content) "`+heading+`" contains embed code - requires manual setup`, "")
		return
	}
	rep.Warning(`MANUAL: External Block (Simple Content) "`+heading+`" has content`, miglog.ContextSnippet(content))
}

// mapListIndex expands a List Index block into one cards item with one card
// per visible entry.
func (m *Mapper) mapListIndex(group *origin.Element, rep richtext.Reporter) []Item {
	block := group.Child("block")
	if block == nil {
		return nil
	}
	entries := block.FindAll("item")
	if len(entries) == 0 {
		return nil
	}

	cards := destination.Group("group-cards", destination.Text("card-options", "default"))
	for _, entry := range entries {
		if v := entry.ChildText("visibility"); v != "" && v != "on" {
			continue
		}

		linkPath := "/"
		switch entry.ChildText("heading-link-type") {
		case "int":
			if link := entry.Child("heading-link"); link != nil {
				if p := link.ChildText("path"); p != "" {
					linkPath = p
				}
			}
		case "ext":
			if ext := entry.ChildText("ext-heading-link"); ext != "" {
				rep.Warning("List Index item external link: "+ext, "")
			}
		}

		assetID := ""
		if img := entry.Child("image"); img != nil {
			if name := img.ChildText("name"); name != "" {
				assetID, _ = m.cfg.Assets.Lookup(name)
			}
		}

		body := ""
		if w := entry.Child("wysiwyg"); w != nil {
			if frag, err := richtext.Parse(w.InnerXML()); err == nil {
				m.cfg.Cleaner.Clean(frag, rep)
				body = frag.HTML()
			}
		}

		cards.Children = append(cards.Children, destination.Group("group-card-item",
			destination.Group("group-card-item-heading",
				destination.Text("heading-text", entry.ChildText("heading")),
				destination.Group("heading-link", destination.Text("path", linkPath)),
			),
			destination.Group("group-single-media",
				destination.Text("media-type", "img-pub-api"),
				destination.Text("pub-api-asset-id", assetID),
			),
			destination.Text("wysiwyg", body),
		))
	}
	if len(cards.Children) == 1 {
		// Only the card-options field: every entry was hidden.
		return nil
	}

	item := destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "cards"),
		cards,
	)
	return []Item{{Node: item}}
}
