package mapper

import (
	"github.com/wjoell/slc-migrate/destination"
	"github.com/wjoell/slc-migrate/origin"
	"github.com/wjoell/slc-migrate/richtext"
)

// mapText splits the item's rich-text field on heading boundaries and emits
// one item per section.
func (m *Mapper) mapText(el *origin.Element, rep richtext.Reporter) []Item {
	group := el.Find("group-text")
	if group == nil {
		return nil
	}
	wysiwyg := group.Child("wysiwyg")
	if wysiwyg == nil {
		return nil
	}

	frag, err := richtext.Parse(wysiwyg.InnerXML())
	if err != nil {
		rep.Warning("Text item skipped: unparseable rich text: "+err.Error(), "")
		return nil
	}
	return m.sectionItems(m.cfg.Splitter.Split(frag, rep), rep)
}

// mapAccordion collapses every retained panel into one accordion item.
// Panel bodies keep their text but lose headings (downgraded to bold) and
// images (removed, logged with their resolved asset ID).
func (m *Mapper) mapAccordion(el *origin.Element, rep richtext.Reporter) []Item {
	group := el.Find("group-accordion")
	if group == nil {
		return nil
	}
	panels := group.FindAll("group-panel")
	if len(panels) == 0 {
		return nil
	}

	accordion := destination.Group("group-accordion", destination.Text("layout", "large"))
	kept := 0
	for _, panel := range panels {
		heading := panel.ChildText("heading")
		if panel.ChildText("display") == "Off" {
			rep.Warning("Accordion panel dropped (display=Off): "+heading, "")
			continue
		}

		body := ""
		if w := panel.Child("wysiwyg"); w != nil {
			body = m.cleanPanelBody(w.InnerXML(), rep)
		}
		display := panel.ChildText("display")
		if display == "" {
			display = "Collapsed"
		}
		accordion.Children = append(accordion.Children, destination.Group("group-panel",
			destination.Text("heading", heading),
			destination.Text("display", display),
			destination.Text("wysiwyg", body),
		))
		kept++
	}
	if kept == 0 {
		return nil
	}

	item := destination.Group(destination.ContentItemIdentifier,
		destination.Text("content-item-type", "accordion"),
		accordion,
	)
	return []Item{{Node: item}}
}

// cleanPanelBody applies the accordion's stricter rich-text rules: images
// out first (with asset IDs in the log), then heading downgrade, then the
// shared cleaning pass.
func (m *Mapper) cleanPanelBody(raw string, rep richtext.Reporter) string {
	frag, err := richtext.Parse(raw)
	if err != nil {
		rep.Warning("Accordion panel body unparseable: "+err.Error(), "")
		return ""
	}

	for _, ref := range richtext.ExtractImages(frag) {
		if id, ok := m.cfg.Assets.Lookup(ref.Filename); ok {
			rep.Warning("Accordion image removed: "+ref.Filename+" (asset "+id+")", "")
		} else {
			rep.Error("NO ASSET ID FOUND: "+ref.Filename, "")
		}
	}
	richtext.DowngradeHeadings(frag, rep)
	m.cfg.Cleaner.Clean(frag, rep)
	return frag.HTML()
}
