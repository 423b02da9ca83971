package origin

// Region names of the origin page model. intro and grid are single-valued,
// the rest are repeating item collections.
const (
	RegionIntro     = "intro"
	RegionGrid      = "grid"
	RegionNav       = "nav"
	RegionPrimary   = "primary"
	RegionSecondary = "secondary"
)

// RegionNames lists every region in page order.
var RegionNames = []string{RegionIntro, RegionGrid, RegionNav, RegionPrimary, RegionSecondary}

// flagState is the three-way reading of a region's settings flag.
type flagState int

const (
	flagAbsent flagState = iota // no tag at all: eligible for auto-detection
	flagOff                     // explicit empty tag: never auto-activated
	flagOn
)

// Item is one repeating entry within a region.
type Item struct {
	el *Element

	// Type is the content-type discriminator, e.g. "Text" or "Accordion".
	Type string

	// Status is the editor's on/off flag. Only "On" items are active.
	Status string
}

// Element returns the item's underlying origin element.
func (i *Item) Element() *Element { return i.el }

// settingsFlag reads the region flag out of the settings block.
func (d *Document) settingsFlag(region string) flagState {
	settings := d.Page.Find("group-settings")
	if settings == nil {
		return flagAbsent
	}
	node := settings.Child(region)
	if node == nil {
		return flagAbsent
	}
	if node.ChildText("value") == "On" {
		return flagOn
	}
	// Present but empty: the editor explicitly turned the region off.
	return flagOff
}

// DetectActiveRegions reports which regions are active. An explicit "On"
// flag activates a region; an explicit empty flag deactivates it and is
// never overridden by content. When the intro flag is wholly absent the
// intro region is additionally activated by the presence of intro content.
func (d *Document) DetectActiveRegions() map[string]bool {
	active := make(map[string]bool, len(RegionNames))
	for _, region := range RegionNames {
		switch d.settingsFlag(region) {
		case flagOn:
			active[region] = true
		case flagOff:
			active[region] = false
		default:
			active[region] = region == RegionIntro && d.introHasContent()
		}
	}
	return active
}

// introHasContent reports whether the intro region carries anything worth
// migrating: rich text, a configured gallery, a configured video, or a
// call-to-action image pointing somewhere real while a display mode shows it.
func (d *Document) introHasContent() bool {
	intro := d.Intro()
	if intro == nil {
		return false
	}
	if w := intro.Find("wysiwyg"); w != nil && w.InnerXML() != "" {
		return true
	}
	if g := intro.Find("publish-api-gallery"); g != nil && g.ChildText("gallery-api-id") != "" {
		return true
	}
	if v := intro.Find("intro-video"); v != nil && v.ChildText("video-id") != "" {
		return true
	}
	display := intro.ChildText("cta-display")
	if display != "" && display != "Off" {
		if img := intro.Find("cta-image"); img != nil {
			if path := img.ChildText("path"); path != "" && path != "/" {
				return true
			}
		}
	}
	return false
}

// Intro returns the intro region element, or nil.
func (d *Document) Intro() *Element {
	return d.Page.Find("group-intro")
}

// ActiveItems returns the active items of a repeating region in document
// order. An item is active iff its own status field equals "On"; content
// never overrides an Off status.
func (d *Document) ActiveItems(region string) []*Item {
	var out []*Item
	for _, el := range d.Page.FindAll("group-" + region) {
		status := el.ChildText("status")
		if status != "On" {
			continue
		}
		out = append(out, &Item{
			el:     el,
			Type:   itemType(el),
			Status: status,
		})
	}
	return out
}

func itemType(el *Element) string {
	if t := el.Child("type"); t != nil {
		return t.Text()
	}
	if t := el.Find("type"); t != nil {
		return t.Text()
	}
	return ""
}
