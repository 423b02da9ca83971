package richtext

import (
	"golang.org/x/net/html"
)

// SplitMedia partitions a fragment at block-image boundaries instead of
// headings: each block image ends the current text run and is emitted as a
// media section in place, so prose and media interleave in document order.
// Floated images attach to their surrounding run, first one wins. News
// article bodies use this; headings are left inline.
func (s *Splitter) SplitMedia(f *Fragment, rep Reporter) []*Section {
	var sections []*Section
	cur := &Section{Fragment: NewFragment()}

	flush := func() {
		if !cur.emptyBody() {
			sections = append(sections, cur)
		}
		cur = &Section{Fragment: NewFragment()}
	}

	for _, n := range f.Nodes() {
		if n.Type == html.ElementNode {
			for _, img := range findImages(n) {
				ref := ClassifyImage(img)
				switch ref.Role {
				case RoleBlock:
					img.Parent.RemoveChild(img)
					flush()
					r := ref
					sections = append(sections, &Section{Media: &r, Fragment: NewFragment()})
				case RoleFloated:
					img.Parent.RemoveChild(img)
					if cur.Floated == nil {
						r := ref
						cur.Floated = &r
					} else {
						rep.Warning("Additional floated image removed: "+ref.Filename, "")
					}
				}
				// Inline images stay put; the cleaner strips and reports them.
			}
		}
		if n.Parent == nil {
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
	return sections
}
