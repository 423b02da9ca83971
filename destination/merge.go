package destination

import "errors"

// Structural failures. These abort the merge for a single page; content
// gaps never surface here.
var (
	ErrNoSectionTemplate = errors.New("destination: no section template in live document")
	ErrNoSummaryField    = errors.New("destination: no migration-summary field in live document")
)

// Merge grafts newly produced page sections into the top-level node list of
// a live document.
//
// The first section node already present in the live document serves as the
// structural template: every new section is cloned from it via
// CloneWithValues, its activation flag forced on. The first clone takes the
// template's position; further clones are inserted immediately before the
// call-to-action banner sentinel when one exists, else appended. Existing
// section nodes are replaced, every other node passes through untouched.
// When summary is non-empty the migration-summary field is replaced
// wholesale with it.
func Merge(current []*Node, sections []*Node, summary string) ([]*Node, error) {
	template := Find(current, SectionIdentifier)
	if template == nil {
		return nil, ErrNoSectionTemplate
	}
	if summary != "" && Find(current, SummaryIdentifier) == nil {
		return nil, ErrNoSummaryField
	}

	clones := make([]*Node, 0, len(sections))
	for _, sec := range sections {
		c := CloneWithValues(template, sec)
		c.SetChildText(StatusIdentifier, "true")
		clones = append(clones, c)
	}

	out := make([]*Node, 0, len(current)+len(clones))
	placedFirst := false
	placedRest := false
	for _, n := range current {
		switch n.Identifier {
		case SectionIdentifier:
			if !placedFirst && len(clones) > 0 {
				out = append(out, clones[0])
				placedFirst = true
			}
			// Remaining live sections are replaced, not kept.
		case SentinelIdentifier:
			if !placedRest && len(clones) > 1 {
				out = append(out, clones[1:]...)
				placedRest = true
			}
			out = append(out, n)
		case SummaryIdentifier:
			if summary != "" {
				replaced := n.Clone()
				replaced.Text = summary
				out = append(out, replaced)
			} else {
				out = append(out, n)
			}
		default:
			out = append(out, n)
		}
	}
	if !placedRest && len(clones) > 1 {
		out = append(out, clones[1:]...)
	}
	return out, nil
}
