package mapper

// ItemType is the closed set of origin content types the registry knows. A
// type string outside this set maps to TypeUnknown, which always produces a
// logged exclusion rather than falling through.
type ItemType int

const (
	TypeUnknown ItemType = iota
	TypeText
	TypeAccordion
	TypeQuote
	TypeVideo
	TypeImage
	TypeForm
	TypeGallery
	TypeExternalBlock
	TypeButtonNav
	TypeActionLinks
)

var itemTypeNames = map[ItemType]string{
	TypeUnknown:       "Unknown",
	TypeText:          "Text",
	TypeAccordion:     "Accordion",
	TypeQuote:         "Quote",
	TypeVideo:         "Video",
	TypeImage:         "Image",
	TypeForm:          "Form",
	TypeGallery:       "Publish API Gallery",
	TypeExternalBlock: "External Block",
	TypeButtonNav:     "Button navigation group",
	TypeActionLinks:   "Action Links",
}

func (t ItemType) String() string {
	if s, ok := itemTypeNames[t]; ok {
		return s
	}
	return "Unknown"
}

// ParseItemType maps an origin type discriminator to its variant.
func ParseItemType(s string) ItemType {
	for t, name := range itemTypeNames {
		if t != TypeUnknown && name == s {
			return t
		}
	}
	return TypeUnknown
}
