package richtext

import (
	"path"
	"strings"

	"golang.org/x/net/html"
)

// ImageRole is the visual role of an embedded image, derived purely from its
// class attribute.
type ImageRole int

const (
	// RoleInline covers images with no recognized layout class. They are
	// stripped during cleaning and logged.
	RoleInline ImageRole = iota
	// RoleFloated covers left/right floated images wrapped by text.
	RoleFloated
	// RoleBlock covers full-width images occupying their own row.
	RoleBlock
)

func (r ImageRole) String() string {
	switch r {
	case RoleFloated:
		return "floated"
	case RoleBlock:
		return "block"
	}
	return "inline"
}

// Layout classes produced by the legacy editor.
const (
	classFloatLeft  = "float-left"
	classFloatRight = "float-right"
	classBlockImage = "blockParaImg"
	classCaptioned  = "captioned"
)

// ImageRef describes one embedded image extracted from a rich-text fragment.
type ImageRef struct {
	Filename  string // basename of the src path, the asset-lookup key
	Src       string // original src attribute
	AltText   string
	Role      ImageRole
	Side      string // "left" or "right" for floated images
	Captioned bool   // alt text doubles as a caption
}

// ClassifyImage builds an ImageRef from an img element.
func ClassifyImage(n *html.Node) ImageRef {
	src := attr(n, "src")
	ref := ImageRef{
		Filename: path.Base(src),
		Src:      src,
		AltText:  attr(n, "alt"),
	}
	if src == "" {
		ref.Filename = ""
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		switch class {
		case classFloatLeft:
			ref.Role = RoleFloated
			ref.Side = "left"
		case classFloatRight:
			ref.Role = RoleFloated
			ref.Side = "right"
		case classBlockImage:
			if ref.Role != RoleFloated {
				ref.Role = RoleBlock
			}
		case classCaptioned:
			ref.Captioned = true
		}
	}
	return ref
}
