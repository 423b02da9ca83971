package richtext

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DowngradeHeadings rewrites every h2-h5 in the fragment as a paragraph
// whose content is wrapped in strong. Accordion panel bodies use this so
// panel text never competes with the page's own heading hierarchy. Each
// downgrade is reported.
func DowngradeHeadings(f *Fragment, rep Reporter) {
	downgradeHeadings(f.root, rep)
}

func downgradeHeadings(n *html.Node, rep Reporter) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if isHeading(child) {
			rep.Warning("Heading downgraded to bold: "+Text(child), "")

			strong := &html.Node{Type: html.ElementNode, DataAtom: atom.Strong, Data: "strong"}
			for gc := child.FirstChild; gc != nil; gc = child.FirstChild {
				child.RemoveChild(gc)
				strong.AppendChild(gc)
			}
			child.DataAtom = atom.P
			child.Data = "p"
			child.Attr = nil
			child.AppendChild(strong)
			continue
		}
		downgradeHeadings(child, rep)
	}
}

// ExtractImages removes every image from the fragment and returns the refs
// in document order. The caller decides how to report them.
func ExtractImages(f *Fragment) []ImageRef {
	var out []ImageRef
	for _, n := range f.Nodes() {
		if n.Type != html.ElementNode {
			continue
		}
		if n.DataAtom == atom.Img {
			out = append(out, ClassifyImage(n))
			f.root.RemoveChild(n)
			continue
		}
		for _, img := range findImages(n) {
			out = append(out, ClassifyImage(img))
			img.Parent.RemoveChild(img)
		}
	}
	return out
}

// Text returns the visible text of an arbitrary node subtree, trimmed.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(sb.String())
}
