// Package richtext handles the rich-text fields of legacy export documents:
// parsing fragments of editor-produced markup, splitting them into sections
// on heading boundaries, classifying embedded images by visual role, and
// cleaning the surviving markup for the destination CMS.
package richtext

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment is a mixed tree of inline markup parsed from one rich-text field.
// Nodes live under a synthetic body wrapper so tree surgery works uniformly
// at every depth.
type Fragment struct {
	root *html.Node
}

// NewFragment returns an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{root: &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}}
}

// Parse parses a rich-text fragment. The input is body-level markup, not a
// full document.
func Parse(s string) (*Fragment, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return nil, fmt.Errorf("richtext: parse fragment: %w", err)
	}
	f := NewFragment()
	for _, n := range nodes {
		f.root.AppendChild(n)
	}
	return f, nil
}

// Root returns the synthetic wrapper element holding the fragment's nodes.
func (f *Fragment) Root() *html.Node { return f.root }

// Nodes returns the fragment's current top-level nodes.
func (f *Fragment) Nodes() []*html.Node {
	var out []*html.Node
	for c := f.root.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// Append detaches n from its current parent and appends it to the fragment.
func (f *Fragment) Append(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	f.root.AppendChild(n)
}

// HTML renders the fragment back to markup.
func (f *Fragment) HTML() string {
	return renderChildren(f.root)
}

// IsEmpty reports whether the fragment holds no elements and no visible text.
func (f *Fragment) IsEmpty() bool {
	for c := f.root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return false
		}
		if c.Type == html.TextNode && strings.TrimSpace(c.Data) != "" {
			return false
		}
	}
	return true
}

// Text returns the concatenated visible text of the fragment.
func (f *Fragment) Text() string {
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
	walk(f.root)
	return strings.TrimSpace(sb.String())
}

// renderChildren renders the children of n without n's own tags.
func renderChildren(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return buf.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.H2, atom.H3, atom.H4, atom.H5:
		return true
	}
	return false
}

// findImages returns every img element in the subtree, document order.
func findImages(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Img {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}
