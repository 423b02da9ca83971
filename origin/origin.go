// Package origin reads legacy XML export documents and detects which
// optional content regions and items an editor turned on.
package origin

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Element is one node of an origin document. Mixed content is preserved in
// order so rich-text fields reserialize faithfully.
type Element struct {
	Name  string
	Attrs []Attr

	// Kids holds element children in document order.
	Kids []*Element

	segs []segment
}

// Attr is one attribute, order preserved from the source document.
type Attr struct {
	Name  string
	Value string
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(name string) string {
	if e == nil {
		return ""
	}
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// segment is one interleaved piece of mixed content: character data or a
// child element.
type segment struct {
	text string
	el   *Element
}

// Child returns the first direct child element with the given name, or nil.
func (e *Element) Child(name string) *Element {
	if e == nil {
		return nil
	}
	for _, k := range e.Kids {
		if k.Name == name {
			return k
		}
	}
	return nil
}

// ChildText returns the trimmed text of a direct child, or "" when absent.
func (e *Element) ChildText(name string) string {
	return e.Child(name).Text()
}

// Text returns the element's trimmed direct character data.
func (e *Element) Text() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, s := range e.segs {
		if s.el == nil {
			sb.WriteString(s.text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Find returns the first descendant element with the given name, depth
// first, or nil.
func (e *Element) Find(name string) *Element {
	if e == nil {
		return nil
	}
	for _, k := range e.Kids {
		if k.Name == name {
			return k
		}
		if found := k.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant element with the given name, depth first.
func (e *Element) FindAll(name string) []*Element {
	if e == nil {
		return nil
	}
	var out []*Element
	for _, k := range e.Kids {
		if k.Name == name {
			out = append(out, k)
		}
		out = append(out, k.FindAll(name)...)
	}
	return out
}

// InnerXML reserializes the element's mixed content. Rich-text fields pass
// through this on their way to the fragment parser.
func (e *Element) InnerXML() string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	for _, s := range e.segs {
		if s.el != nil {
			s.el.writeTo(&sb)
		} else {
			sb.WriteString(escapeText(s.text))
		}
	}
	return strings.TrimSpace(sb.String())
}

func (e *Element) writeTo(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(escapeAttr(a.Value))
		sb.WriteByte('"')
	}
	if len(e.segs) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	for _, s := range e.segs {
		if s.el != nil {
			s.el.writeTo(sb)
		} else {
			sb.WriteString(escapeText(s.text))
		}
	}
	sb.WriteString("</")
	sb.WriteString(e.Name)
	sb.WriteByte('>')
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

func escapeAttr(s string) string {
	return strings.ReplaceAll(escapeText(s), `"`, "&quot;")
}

// Metadata is the page-level metadata carried by the canonical page record.
type Metadata struct {
	Title       string
	DisplayName string
	Description string
	Path        string
}

// Document is one parsed origin export. Immutable input: nothing in this
// package mutates it after parsing.
type Document struct {
	// Root is the full document tree.
	Root *Element

	// Page is the canonical page record inside the calling-page subtree.
	// The structurally duplicated top-level hierarchy in the same file is
	// never read.
	Page *Element

	// Meta holds the page metadata.
	Meta Metadata
}

// Parse reads an origin XML document. A parse failure is structural: the
// page cannot be migrated.
func Parse(r io.Reader) (*Document, error) {
	root, err := parseTree(r)
	if err != nil {
		return nil, fmt.Errorf("origin: parse: %w", err)
	}

	scope := root
	if cp := root.Find("calling-page"); cp != nil {
		scope = cp
	} else if root.Name == "calling-page" {
		scope = root
	}

	page := scope
	for _, sp := range scope.FindAll("system-page") {
		if sp.Attr("current") == "true" {
			page = sp
			break
		}
		if page == scope {
			page = sp
		}
	}

	doc := &Document{Root: root, Page: page}
	doc.Meta = Metadata{
		Title:       page.ChildText("title"),
		DisplayName: page.ChildText("display-name"),
		Description: page.ChildText("description"),
		Path:        page.ChildText("path"),
	}
	return doc, nil
}

func parseTree(r io.Reader) (*Element, error) {
	dec := xml.NewDecoder(r)
	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("multiple root elements")
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Kids = append(parent.Kids, el)
				parent.segs = append(parent.segs, segment{el: el})
			}
			stack = append(stack, el)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.segs = append(top.segs, segment{text: string(t)})
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("empty document")
	}
	return root, nil
}
