// Package destination models the structured-data tree of a CMS page and
// implements the template-preserving merge used to graft migrated content
// into a live, already-populated page.
package destination

import "encoding/json"

// Node types used by the CMS structured-data model.
const (
	TypeGroup = "group"
	TypeText  = "text"
	TypeAsset = "asset"
)

// Identifiers with fixed roles in the page schema.
const (
	SectionIdentifier     = "group-page-section-item"
	ContentItemIdentifier = "group-section-content-item"
	SentinelIdentifier    = "group-cta-banner"
	SummaryIdentifier     = "migration-summary"
	StatusIdentifier      = "bool-status"
)

// Node is one structured-data node. Group nodes carry children, text nodes
// carry a value, asset nodes carry a page path. Fields the CMS serves that
// this model does not understand round-trip through Raw so a merge never
// drops them on write-back.
type Node struct {
	Type       string  `json:"type"`
	Identifier string  `json:"identifier"`
	Text       string  `json:"text,omitempty"`
	PagePath   string  `json:"pagePath,omitempty"`
	Children   []*Node `json:"structuredDataNodes,omitempty"`
	Recycled   bool    `json:"recycled"`

	Raw map[string]json.RawMessage `json:"-"`
}

// nodeWire mirrors Node's modeled fields without the custom codec, to avoid
// recursing through UnmarshalJSON/MarshalJSON.
type nodeWire struct {
	Type       string  `json:"type"`
	Identifier string  `json:"identifier"`
	Text       string  `json:"text,omitempty"`
	PagePath   string  `json:"pagePath,omitempty"`
	Children   []*Node `json:"structuredDataNodes,omitempty"`
	Recycled   bool    `json:"recycled"`
}

var modeledKeys = []string{"type", "identifier", "text", "pagePath", "structuredDataNodes", "recycled"}

// UnmarshalJSON decodes the modeled fields and captures everything else in
// Raw, byte for byte.
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range modeledKeys {
		delete(all, k)
	}
	*n = Node{
		Type:       w.Type,
		Identifier: w.Identifier,
		Text:       w.Text,
		PagePath:   w.PagePath,
		Children:   w.Children,
		Recycled:   w.Recycled,
	}
	if len(all) > 0 {
		n.Raw = all
	}
	return nil
}

// MarshalJSON emits the modeled fields merged with Raw. Modeled fields win
// on a key collision.
func (n *Node) MarshalJSON() ([]byte, error) {
	if len(n.Raw) == 0 {
		return json.Marshal(nodeWire{
			Type:       n.Type,
			Identifier: n.Identifier,
			Text:       n.Text,
			PagePath:   n.PagePath,
			Children:   n.Children,
			Recycled:   n.Recycled,
		})
	}
	out := make(map[string]any, len(n.Raw)+len(modeledKeys))
	for k, v := range n.Raw {
		out[k] = v
	}
	out["type"] = n.Type
	out["identifier"] = n.Identifier
	if n.Text != "" {
		out["text"] = n.Text
	}
	if n.PagePath != "" {
		out["pagePath"] = n.PagePath
	}
	if n.Children != nil {
		out["structuredDataNodes"] = n.Children
	}
	out["recycled"] = n.Recycled
	return json.Marshal(out)
}

// Group builds a group node.
func Group(identifier string, children ...*Node) *Node {
	return &Node{Type: TypeGroup, Identifier: identifier, Children: children}
}

// Text builds a text node. An empty value yields a value-less node, matching
// how the CMS serializes cleared fields.
func Text(identifier, value string) *Node {
	return &Node{Type: TypeText, Identifier: identifier, Text: value}
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	if n.Raw != nil {
		c.Raw = make(map[string]json.RawMessage, len(n.Raw))
		for k, v := range n.Raw {
			c.Raw[k] = v
		}
	}
	return &c
}

// Child returns the first direct child with the given identifier, or nil.
func (n *Node) Child(identifier string) *Node {
	if n == nil {
		return nil
	}
	return Find(n.Children, identifier)
}

// ChildText returns the text value of a direct child, or "" when the child
// is absent or empty. Absence and emptiness are deliberately conflated: the
// CMS omits the value on cleared fields.
func (n *Node) ChildText(identifier string) string {
	if c := n.Child(identifier); c != nil {
		return c.Text
	}
	return ""
}

// SetChildText sets the value of a direct text child. It reports whether the
// child was found.
func (n *Node) SetChildText(identifier, value string) bool {
	for _, c := range n.Children {
		if c.Identifier == identifier && c.Type == TypeText {
			c.Text = value
			return true
		}
	}
	return false
}

// Find returns the first node in the list with the given identifier, or nil.
func Find(nodes []*Node, identifier string) *Node {
	for _, n := range nodes {
		if n.Identifier == identifier {
			return n
		}
	}
	return nil
}

// FindAll returns every node in the list with the given identifier.
func FindAll(nodes []*Node, identifier string) []*Node {
	var out []*Node
	for _, n := range nodes {
		if n.Identifier == identifier {
			out = append(out, n)
		}
	}
	return out
}

// Descendant walks group children depth-first and returns the first node
// with the given identifier, or nil.
func (n *Node) Descendant(identifier string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Identifier == identifier {
			return c
		}
		if d := c.Descendant(identifier); d != nil {
			return d
		}
	}
	return nil
}

// Equal reports whether two trees are structurally identical. Used by the
// merge tests to verify untouched fields round-trip unchanged.
func Equal(a, b *Node) bool {
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return string(ja) == string(jb)
}
