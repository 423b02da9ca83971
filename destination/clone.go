package destination

// CloneWithValues deep-clones template and populates it with values from
// source. The template defines the complete field shape; the source supplies
// only the values it has. Fields present in the template but absent from the
// source are retained as empty defaults, never deleted. Repeating groups in
// the template are cloned once per corresponding source entry.
func CloneWithValues(template, source *Node) *Node {
	cloned := template.Clone()

	// Asset choosers: the source side of a migration carries the target as a
	// group with a "path" child. A bare "/" means unset.
	if cloned.Type == TypeAsset {
		if source.Type == TypeGroup {
			if path := source.ChildText("path"); path != "" && path != "/" {
				cloned.PagePath = path
			}
		}
		return cloned
	}

	if source.Type == TypeText {
		if source.Text != "" {
			cloned.Text = source.Text
		} else {
			cloned.Text = ""
		}
	}

	if cloned.Type != TypeGroup || source.Type != TypeGroup {
		return cloned
	}

	firstTemplate := make(map[string]*Node)
	for _, c := range cloned.Children {
		if _, ok := firstTemplate[c.Identifier]; !ok {
			firstTemplate[c.Identifier] = c
		}
	}
	sourceByID := make(map[string][]*Node)
	for _, c := range source.Children {
		sourceByID[c.Identifier] = append(sourceByID[c.Identifier], c)
	}

	// Rebuild children in template order so field order survives the clone.
	newChildren := make([]*Node, 0, len(cloned.Children))
	seen := make(map[string]bool)
	for _, tc := range cloned.Children {
		if seen[tc.Identifier] {
			continue
		}
		seen[tc.Identifier] = true

		srcList, ok := sourceByID[tc.Identifier]
		if !ok {
			newChildren = append(newChildren, tc)
			continue
		}
		pattern := firstTemplate[tc.Identifier]
		for _, sc := range srcList {
			newChildren = append(newChildren, CloneWithValues(pattern, sc))
		}
	}
	cloned.Children = newChildren
	return cloned
}
