package doctree

import "strings"

// DocTree is the root of a parsed document.
type DocTree struct {
	Title    string     `json:"title,omitempty"` // From front matter, <title> or filename
	Children []*DocNode `json:"children"`        // Top-level sections
}

// DocNode is a recursive section in the document tree.
type DocNode struct {
	Title    string     `json:"title,omitempty"` // Section heading (empty for leaf text)
	ID       string     `json:"id,omitempty"`    // Anchor id, matches the rendered heading
	Level    int        `json:"level,omitempty"` // Heading level 1-6, 0 if unknown
	Text     string     `json:"text,omitempty"`  // Body text of this section
	Page     int        `json:"page,omitempty"`  // Source page (0 if N/A)
	Children []*DocNode `json:"children,omitempty"`
}

// Markdown serializes the tree back into markdown: each titled node becomes
// a heading (its own level, or its depth when the level is unknown) followed
// by its text.
func (t *DocTree) Markdown() string {
	var b strings.Builder
	block := func(s string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(s)
		b.WriteString("\n")
	}

	var walk func(nodes []*DocNode, depth int)
	walk = func(nodes []*DocNode, depth int) {
		for _, n := range nodes {
			if n.Title != "" {
				level := n.Level
				if level <= 0 {
					level = depth
				}
				block(strings.Repeat("#", min(level, 6)) + " " + n.Title)
			}
			if n.Text != "" {
				block(n.Text)
			}
			walk(n.Children, depth+1)
		}
	}
	walk(t.Children, 1)
	return b.String()
}

// Count returns the number of titled nodes in the tree.
func (t *DocTree) Count() int {
	var count func(nodes []*DocNode) int
	count = func(nodes []*DocNode) int {
		n := 0
		for _, c := range nodes {
			if c.Title != "" {
				n++
			}
			n += count(c.Children)
		}
		return n
	}
	return count(t.Children)
}
