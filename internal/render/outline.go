package render

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/promark/internal/doctree"
)

// Outliner extracts the heading hierarchy of a document.
type Outliner struct {
	md goldmark.Markdown
}

func NewOutliner() *Outliner {
	return &Outliner{md: newEngine()}
}

// Outline returns the headings of content as a tree. Node ids are the same
// anchors the Renderer puts on the rendered headings.
func (o *Outliner) Outline(content string) *doctree.DocTree {
	meta, src := SplitFrontMatter([]byte(content))
	doc := o.md.Parser().Parse(text.NewReader(src))

	tree := &doctree.DocTree{Title: meta.Title}

	type stackEntry struct {
		node  *doctree.DocNode
		level int
	}

	// Root is level 0; all h1+ nest under it.
	root := &doctree.DocNode{}
	stack := []stackEntry{{node: root, level: 0}}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		heading, ok := n.(*ast.Heading)
		if !ok {
			continue
		}

		node := &doctree.DocNode{
			Title: headingText(heading, src),
			Level: heading.Level,
		}
		if id, ok := heading.AttributeString("id"); ok {
			if b, ok := id.([]byte); ok {
				node.ID = string(b)
			}
		}

		// Pop until the top is a shallower heading.
		for len(stack) > 1 && stack[len(stack)-1].level >= heading.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1].node
		parent.Children = append(parent.Children, node)
		stack = append(stack, stackEntry{node: node, level: heading.Level})
	}

	tree.Children = root.Children
	if tree.Children == nil {
		tree.Children = []*doctree.DocNode{}
	}
	return tree
}

// headingText flattens the inline content of a heading.
func headingText(n ast.Node, src []byte) string {
	var buf []byte
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				buf = append(buf, t.Segment.Value(src)...)
				if t.SoftLineBreak() || t.HardLineBreak() {
					buf = append(buf, ' ')
				}
			case *ast.String:
				buf = append(buf, t.Value...)
			default:
				walk(c)
			}
		}
	}
	walk(n)
	return string(buf)
}
