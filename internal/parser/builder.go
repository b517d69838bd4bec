package parser

import (
	"strings"

	"github.com/dgallion1/promark/internal/doctree"
)

// treeBuilder nests body text under the most recent heading, and each
// heading under the nearest shallower one before it.
type treeBuilder struct {
	root  doctree.DocNode
	stack []stackEntry
	text  []string
}

type stackEntry struct {
	node  *doctree.DocNode
	level int
}

func newTreeBuilder() *treeBuilder {
	b := &treeBuilder{}
	b.stack = []stackEntry{{node: &b.root}}
	return b
}

// heading opens a section at level (1-6).
func (b *treeBuilder) heading(title string, level int) {
	b.flush()
	node := &doctree.DocNode{Title: title, Level: level}
	for len(b.stack) > 1 && b.stack[len(b.stack)-1].level >= level {
		b.stack = b.stack[:len(b.stack)-1]
	}
	parent := b.stack[len(b.stack)-1].node
	parent.Children = append(parent.Children, node)
	b.stack = append(b.stack, stackEntry{node: node, level: level})
}

// block adds a paragraph-level block to the open section.
func (b *treeBuilder) block(text string) {
	if text = strings.TrimSpace(text); text != "" {
		b.text = append(b.text, text)
	}
}

func (b *treeBuilder) flush() {
	if len(b.text) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1].node
	if top.Text != "" {
		b.text = append([]string{top.Text}, b.text...)
	}
	top.Text = strings.Join(b.text, "\n\n")
	b.text = b.text[:0]
}

// tree returns the result. Text before the first heading leads the document.
func (b *treeBuilder) tree(title string) *doctree.DocTree {
	b.flush()
	t := &doctree.DocTree{Title: title, Children: b.root.Children}
	if b.root.Text != "" {
		t.Children = append([]*doctree.DocNode{{Text: b.root.Text}}, t.Children...)
	}
	return t
}

// baseTitle is filename without its extension.
func baseTitle(filename string) string {
	ext := strings.LastIndexByte(filename, '.')
	if ext <= 0 {
		return filename
	}
	return filename[:ext]
}
