// Package render projects document text into the preview and outline views.
// Both projections are pure functions of the text and share one goldmark
// configuration so outline anchors always match the preview's heading ids.
package render

import (
	"bytes"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

func newEngine() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		// Raw HTML is let through here and scrubbed by the sanitizer afterwards.
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}

// FrontMatter is the subset of leading metadata the views use.
type FrontMatter struct {
	Title string `yaml:"title" toml:"title" json:"title"`
}

// SplitFrontMatter separates a leading front matter block from the body.
// Text without front matter, or with front matter that does not parse, is
// returned unchanged as the body.
func SplitFrontMatter(src []byte) (FrontMatter, []byte) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return FrontMatter{}, src
	}
	return meta, body
}
