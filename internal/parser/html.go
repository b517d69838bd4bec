package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/promark/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser converts HTML pages, nesting body text under h1-h6. Page
// chrome (nav, header, footer) and scripts are dropped.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := newTreeBuilder()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.Data); level > 0 {
				b.heading(textContent(n), level)
				return
			}
			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "p", "li", "td", "blockquote", "pre":
				if t := textContent(n); t != "" {
					b.block(blockMarkdown(n.Data, t))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if body := findElement(doc, "body"); body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	title := baseTitle(filename)
	if t := findElement(doc, "title"); t != nil && textContent(t) != "" {
		title = textContent(t)
	}
	return b.tree(title), nil
}

// blockMarkdown wraps a block's text in the markdown for its tag.
func blockMarkdown(tag, text string) string {
	switch tag {
	case "li":
		return "- " + text
	case "blockquote":
		return "> " + strings.ReplaceAll(text, "\n", "\n> ")
	case "pre":
		return "```\n" + text + "\n```"
	}
	return text
}

// headingLevel maps h1-h6 to 1-6 and anything else to 0.
func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// findElement returns the first element named tag in document order.
func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}
