package parser

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/promark/internal/doctree"
)

// Parser converts a rich document into a DocTree.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.DocTree, error)
}

// Options configure the converters.
type Options struct {
	PDFFallbackPdftotext bool
}

// ConvertibleExtensions lists the rich formats Import turns into markdown.
var ConvertibleExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the converter for a rich-format filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsConvertible reports whether Import converts filename instead of decoding it as text.
func IsConvertible(filename string) bool {
	return ConvertibleExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Import reads an uploaded file as markdown text. Rich formats are converted
// through their DocTree; everything else is decoded as text.
func Import(r io.Reader, filename string, opts Options) (string, error) {
	if !IsConvertible(filename) {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", filename, err)
		}
		return DecodeText(data), nil
	}

	p, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	tree, err := p.Parse(r, filename)
	if err != nil {
		return "", err
	}
	return tree.Markdown(), nil
}
