package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/promark/internal/document"
	"github.com/dgallion1/promark/internal/parser"
)

// UploadFileName names an uploaded document that arrives without a name.
const UploadFileName = "Document.md"

// DropExtensions are the suffixes a dropped file may carry. Matching is case-sensitive.
var DropExtensions = []string{".md", ".txt", ".markdown"}

// ErrTooLarge is returned when a file is bigger than the upload limit.
var ErrTooLarge = errors.New("file exceeds upload limit")

// File is a handle to dropped or uploaded bytes. Open may be called more than once.
type File interface {
	Name() string
	Open() (io.ReadCloser, error)
}

// BytesFile is a File held in memory.
type BytesFile struct {
	FileName string
	Data     []byte
}

func (f *BytesFile) Name() string { return f.FileName }

func (f *BytesFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.Data)), nil
}

// OSFile is a File on local disk, named by its base name.
type OSFile struct {
	Path string
}

func (f *OSFile) Name() string { return filepath.Base(f.Path) }

func (f *OSFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Droppable reports whether name ends in one of DropExtensions.
func Droppable(name string) bool {
	for _, ext := range DropExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// AcceptUpload turns an already-read upload into a document. Any name is
// accepted; an empty one becomes UploadFileName.
func AcceptUpload(content, name string) document.Document {
	if name == "" {
		name = UploadFileName
	}
	return document.Document{Content: content, FileName: name}
}

// ReadDrop reads f as text. The document is named exactly f.Name().
// maxBytes <= 0 disables the size check.
func ReadDrop(ctx context.Context, f File, maxBytes int64) (document.Document, error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, err
	}

	rc, err := f.Open()
	if err != nil {
		return document.Document{}, fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if maxBytes > 0 {
		r = io.LimitReader(rc, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return document.Document{}, fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return document.Document{}, fmt.Errorf("read %s: %w", f.Name(), ErrTooLarge)
	}

	return document.Document{Content: parser.DecodeText(data), FileName: f.Name()}, nil
}
