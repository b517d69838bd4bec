package document

import "context"

const (
	// DefaultFileName names a document that did not come from a file.
	DefaultFileName = "Untitled.md"

	// ClearPrompt is shown to the user before the document is wiped.
	ClearPrompt = "Are you sure you want to clear the editor? This cannot be undone."
)

// DefaultContent is the built-in document shown on first start.
const DefaultContent = `# Welcome to Promark

Write **markdown** on the left and see it rendered on the right.

## Getting started

- Type in the editor; changes are saved automatically.
- Drop a ` + "`.md`" + `, ` + "`.markdown`" + ` or ` + "`.txt`" + ` file anywhere on the window to open it.
- Use the outline to jump between headings.

## Formatting

| Syntax | Result |
| --- | --- |
| ` + "`**bold**`" + ` | **bold** |
| ` + "`*italic*`" + ` | *italic* |
| ` + "`~~strike~~`" + ` | ~~strike~~ |

- [x] Tables, task lists and autolinks are supported
- [ ] Start writing
`

// Document is the unit of editable content.
type Document struct {
	Content  string `json:"content"`
	FileName string `json:"file_name"`
}

// Default returns the built-in document.
func Default() Document {
	return Document{Content: DefaultContent, FileName: DefaultFileName}
}

// Snapshot is a document together with the revision that produced it.
type Snapshot struct {
	Document
	Revision uint64 `json:"revision"`
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Always approves every prompt.
var Always Confirmer = ConfirmFunc(func(context.Context, string) bool { return true })

// Never declines every prompt.
var Never Confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
