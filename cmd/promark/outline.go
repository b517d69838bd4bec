package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/promark/internal/doctree"
	"github.com/dgallion1/promark/internal/document"
	"github.com/dgallion1/promark/internal/render"
	"github.com/dgallion1/promark/internal/store"
)

var (
	outlineJSON  bool
	outlineWatch bool
)

var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Print the document's heading outline",
	Long: `Print the heading outline of the document. With --watch, keep running and
print it again whenever the stored document changes, e.g. while the server is
being edited in a browser.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		st, err := store.Open(ctx, cfg)
		if err != nil {
			fatal("Failed to open store", err)
		}
		defer st.Close()

		outliner := render.NewOutliner()
		show := func() {
			content, err := storedContent(ctx, st)
			if err != nil {
				slog.Warn("load document", "error", err)
				return
			}
			if err := writeOutline(os.Stdout, outliner.Outline(content), outlineJSON); err != nil {
				fatal("Failed to print outline", err)
			}
		}

		show()
		if !outlineWatch {
			return
		}
		if err := watchStore(ctx, cfg.StorePath, 100*time.Millisecond, func() {
			if !outlineJSON {
				fmt.Println("---")
			}
			show()
		}); err != nil {
			fatal("Failed to watch store", err)
		}
	},
}

// storedContent returns the persisted content, or the default document when
// nothing has been saved yet.
func storedContent(ctx context.Context, st store.Store) (string, error) {
	rec, found, err := st.Load(ctx)
	if err != nil {
		return "", err
	}
	if !found {
		return document.DefaultContent, nil
	}
	return rec.Content, nil
}

// writeOutline prints tree as an indented list, or as JSON.
func writeOutline(w io.Writer, tree *doctree.DocTree, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(tree)
	}
	var walk func(nodes []*doctree.DocNode, depth int) error
	walk = func(nodes []*doctree.DocNode, depth int) error {
		for _, n := range nodes {
			if _, err := fmt.Fprintf(w, "%s- %s (#%s)\n", strings.Repeat("  ", depth), n.Title, n.ID); err != nil {
				return err
			}
			if err := walk(n.Children, depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(tree.Children, 0)
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().BoolVar(&outlineJSON, "json", false, "Output the outline tree as JSON")
	outlineCmd.Flags().BoolVarP(&outlineWatch, "watch", "w", false, "Reprint when the stored document changes")
}
