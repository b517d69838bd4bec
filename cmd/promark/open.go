package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/promark/internal/parser"
	"github.com/dgallion1/promark/internal/pipeline"
)

var openName string

var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Load a file into the document",
	Long: `Load a file as the new document, like the upload button. Markdown and text
files are read as-is; .html, .docx and .pdf files are converted to markdown.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		cfg, err := loadConfig()
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			fatal("Failed to stat file", err)
		}
		if info.Size() > cfg.MaxUploadBytes {
			fatal("File too large", fmt.Errorf("%d bytes exceeds %d", info.Size(), cfg.MaxUploadBytes))
		}

		f, err := os.Open(path)
		if err != nil {
			fatal("Failed to open file", err)
		}
		defer f.Close()

		name := openName
		if name == "" {
			name = filepath.Base(path)
		}
		content, err := parser.Import(f, name, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext})
		if err != nil {
			fatal("Failed to import file", err)
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		defer ws.Close(cmd.Context())

		doc := pipeline.AcceptUpload(content, name)
		ws.state.Replace(doc.Content, doc.FileName)
		fmt.Printf("Opened %s (%d bytes).\n", doc.FileName, len(doc.Content))
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
	openCmd.Flags().StringVar(&openName, "name", "", "File name to give the document (default: the file's base name)")
}
