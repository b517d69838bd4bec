package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var editContent string

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Replace the document content",
	Long: `Replace the document content, keeping its file name. The new text comes
from --content, or from stdin when --content is not given.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		content := editContent
		if !cmd.Flags().Changed("content") {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Failed to read stdin", err)
			}
			content = string(data)
		}

		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		defer ws.Close(cmd.Context())

		ws.state.SetContent(content)
		slog.Debug("content set", "bytes", len(content))
		fmt.Printf("Updated %s.\n", ws.state.Document().FileName)
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editContent, "content", "c", "", "New content")
}
