package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/promark/internal/render"
)

var previewOut string

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the document as HTML",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		defer ws.Close(cmd.Context())

		out, err := render.NewRenderer().HTML(ws.state.Document().Content)
		if err != nil {
			fatal("Failed to render", err)
		}
		if previewOut == "" {
			fmt.Print(out)
			return
		}
		if err := os.WriteFile(previewOut, []byte(out), 0o644); err != nil {
			fatal("Failed to write preview", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringVarP(&previewOut, "out", "o", "", "Write HTML to this file instead of stdout")
}
