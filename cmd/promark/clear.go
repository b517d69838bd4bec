package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/promark/internal/document"
)

var clearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the document",
	Long:  `Reset the document to an empty Untitled.md after confirmation. --yes skips the prompt.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		defer ws.Close(cmd.Context())

		confirm := document.Always
		if !clearYes {
			confirm = promptConfirmer(os.Stdin, os.Stderr)
		}
		if !ws.state.Clear(cmd.Context(), confirm) {
			fmt.Println("Nothing cleared.")
			return
		}
		fmt.Println("Document cleared.")
	},
}

// promptConfirmer asks on out and accepts y or yes from in.
func promptConfirmer(in io.Reader, out io.Writer) document.Confirmer {
	return document.ConfirmFunc(func(_ context.Context, prompt string) bool {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Clear without asking")
}
