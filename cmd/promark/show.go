package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	showJSON bool
	showName bool
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the document",
	Long:  `Print the stored document content. Use --name for the file name only or --json for both.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		defer ws.Close(cmd.Context())

		doc := ws.state.Document()
		switch {
		case showJSON:
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(doc); err != nil {
				fatal("Failed to encode JSON", err)
			}
		case showName:
			fmt.Println(doc.FileName)
		default:
			fmt.Print(doc.Content)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output content and file name as JSON")
	showCmd.Flags().BoolVar(&showName, "name", false, "Print only the file name")
}
