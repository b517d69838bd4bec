package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dgallion1/promark/internal/dropzone"
	"github.com/dgallion1/promark/internal/pipeline"
)

var dropCmd = &cobra.Command{
	Use:   "drop [path...]",
	Short: "Drop files onto the editor",
	Long: `Drop files onto the editor the way a browser drag does. Only the first
file counts, and only if it ends in ` + strings.Join(pipeline.DropExtensions, ", ") + `.
Anything else is ignored and the document is left alone.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			fatal("Failed to open workspace", err)
		}
		defer ws.Close(cmd.Context())

		cfg := ws.cfg
		cfg.WorkerCount = 1
		orch := pipeline.NewOrchestrator(cfg, ws.state, slog.Default(), nil)
		orch.Start(cmd.Context())
		defer orch.Stop()

		files := make([]pipeline.File, len(args))
		for i, path := range args {
			files[i] = &pipeline.OSFile{Path: path}
		}

		dz := dropzone.NewController(dropzone.NewSurface("editor"), orch, slog.Default())
		ev := dropzone.Event{Target: dz.Surface().Root(), Files: files}
		dz.DragEnter(ev)
		job, ok := dz.Drop(ev)
		if !ok {
			fmt.Printf("Ignored %s.\n", files[0].Name())
			return
		}

		select {
		case <-job.Done():
		case <-cmd.Context().Done():
			fatal("Drop interrupted", cmd.Context().Err())
		}

		snap := job.Snapshot()
		if snap.Status != pipeline.StatusApplied {
			ws.Close(cmd.Context())
			fatal("Failed to read "+snap.FileName, errors.New(snap.Error))
		}
		fmt.Printf("Loaded %s.\n", snap.FileName)
	},
}

func init() {
	rootCmd.AddCommand(dropCmd)
}
