package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dgallion1/promark/internal/config"
	"github.com/dgallion1/promark/internal/document"
	"github.com/dgallion1/promark/internal/store"
)

var (
	verbose     bool
	storePath   string
	storeDriver string
)

var rootCmd = &cobra.Command{
	Use:   "promark",
	Short: "Edit the promark workspace document from the terminal",
	Long: `promark works on the same persisted document as the promark server.
Every command loads the stored document, applies its change and writes it back.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Store path (default from PROMARK_STORE_PATH)")
	rootCmd.PersistentFlags().StringVar(&storeDriver, "driver", "", "Store driver: file or sqlite (default from PROMARK_STORE_DRIVER)")
}

// workspace is an opened store plus the document state over it.
type workspace struct {
	cfg   config.Config
	store store.Store
	state *document.State
}

// loadConfig applies the persistent flags over the environment.
func loadConfig() (config.Config, error) {
	cfg := config.Load()
	if storeDriver != "" {
		cfg.StoreDriver = storeDriver
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// openWorkspace loads the stored document. Writes are not debounced: each
// command makes one change and then closes.
func openWorkspace(ctx context.Context) (*workspace, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	state := document.Open(ctx, st, slog.Default(), document.Options{})
	return &workspace{cfg: cfg, store: st, state: state}, nil
}

// Close writes any change and releases the store.
func (w *workspace) Close(ctx context.Context) {
	w.state.Close(ctx)
	if err := w.store.Close(); err != nil {
		slog.Warn("close store", "error", err)
	}
}
