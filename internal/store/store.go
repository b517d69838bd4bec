package store

import (
	"context"
	"fmt"

	"github.com/dgallion1/promark/internal/config"
)

// Record keys. Both must be present for a load to count as found.
const (
	ContentKey  = "promark-content"
	FileNameKey = "promark-filename"
)

// Record is the persisted (content, file name) pair.
type Record struct {
	Content  string
	FileName string
}

// Store persists the current document. Save replaces both records together;
// implementations never leave one record updated without the other.
type Store interface {
	Load(ctx context.Context) (Record, bool, error)
	Save(ctx context.Context, rec Record) error
	Close() error
}

// Open returns the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case config.DriverFile, "":
		return NewFileStore(cfg.StorePath), nil
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.StorePath)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}
