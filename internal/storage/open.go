package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/starford/moodlog/internal/apperr"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Options selects and configures a Provider.
type Options struct {
	Driver string
	Path   string // directory for file, database file for sqlite
	DSN    string // connection string for postgres
}

// Open builds the Provider named by opts.Driver.
func Open(ctx context.Context, opts Options) (Provider, error) {
	switch opts.Driver {
	case DriverFile:
		if err := os.MkdirAll(opts.Path, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create data dir: %w", err)
		}
		return NewFS(opts.Path)
	case DriverSQLite:
		return OpenSQLite(opts.Path)
	case DriverPostgres:
		return OpenPostgres(ctx, opts.DSN)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("storage: %w: %q", apperr.ErrUnsupportedDriver, opts.Driver)
	}
}
