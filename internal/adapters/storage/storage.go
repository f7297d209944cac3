// Package storage provides the BlobStore backends the state gateway writes
// to: an in-process map, a directory of files and an SQLite table.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Store is a BlobStore that can report its health and release resources.
type Store interface {
	ports.BlobStore
	ports.HealthChecker
	Close() error
}

// Open constructs the backend named by driver. For the file driver path is
// a directory; for sqlite it is the database file, or ":memory:".
func Open(driver, path string, logger *slog.Logger) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFile:
		return NewFileStore(path, logger)
	case DriverSQLite:
		if path != ":memory:" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "state.db")
		}

		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
				return nil, fmt.Errorf("create sqlite directory: %w", err)
			}
		}

		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
