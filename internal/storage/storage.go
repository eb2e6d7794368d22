// Package storage provides the key/value persistence ports used by the state
// store: in-memory, one file per key, and SQLite.
package storage

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/pkg/constants"
)

// ErrNotFound is returned by Load when a key has never been saved.
var ErrNotFound = eris.New("document not found")

// Store is a persistence port that owns resources.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Open returns the store for driver. path is the directory of the file store
// and the database file of the SQLite store.
func Open(ctx context.Context, logger *zap.Logger, driver, path string) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("opening storage",
		zap.String("op", "storage.Open"),
		zap.String("driver", driver),
		zap.String("path", path),
	)

	switch driver {
	case "", constants.StorageDriverMemory:
		return NewMemory(), nil
	case constants.StorageDriverFile:
		return NewFile(path)
	case constants.StorageDriverSQLite:
		return OpenSQLite(ctx, logger, path)
	default:
		return nil, eris.Errorf("storage: unknown driver %q", driver)
	}
}
