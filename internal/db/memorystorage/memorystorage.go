// Package memorystorage implements the storage interface entirely in memory.
// It reuses the jsondb cache without the backing file and is the default
// backend when neither a database DSN nor a storage file is configured.
package memorystorage

import (
	"context"

	"github.com/avoronkov42/backoffice/internal/db/jsondb"
)

type MemoryStorage struct {
	*jsondb.JSONDB
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.NewCache(),
		},
	}, nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
