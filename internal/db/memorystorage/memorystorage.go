// Package memorystorage provides a purely in-memory storage backend: the
// jsondb dataset without the file snapshot. It backs tests and DSN-less
// development runs.
package memorystorage

import (
	"context"

	"github.com/readify-app/readify/internal/db/jsondb"
	"github.com/readify-app/readify/internal/db/storage"
)

// MemoryStorage is a jsondb with persistence disabled.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{},
		},
	}, nil
}

// Close is a no-op: there is nothing to snapshot.
func (theStorage *MemoryStorage) Close(ctx context.Context) error {
	return nil
}

var _ storage.Storage = (*MemoryStorage)(nil)
