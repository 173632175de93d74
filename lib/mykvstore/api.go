package mykvstore

import (
	"context"
	"os"
)

// KVStore is string-keyed device-local storage: synchronous, no network I/O.
//
//go:generate mockgen -source=api.go -package mykvstore -destination kvstore_mock.go KVStore
type KVStore interface {
	Get(c context.Context, key string) (string, bool, error)
	Set(c context.Context, key string, value string) error
	Remove(c context.Context, key string) error
}

func New(c context.Context) (KVStore, func(), error) {
	path := os.Getenv("LOCAL_DB_PATH")
	if path != "" {
		return newSqliteStore(c, path)
	}

	return newInMemoryStore(c)
}

func NewInMemoryStore(c context.Context) (KVStore, func(), error) {
	return newInMemoryStore(c)
}
