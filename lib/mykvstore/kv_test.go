package mykvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKVStore(t *testing.T) {
	c := context.TODO()

	stores := map[string]func(t *testing.T) (KVStore, func()){
		"in-memory": func(t *testing.T) (KVStore, func()) {
			store, cleanup, err := newInMemoryStore(c)
			assert.NoError(t, err)
			return store, cleanup
		},
		"sqlite": func(t *testing.T) (KVStore, func()) {
			store, cleanup, err := newSqliteStore(c, filepath.Join(t.TempDir(), "local.db"))
			assert.NoError(t, err)
			return store, cleanup
		},
	}

	for name, create := range stores {
		t.Run(name, func(t *testing.T) {
			store, cleanup := create(t)
			defer cleanup()

			t.Run("Get not found", func(t *testing.T) {
				_, found, err := store.Get(c, "cart")
				assert.NoError(t, err)
				assert.False(t, found)
			})

			t.Run("Set and get", func(t *testing.T) {
				err := store.Set(c, "cart", `{"lines":[]}`)
				assert.NoError(t, err)

				value, found, err := store.Get(c, "cart")
				assert.NoError(t, err)
				assert.True(t, found)
				assert.Equal(t, `{"lines":[]}`, value)
			})

			t.Run("Set overwrites", func(t *testing.T) {
				err := store.Set(c, "cart", "other")
				assert.NoError(t, err)

				value, _, err := store.Get(c, "cart")
				assert.NoError(t, err)
				assert.Equal(t, "other", value)
			})

			t.Run("Remove", func(t *testing.T) {
				err := store.Remove(c, "cart")
				assert.NoError(t, err)

				_, found, err := store.Get(c, "cart")
				assert.NoError(t, err)
				assert.False(t, found)

				// removing again is a no-op
				err = store.Remove(c, "cart")
				assert.NoError(t, err)
			})
		})
	}
}
