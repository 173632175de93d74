package cart

import (
	"context"
	"encoding/json"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
)

const (
	cartStorageKey = "shopping_cart"
)

// localCartCache persists the cart on device-local storage. It never fails
// a read: a missing or corrupt payload yields an empty cart.
type localCartCache struct {
	kvStore mykvstore.KVStore
	logger  mylog.Logger
}

func newLocalCartCache(kvStore mykvstore.KVStore, logger mylog.Logger) *localCartCache {
	return &localCartCache{
		kvStore: kvStore,
		logger:  logger,
	}
}

func (lc *localCartCache) Load(c context.Context) Cart {
	payload, found, err := lc.kvStore.Get(c, cartStorageKey)
	if err != nil {
		lc.logger.Log(c, "", mylog.SeverityWarn, "Error reading local cart, starting empty: %s", err)
		return Cart{}
	}
	if !found {
		return Cart{}
	}

	cart := Cart{}
	err = json.Unmarshal([]byte(payload), &cart)
	if err != nil {
		// Corrupt payload: discard it, an empty cart beats a broken one
		lc.logger.Log(c, "", mylog.SeverityWarn, "Discarding corrupt local cart: %s", err)
		_ = lc.kvStore.Remove(c, cartStorageKey)
		return Cart{}
	}

	return cart
}

func (lc *localCartCache) Save(c context.Context, cart Cart) error {
	payload, err := json.Marshal(cart)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	err = lc.kvStore.Set(c, cartStorageKey, string(payload))
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}

func (lc *localCartCache) Clear(c context.Context) error {
	err := lc.kvStore.Remove(c, cartStorageKey)
	if err != nil {
		return myerrors.NewInternalError(err)
	}

	return nil
}
