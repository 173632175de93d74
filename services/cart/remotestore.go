package cart

import (
	"context"

	"github.com/MarcGrol/shopfront/services/catalog"
)

// RemoteCartStore persists cart lines for an authenticated shopper.
// All operations are conflict-resolved on (shopperUID, productUID):
// concurrent upserts for the same pair never produce duplicate lines,
// the last write wins on quantity.
//
//go:generate mockgen -source=remotestore.go -package cart -destination remotestore_mock.go RemoteCartStore
type RemoteCartStore interface {
	// Load returns the shopper's cart. An empty cart means "no lines";
	// a backend failure is reported as an unavailable-error so that
	// callers can distinguish "no cart" from "could not check".
	Load(c context.Context, shopperUID string) (Cart, error)
	UpsertLine(c context.Context, shopperUID string, productUID string, quantity int, snapshot catalog.Product) error
	RemoveLine(c context.Context, shopperUID string, productUID string) error
	UpdateQuantity(c context.Context, shopperUID string, productUID string, quantity int) error
	ClearAll(c context.Context, shopperUID string) error
}
