package checkout

import (
	"context"

	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/mystore"
	"github.com/MarcGrol/shopfront/lib/mytime"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/cart"
	"github.com/MarcGrol/shopfront/services/session"
)

// CartService is the slice of the cart reconciler that checkout needs.
type CartService interface {
	CurrentCart(c context.Context) cart.Cart
	ClearAfterCheckout(c context.Context) error
}

type service struct {
	sessions      session.Observer
	carts         CartService
	orderStore    OrderStore
	checkoutStore mystore.Store[CheckoutContext]
	payer         Payer
	publisher     mypublisher.Publisher
	nower         mytime.Nower
	uuider        myuuid.UUIDer
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(sessions session.Observer, carts CartService, orderStore OrderStore,
	checkoutStore mystore.Store[CheckoutContext], payer Payer, publisher mypublisher.Publisher,
	nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		sessions:      sessions,
		carts:         carts,
		orderStore:    orderStore,
		checkoutStore: checkoutStore,
		payer:         payer,
		publisher:     publisher,
		nower:         nower,
		uuider:        uuider,
		logger:        logger,
	}
}
