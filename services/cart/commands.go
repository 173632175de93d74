package cart

import (
	"context"
	"fmt"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/services/cartevents"
	"github.com/MarcGrol/shopfront/services/catalog"
	"github.com/MarcGrol/shopfront/services/session"
)

// onSessionTransition is the only way the service changes state. It is
// invoked by the session observer, including for the initial resolution
// at startup.
func (s *service) onSessionTransition(c context.Context, t session.Transition) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if t.Current != nil {
		s.becomeAuthenticated(c, *t.Current)
	} else {
		s.becomeAnonymous(c)
	}
}

// becomeAuthenticated merges the device-local cart into the shopper's
// server-side cart and adopts the merged result. Local lines win: an
// existing server line for the same product gets the local quantity.
// Merging happens at most once per sign-in.
func (s *service) becomeAuthenticated(c context.Context, identity session.Identity) {
	if s.state == cartStateAuthenticated && s.shopperUID == identity.UID {
		return
	}

	localCart := s.local.Load(c)

	mergedLineCount := 0
	for _, line := range localCart.Lines {
		err := s.remote.UpsertLine(c, identity.UID, line.ProductUID, line.Quantity, line.Product)
		if err != nil {
			s.logger.Log(c, identity.UID, mylog.SeverityWarn,
				"Error merging cart line %s for shopper %s: %s", line.ProductUID, identity.UID, err)
			s.publishRemoteWriteFailed(c, identity.UID, line.ProductUID, "merge", err)
			continue
		}
		mergedLineCount++
	}

	serverCart, err := s.remote.Load(c, identity.UID)
	if err != nil {
		// Degraded: stay authenticated, serve the device-local cart until
		// a later refresh succeeds
		s.logger.Log(c, identity.UID, mylog.SeverityWarn,
			"Error loading server cart for shopper %s, falling back to local copy: %s", identity.UID, err)
		serverCart = localCart
	}

	s.state = cartStateAuthenticated
	s.shopperUID = identity.UID
	s.cart = serverCart

	s.logger.Log(c, identity.UID, mylog.SeverityInfo, "Cart is now %s for shopper %s (%d lines)",
		s.state, identity.UID, len(s.cart.Lines))

	err = s.local.Save(c, s.cart)
	if err != nil {
		s.logger.Log(c, identity.UID, mylog.SeverityWarn, "Error mirroring cart locally: %s", err)
	}

	if mergedLineCount > 0 {
		err = s.publisher.Publish(c, cartevents.TopicName, cartevents.CartMerged{
			ShopperUID: identity.UID,
			LineCount:  mergedLineCount,
		})
		if err != nil {
			s.logger.Log(c, identity.UID, mylog.SeverityWarn, "Error publishing cart-merged event: %s", err)
		}
	}
}

// becomeAnonymous adopts whatever the device-local copy holds. After a
// sign-out that is the mirror of the last known server cart; the server
// cart itself is left untouched.
func (s *service) becomeAnonymous(c context.Context) {
	s.state = cartStateAnonymous
	s.shopperUID = ""
	s.cart = s.local.Load(c)

	s.logger.Log(c, "", mylog.SeverityInfo, "Cart is now %s (%d lines)", s.state, len(s.cart.Lines))
}

func (s *service) currentCart(c context.Context) Cart {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.cart.clone()
}

// addToCart adds the given quantity of a product. If a line for the
// product already exists its quantity is increased, so the cart keeps at
// most one line per product.
func (s *service) addToCart(c context.Context, product catalog.Product, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, myerrors.NewInvalidInputErrorf("quantity must be positive, got %d", quantity)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureInitialized(c)

	idx, found := s.cart.findLine(product.UID)
	if found {
		s.cart.Lines[idx].Quantity += quantity
		s.cart.Lines[idx].Product = product
	} else {
		s.cart.Lines = append(s.cart.Lines, CartLine{
			UID:        s.uuider.Create(),
			ProductUID: product.UID,
			Quantity:   quantity,
			Product:    product,
		})
		idx = len(s.cart.Lines) - 1
	}
	newQuantity := s.cart.Lines[idx].Quantity

	err := s.persistLocally(c)
	if err != nil {
		return Cart{}, err
	}

	if s.state == cartStateAuthenticated {
		shopperUID := s.shopperUID
		s.writeThroughAsync(c, "upsert", product.UID, func(ac context.Context) error {
			return s.remote.UpsertLine(ac, shopperUID, product.UID, newQuantity, product)
		})
	}

	return s.cart.clone(), nil
}

// removeFromCart removes the line for the given product. Removing an
// absent product is a no-op.
func (s *service) removeFromCart(c context.Context, productUID string) (Cart, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureInitialized(c)

	idx, found := s.cart.findLine(productUID)
	if !found {
		return s.cart.clone(), nil
	}

	s.cart.Lines = append(s.cart.Lines[:idx], s.cart.Lines[idx+1:]...)

	err := s.persistLocally(c)
	if err != nil {
		return Cart{}, err
	}

	if s.state == cartStateAuthenticated {
		shopperUID := s.shopperUID
		s.writeThroughAsync(c, "remove", productUID, func(ac context.Context) error {
			return s.remote.RemoveLine(ac, shopperUID, productUID)
		})
	}

	return s.cart.clone(), nil
}

// updateQuantity sets the quantity of an existing line. A quantity of
// zero or less removes the line. Updating an absent product is a no-op.
func (s *service) updateQuantity(c context.Context, productUID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return s.removeFromCart(c, productUID)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureInitialized(c)

	idx, found := s.cart.findLine(productUID)
	if !found {
		return s.cart.clone(), nil
	}

	s.cart.Lines[idx].Quantity = quantity

	err := s.persistLocally(c)
	if err != nil {
		return Cart{}, err
	}

	if s.state == cartStateAuthenticated {
		shopperUID := s.shopperUID
		s.writeThroughAsync(c, "updateQuantity", productUID, func(ac context.Context) error {
			return s.remote.UpdateQuantity(ac, shopperUID, productUID, quantity)
		})
	}

	return s.cart.clone(), nil
}

// clearCart empties the cart. It is idempotent: clearing an already
// empty cart succeeds without side effects.
func (s *service) clearCart(c context.Context) (Cart, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureInitialized(c)

	if s.cart.IsEmpty() {
		return Cart{}, nil
	}

	s.cart = Cart{}

	err := s.local.Clear(c)
	if err != nil {
		return Cart{}, err
	}

	if s.state == cartStateAuthenticated {
		shopperUID := s.shopperUID
		s.writeThroughAsync(c, "clear", "", func(ac context.Context) error {
			return s.remote.ClearAll(ac, shopperUID)
		})
	}

	return Cart{}, nil
}

// refresh re-reads the authoritative store: the server-side cart for a
// signed-in shopper, the device-local copy otherwise.
func (s *service) refresh(c context.Context) (Cart, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.ensureInitialized(c)

	if s.state != cartStateAuthenticated {
		s.cart = s.local.Load(c)
		return s.cart.clone(), nil
	}

	serverCart, err := s.remote.Load(c, s.shopperUID)
	if err != nil {
		// Keep serving what we have
		return s.cart.clone(), err
	}

	s.cart = serverCart
	err = s.local.Save(c, s.cart)
	if err != nil {
		s.logger.Log(c, s.shopperUID, mylog.SeverityWarn, "Error mirroring cart locally: %s", err)
	}

	return s.cart.clone(), nil
}

// ensureInitialized adopts the current session state when no transition
// has been delivered yet. Must be called with the mutex held.
func (s *service) ensureInitialized(c context.Context) {
	if s.state != cartStateUninitialized {
		return
	}

	identity, authenticated := s.sessions.Current(c)
	if authenticated {
		s.becomeAuthenticated(c, identity)
	} else {
		s.becomeAnonymous(c)
	}
}

// persistLocally saves the in-memory cart to the device-local copy.
// Must be called with the mutex held.
func (s *service) persistLocally(c context.Context) error {
	return s.local.Save(c, s.cart)
}

// writeThroughAsync applies a mutation to the server-side cart on a
// background goroutine. A failure is logged and published, never rolled
// back: the local cart remains the accepted truth.
func (s *service) writeThroughAsync(c context.Context, operation string, productUID string, fn func(c context.Context) error) {
	shopperUID := s.shopperUID

	// The request context dies with the HTTP request, the write should not
	ac := context.WithoutCancel(c)

	s.remoteWrites.Add(1)
	go func() {
		defer s.remoteWrites.Done()

		err := fn(ac)
		if err != nil {
			s.logger.Log(ac, shopperUID, mylog.SeverityError,
				"Error writing %s of product %s to server cart: %s", operation, productUID, err)
			s.publishRemoteWriteFailed(ac, shopperUID, productUID, operation, err)
		}
	}()
}

func (s *service) publishRemoteWriteFailed(c context.Context, shopperUID string, productUID string, operation string, cause error) {
	err := s.publisher.Publish(c, cartevents.TopicName, cartevents.RemoteWriteFailed{
		ShopperUID: shopperUID,
		ProductUID: productUID,
		Operation:  operation,
		Reason:     fmt.Sprintf("%s", cause),
	})
	if err != nil {
		s.logger.Log(c, shopperUID, mylog.SeverityWarn, "Error publishing remote-write-failed event: %s", err)
	}
}
