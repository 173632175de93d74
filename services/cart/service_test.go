package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/cartevents"
	"github.com/MarcGrol/shopfront/services/catalog"
	"github.com/MarcGrol/shopfront/services/session"
)

var (
	shopper = session.Identity{
		UID:         "shopper_marc",
		Email:       "marc@example.com",
		DisplayName: "Marc",
	}
	productA = catalog.Product{UID: "product_a", Name: "Product A", PriceInCents: 2900, Currency: "EUR"}
	productB = catalog.Product{UID: "product_b", Name: "Product B", PriceInCents: 5900, Currency: "EUR"}
)

func TestAddToCartAccumulatesQuantity(t *testing.T) {
	c, s, _, _, _ := setup(t, anyEvents)

	cart, err := s.addToCart(c, productA, 1)
	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	cart, err = s.addToCart(c, productA, 2)
	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, "product_a", cart.Lines[0].ProductUID)
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	c, s, _, _, _ := setup(t, anyEvents)

	_, err := s.addToCart(c, productA, 0)
	assert.Error(t, err)

	_, err = s.addToCart(c, productA, -3)
	assert.Error(t, err)

	assert.True(t, s.currentCart(c).IsEmpty())
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	c, s, _, _, _ := setup(t, anyEvents)

	_, err := s.addToCart(c, productA, 2)
	assert.NoError(t, err)

	cart, err := s.updateQuantity(c, "product_a", 0)
	assert.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	_, err = s.addToCart(c, productA, 2)
	assert.NoError(t, err)

	cart, err = s.updateQuantity(c, "product_a", -5)
	assert.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestMutatingMissingLineIsNoOp(t *testing.T) {
	c, s, _, _, _ := setup(t, anyEvents)

	_, err := s.addToCart(c, productA, 1)
	assert.NoError(t, err)

	cart, err := s.removeFromCart(c, "product_unknown")
	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	cart, err = s.updateQuantity(c, "product_unknown", 4)
	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
}

func TestCartTotals(t *testing.T) {
	c, s, _, _, _ := setup(t, anyEvents)

	_, err := s.addToCart(c, productA, 2)
	assert.NoError(t, err)
	cart, err := s.addToCart(c, productB, 1)
	assert.NoError(t, err)

	assert.Equal(t, 3, cart.TotalItemCount())
	assert.Equal(t, int64(2*2900+5900), cart.TotalAmountInCents())
}

func TestSignInMergesLocalCartIntoRemote(t *testing.T) {
	c, s, sessions, remote, publisher := setup(t, noEvents)

	// Remote already has product A with quantity 5 and product B with quantity 1
	assert.NoError(t, remote.UpsertLine(c, shopper.UID, "product_a", 5, productA))
	assert.NoError(t, remote.UpsertLine(c, shopper.UID, "product_b", 1, productB))

	// Local anonymous cart has product A with quantity 2
	_, err := s.addToCart(c, productA, 2)
	assert.NoError(t, err)

	publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.CartMerged{
		ShopperUID: shopper.UID,
		LineCount:  1,
	}).Return(nil)

	sessions.signIn(c, shopper)

	// Local quantity wins over the remote one, remote-only lines survive
	cart := s.currentCart(c)
	assert.Len(t, cart.Lines, 2)
	assert.Equal(t, 2, quantityOf(t, cart, "product_a"))
	assert.Equal(t, 1, quantityOf(t, cart, "product_b"))

	remoteCart, err := remote.Load(c, shopper.UID)
	assert.NoError(t, err)
	assert.Equal(t, 2, quantityOf(t, remoteCart, "product_a"))
}

func TestSignInWithEmptyLocalCartDoesNotPublishMerge(t *testing.T) {
	c, s, sessions, remote, _ := setup(t, noEvents)

	assert.NoError(t, remote.UpsertLine(c, shopper.UID, "product_b", 1, productB))

	sessions.signIn(c, shopper)

	cart := s.currentCart(c)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, quantityOf(t, cart, "product_b"))
}

func TestSignOutKeepsMirrorAndLeavesRemoteUntouched(t *testing.T) {
	c, s, sessions, remote, _ := setup(t, anyEvents)

	sessions.signIn(c, shopper)

	_, err := s.addToCart(c, productA, 2)
	assert.NoError(t, err)
	s.waitForRemoteWrites()

	sessions.signOut(c)

	// The shopper keeps seeing the mirrored cart
	cart := s.currentCart(c)
	assert.Equal(t, 2, quantityOf(t, cart, "product_a"))

	// Anonymous mutations no longer reach the server-side cart
	_, err = s.updateQuantity(c, "product_a", 7)
	assert.NoError(t, err)
	s.waitForRemoteWrites()

	remoteCart, err := remote.Load(c, shopper.UID)
	assert.NoError(t, err)
	assert.Equal(t, 2, quantityOf(t, remoteCart, "product_a"))
}

func TestClearCartIsIdempotent(t *testing.T) {
	c, s, _, _, _ := setup(t, anyEvents)

	_, err := s.addToCart(c, productA, 1)
	assert.NoError(t, err)

	cart, err := s.clearCart(c)
	assert.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	cart, err = s.clearCart(c)
	assert.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCorruptLocalPayloadYieldsEmptyCart(t *testing.T) {
	c, s, sessions, _, _ := setup(t, anyEvents)

	assert.NoError(t, s.local.kvStore.Set(c, cartStorageKey, "{not valid json"))

	sessions.resolveAnonymous(c)

	assert.True(t, s.currentCart(c).IsEmpty())

	// The broken payload has been discarded
	_, found, err := s.local.kvStore.Get(c, cartStorageKey)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestFailedRemoteWriteIsPublishedNotRolledBack(t *testing.T) {
	c, s, sessions, remote, publisher := setup(t, noEvents)

	sessions.signIn(c, shopper)
	remote.SimulateUnavailable(fmt.Errorf("connection refused"))

	publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.RemoteWriteFailed{
		ShopperUID: shopper.UID,
		ProductUID: "product_a",
		Operation:  "upsert",
		Reason:     "connection refused",
	}).Return(nil)

	cart, err := s.addToCart(c, productA, 1)
	assert.NoError(t, err)
	assert.Len(t, cart.Lines, 1)

	s.waitForRemoteWrites()

	// The local cart keeps the line despite the failed write-through
	assert.Equal(t, 1, quantityOf(t, s.currentCart(c), "product_a"))
}

func TestSignInWithUnavailableRemoteFallsBackToLocal(t *testing.T) {
	c, s, sessions, remote, publisher := setup(t, noEvents)

	_, err := s.addToCart(c, productA, 2)
	assert.NoError(t, err)

	remote.SimulateUnavailable(fmt.Errorf("connection refused"))
	publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, gomock.Any()).Return(nil).AnyTimes()

	sessions.signIn(c, shopper)

	// Still authenticated, serving the device-local cart
	assert.Equal(t, 2, quantityOf(t, s.currentCart(c), "product_a"))

	// Once the backend is back, a refresh re-reads the server-side cart
	remote.SimulateUnavailable(nil)
	assert.NoError(t, remote.UpsertLine(c, shopper.UID, "product_b", 3, productB))

	cart, err := s.refresh(c)
	assert.NoError(t, err)
	assert.Equal(t, 3, quantityOf(t, cart, "product_b"))
}

func TestMergeHappensOncePerSignIn(t *testing.T) {
	c, s, sessions, _, publisher := setup(t, noEvents)

	_, err := s.addToCart(c, productA, 2)
	assert.NoError(t, err)

	publisher.EXPECT().Publish(gomock.Any(), cartevents.TopicName, cartevents.CartMerged{
		ShopperUID: shopper.UID,
		LineCount:  1,
	}).Return(nil).Times(1)

	sessions.signIn(c, shopper)
	// A repeated transition for the same shopper must not merge again
	sessions.signIn(c, shopper)
}

type eventMode int

const (
	anyEvents eventMode = iota
	noEvents
)

func setup(t *testing.T, mode eventMode) (context.Context, *service, *fakeSessionObserver, *inMemoryCartStore, *mypublisher.MockPublisher) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	kvStore, kvCleanup, err := mykvstore.NewInMemoryStore(c)
	assert.NoError(t, err)
	t.Cleanup(kvCleanup)

	sessions := &fakeSessionObserver{}
	remote := NewInMemoryCartStore()
	publisher := mypublisher.NewMockPublisher(ctrl)
	if mode == anyEvents {
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	}
	logger := mylog.New("carttest")

	s := newService(sessions, newLocalCartCache(kvStore, logger), remote, publisher, myuuid.RealUUIDer{}, logger)
	sessions.Subscribe(s.onSessionTransition)
	sessions.resolveAnonymous(c)

	return c, s, sessions, remote, publisher
}

func quantityOf(t *testing.T, cart Cart, productUID string) int {
	t.Helper()
	idx, found := cart.findLine(productUID)
	if !found {
		t.Fatalf("cart has no line for product %s", productUID)
	}
	return cart.Lines[idx].Quantity
}

// fakeSessionObserver delivers transitions synchronously, like the real
// session service does.
type fakeSessionObserver struct {
	identity    *session.Identity
	subscribers []func(c context.Context, t session.Transition)
}

func (o *fakeSessionObserver) Current(c context.Context) (session.Identity, bool) {
	if o.identity == nil {
		return session.Identity{}, false
	}
	return *o.identity, true
}

func (o *fakeSessionObserver) Subscribe(fn func(c context.Context, t session.Transition)) func() {
	o.subscribers = append(o.subscribers, fn)
	return func() {}
}

func (o *fakeSessionObserver) deliver(c context.Context, t session.Transition) {
	for _, fn := range o.subscribers {
		fn(c, t)
	}
}

func (o *fakeSessionObserver) resolveAnonymous(c context.Context) {
	o.identity = nil
	o.deliver(c, session.Transition{})
}

func (o *fakeSessionObserver) signIn(c context.Context, identity session.Identity) {
	previous := o.identity
	o.identity = &identity
	o.deliver(c, session.Transition{Previous: previous, Current: &identity})
}

func (o *fakeSessionObserver) signOut(c context.Context) {
	previous := o.identity
	o.identity = nil
	o.deliver(c, session.Transition{Previous: previous, Current: nil})
}
