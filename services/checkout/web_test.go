package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/mystore"
	"github.com/MarcGrol/shopfront/lib/mytime"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/cart"
	"github.com/MarcGrol/shopfront/services/catalog"
	"github.com/MarcGrol/shopfront/services/checkoutevents"
	"github.com/MarcGrol/shopfront/services/session"
)

var shopper = session.Identity{
	UID:         "shopper_marc",
	Email:       "marc@example.com",
	DisplayName: "Marc",
}

type fakeSessions struct {
	identity *session.Identity
}

func (f *fakeSessions) Current(c context.Context) (session.Identity, bool) {
	if f.identity == nil {
		return session.Identity{}, false
	}
	return *f.identity, true
}

func (f *fakeSessions) Subscribe(fn func(c context.Context, t session.Transition)) func() {
	return func() {}
}

type fakeCartService struct {
	cart    cart.Cart
	cleared bool
}

func (f *fakeCartService) CurrentCart(c context.Context) cart.Cart {
	return f.cart
}

func (f *fakeCartService) ClearAfterCheckout(c context.Context) error {
	f.cart = cart.Cart{}
	f.cleared = true
	return nil
}

func filledCart() cart.Cart {
	return cart.Cart{
		Lines: []cart.CartLine{
			{
				UID:        "line_1",
				ProductUID: "product_a",
				Quantity:   2,
				Product:    catalog.Product{UID: "product_a", Name: "Product A", PriceInCents: 2900, Currency: "EUR"},
			},
		},
	}
}

func TestCheckoutFlow(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	checkoutStore, storeCleanup, err := mystore.NewInMemoryStore[CheckoutContext](c)
	assert.NoError(t, err)
	t.Cleanup(storeCleanup)

	carts := &fakeCartService{cart: filledCart()}
	orderStore := NewInMemoryOrderStore()

	payer := NewMockPayer(ctrl)
	payer.EXPECT().ProviderName().Return("testpay").AnyTimes()

	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), checkoutevents.TopicName).Return(nil)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("abc123").AnyTimes()

	ws := NewService(&fakeSessions{identity: &shopper}, carts, orderStore, checkoutStore,
		payer, publisher, nower, uuider, mylog.New("checkouttest"))

	router := mux.NewRouter()
	assert.NoError(t, ws.RegisterEndpoints(c, router))

	t.Run("start checkout redirects to payment page", func(t *testing.T) {
		payer.EXPECT().CreatePaymentPage(gomock.Any(), gomock.Any()).
			DoAndReturn(func(c context.Context, request PaymentRequest) (string, string, error) {
				assert.Equal(t, "order_abc123", request.OrderUID)
				assert.Equal(t, int64(5800), request.AmountInCents)
				assert.Equal(t, "EUR", request.Currency)
				assert.Equal(t, "marc@example.com", request.CustomerEmail)
				assert.Len(t, request.Items, 1)
				return "https://pay.example.com/session/xyz", "key_xyz", nil
			})
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			OrderUID:      "order_abc123",
			ProviderName:  "testpay",
			AmountInCents: 5800,
			Currency:      "EUR",
			ShopperUID:    shopper.UID,
		}).Return(nil)

		form := url.Values{"returnUrl": {"https://shop.example.com/done"}}
		req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "https://pay.example.com/session/xyz", recorder.Header().Get("Location"))

		order, found, err := orderStore.GetOrder(c, "order_abc123")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, OrderStatusCreated, order.Status)
	})

	t.Run("success with wrong payment key is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/checkout/order_abc123/success?orderId=order_abc123&paymentKey=wrong&amount=5800", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("success with wrong amount is rejected", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/checkout/order_abc123/success?orderId=order_abc123&paymentKey=key_xyz&amount=1", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("success marks order paid and clears cart", func(t *testing.T) {
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			OrderUID:       "order_abc123",
			ProviderName:   "testpay",
			CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
			AmountInCents:  5800,
			Currency:       "EUR",
			ShopperUID:     shopper.UID,
			ShopperName:    shopper.DisplayName,
			ShopperEmail:   shopper.Email,
		}).Return(nil)

		req := httptest.NewRequest("GET", "/api/checkout/order_abc123/success?orderId=order_abc123&paymentKey=key_xyz&amount=5800", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "https://shop.example.com/done?status=success", recorder.Header().Get("Location"))

		order, _, err := orderStore.GetOrder(c, "order_abc123")
		assert.NoError(t, err)
		assert.Equal(t, OrderStatusPaid, order.Status)
		assert.True(t, carts.cleared)
	})

	t.Run("repeated success redirect is idempotent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/checkout/order_abc123/success?orderId=order_abc123&paymentKey=key_xyz&amount=5800", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
	})

	t.Run("list orders of signed-in shopper", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/orders", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "order_abc123")
	})
}

func TestCheckoutFailure(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	checkoutStore, storeCleanup, err := mystore.NewInMemoryStore[CheckoutContext](c)
	assert.NoError(t, err)
	t.Cleanup(storeCleanup)

	carts := &fakeCartService{cart: filledCart()}
	orderStore := NewInMemoryOrderStore()

	payer := NewMockPayer(ctrl)
	payer.EXPECT().ProviderName().Return("testpay").AnyTimes()
	payer.EXPECT().CreatePaymentPage(gomock.Any(), gomock.Any()).
		Return("https://pay.example.com/session/xyz", "key_xyz", nil)

	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), checkoutevents.TopicName).Return(nil)
	publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.AssignableToTypeOf(checkoutevents.CheckoutStarted{})).Return(nil)

	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	uuider := myuuid.NewMockUUIDer(ctrl)
	uuider.EXPECT().Create().Return("abc123").AnyTimes()

	ws := NewService(&fakeSessions{identity: &shopper}, carts, orderStore, checkoutStore,
		payer, publisher, nower, uuider, mylog.New("checkouttest"))

	router := mux.NewRouter()
	assert.NoError(t, ws.RegisterEndpoints(c, router))

	form := url.Values{"returnUrl": {"https://shop.example.com/done"}}
	req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusSeeOther, recorder.Code)

	t.Run("failure marks order failed and keeps cart", func(t *testing.T) {
		publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			OrderUID:       "order_abc123",
			ProviderName:   "testpay",
			CheckoutStatus: checkoutevents.CheckoutStatusFailed,
			StatusDetails:  "cancelled: shopper cancelled",
			AmountInCents:  5800,
			Currency:       "EUR",
			ShopperUID:     shopper.UID,
			ShopperName:    shopper.DisplayName,
			ShopperEmail:   shopper.Email,
		}).Return(nil)

		req := httptest.NewRequest("GET", "/api/checkout/order_abc123/fail?code=cancelled&message=shopper+cancelled", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusSeeOther, recorder.Code)
		assert.Equal(t, "https://shop.example.com/done?status=failed", recorder.Header().Get("Location"))

		order, _, err := orderStore.GetOrder(c, "order_abc123")
		assert.NoError(t, err)
		assert.Equal(t, OrderStatusFailed, order.Status)
		assert.False(t, carts.cleared)
	})

	t.Run("checkout with empty cart is rejected", func(t *testing.T) {
		carts.cart = cart.Cart{}

		req := httptest.NewRequest("POST", "/api/checkout", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
