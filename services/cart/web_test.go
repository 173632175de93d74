package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/cartevents"
	"github.com/MarcGrol/shopfront/services/catalog"
)

type fakeCatalog struct {
	products map[string]catalog.Product
}

func (f *fakeCatalog) GetProduct(c context.Context, productUID string) (catalog.Product, error) {
	product, found := f.products[productUID]
	if !found {
		return catalog.Product{}, myerrors.NewNotFoundError(fmt.Errorf("product %s not found", productUID))
	}
	return product, nil
}

func TestCartWebAPI(t *testing.T) {
	c := context.TODO()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	kvStore, kvCleanup, err := mykvstore.NewInMemoryStore(c)
	assert.NoError(t, err)
	t.Cleanup(kvCleanup)

	publisher := mypublisher.NewMockPublisher(ctrl)
	publisher.EXPECT().CreateTopic(gomock.Any(), cartevents.TopicName).Return(nil)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	logger := mylog.New("carttest")
	sessions := &fakeSessionObserver{}
	ws := NewService(sessions, kvStore, NewInMemoryCartStore(),
		&fakeCatalog{products: map[string]catalog.Product{"product_a": productA, "product_b": productB}},
		publisher, myuuid.RealUUIDer{}, logger)

	router := mux.NewRouter()
	assert.NoError(t, ws.RegisterEndpoints(c, router))
	sessions.resolveAnonymous(c)

	t.Run("cart starts empty", func(t *testing.T) {
		resp := doRequest(t, router, "GET", "/api/cart", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, 0, resp.cart.TotalItemCount)
	})

	t.Run("add product with default quantity", func(t *testing.T) {
		resp := doRequest(t, router, "POST", "/api/cart/product_a", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Len(t, resp.cart.Lines, 1)
		assert.Equal(t, 1, resp.cart.Lines[0].Quantity)
	})

	t.Run("add product with explicit quantity accumulates", func(t *testing.T) {
		resp := doRequest(t, router, "POST", "/api/cart/product_a", url.Values{"quantity": {"2"}})
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Len(t, resp.cart.Lines, 1)
		assert.Equal(t, 3, resp.cart.Lines[0].Quantity)
		assert.Equal(t, int64(3*2900), resp.cart.TotalAmountInCents)
	})

	t.Run("add unknown product fails", func(t *testing.T) {
		resp := doRequest(t, router, "POST", "/api/cart/product_unknown", nil)
		assert.Equal(t, http.StatusNotFound, resp.status)
	})

	t.Run("add with garbage quantity fails", func(t *testing.T) {
		resp := doRequest(t, router, "POST", "/api/cart/product_a", url.Values{"quantity": {"many"}})
		assert.Equal(t, http.StatusBadRequest, resp.status)
	})

	t.Run("update quantity", func(t *testing.T) {
		resp := doRequest(t, router, "PUT", "/api/cart/product_a/quantity/5", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, 5, resp.cart.Lines[0].Quantity)
	})

	t.Run("update quantity to zero removes line", func(t *testing.T) {
		resp := doRequest(t, router, "PUT", "/api/cart/product_a/quantity/0", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Empty(t, resp.cart.Lines)
	})

	t.Run("remove product", func(t *testing.T) {
		doRequest(t, router, "POST", "/api/cart/product_b", nil)

		resp := doRequest(t, router, "DELETE", "/api/cart/product_b", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Empty(t, resp.cart.Lines)
	})

	t.Run("clear cart", func(t *testing.T) {
		doRequest(t, router, "POST", "/api/cart/product_a", nil)

		resp := doRequest(t, router, "DELETE", "/api/cart", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Empty(t, resp.cart.Lines)
	})

	t.Run("refresh", func(t *testing.T) {
		resp := doRequest(t, router, "PUT", "/api/cart/refresh", nil)
		assert.Equal(t, http.StatusOK, resp.status)
		assert.Empty(t, resp.cart.Lines)
	})
}

type webTestResponse struct {
	status int
	cart   cartResponse
}

func doRequest(t *testing.T, router *mux.Router, method string, path string, form url.Values) webTestResponse {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	resp := webTestResponse{status: recorder.Code}
	if recorder.Code == http.StatusOK {
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp.cart))
	}

	return resp
}
