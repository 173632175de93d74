package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mystore"
)

func TestCatalogWebAPI(t *testing.T) {
	c := context.TODO()

	productStore, storeCleanup, err := mystore.NewInMemoryStore[Product](c)
	assert.NoError(t, err)
	t.Cleanup(storeCleanup)

	ws := NewService(productStore, mylog.New("catalogtest"))
	router := mux.NewRouter()
	assert.NoError(t, ws.RegisterEndpoints(c, router))

	t.Run("list seeded products", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/products", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		products := []Product{}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &products))
		assert.Len(t, products, 6)

		// Oldest first
		for i := 1; i < len(products); i++ {
			assert.False(t, products[i].CreatedAt.Before(products[i-1].CreatedAt))
		}
	})

	t.Run("product detail", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/products/product_denim_jeans", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		product := Product{}
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &product))
		assert.Equal(t, "Denim jeans", product.Name)
		assert.Equal(t, int64(5900), product.PriceInCents)
	})

	t.Run("unknown product yields 404", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/products/product_unknown", nil)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("seeding twice keeps the assortment stable", func(t *testing.T) {
		assert.NoError(t, ws.RegisterEndpoints(c, mux.NewRouter()))

		products, err := productStore.List(c)
		assert.NoError(t, err)
		assert.Len(t, products, 6)
	})
}
