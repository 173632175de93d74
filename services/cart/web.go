package cart

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopfront/lib/mycontext"
	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myhttp"
	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/cartevents"
	"github.com/MarcGrol/shopfront/services/catalog"
	"github.com/MarcGrol/shopfront/services/session"
)

// ProductCatalog provides the product snapshot that gets stored with a
// cart line.
type ProductCatalog interface {
	GetProduct(c context.Context, productUID string) (catalog.Product, error)
}

type webService struct {
	service *service
	catalog ProductCatalog
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(sessions session.Observer, kvStore mykvstore.KVStore, remote RemoteCartStore,
	productCatalog ProductCatalog, publisher mypublisher.Publisher, uuider myuuid.UUIDer,
	logger mylog.Logger) *webService {
	return &webService{
		service: newService(sessions, newLocalCartCache(kvStore, logger), remote, publisher, uuider, logger),
		catalog: productCatalog,
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/cart", s.cartPage()).Methods("GET")
	router.HandleFunc("/api/cart", s.clearCartPage()).Methods("DELETE")
	router.HandleFunc("/api/cart/refresh", s.refreshCartPage()).Methods("PUT")
	router.HandleFunc("/api/cart/{productUID}", s.addProductPage()).Methods("POST")
	router.HandleFunc("/api/cart/{productUID}", s.removeProductPage()).Methods("DELETE")
	router.HandleFunc("/api/cart/{productUID}/quantity/{quantity}", s.updateQuantityPage()).Methods("PUT")

	err := s.service.publisher.CreateTopic(c, cartevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", cartevents.TopicName, err)
	}

	// Stays subscribed for the lifetime of the process
	s.service.sessions.Subscribe(s.service.onSessionTransition)

	return nil
}

// CurrentCart allows other services to read the reconciled cart.
func (s *webService) CurrentCart(c context.Context) Cart {
	return s.service.currentCart(c)
}

// ClearAfterCheckout empties the cart once an order has been paid.
func (s *webService) ClearAfterCheckout(c context.Context) error {
	_, err := s.service.clearCart(c)
	return err
}

type cartResponse struct {
	Lines              []CartLine
	TotalItemCount     int
	TotalAmountInCents int64
}

func newCartResponse(cart Cart) cartResponse {
	return cartResponse{
		Lines:              cart.Lines,
		TotalItemCount:     cart.TotalItemCount(),
		TotalAmountInCents: cart.TotalAmountInCents(),
	}
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cart := s.service.currentCart(c)

		responseWriter.Write(c, w, http.StatusOK, newCartResponse(cart))
	}
}

func (s *webService) addProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		quantity := 1
		quantityParam := r.FormValue("quantity")
		if quantityParam != "" {
			var err error
			quantity, err = strconv.Atoi(quantityParam)
			if err != nil {
				responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid quantity %s", quantityParam))
				return
			}
		}

		product, err := s.catalog.GetProduct(c, productUID)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		cart, err := s.service.addToCart(c, product, quantity)
		if err != nil {
			responseWriter.WriteError(c, w, 3, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartResponse(cart))
	}
}

func (s *webService) removeProductPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		cart, err := s.service.removeFromCart(c, productUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartResponse(cart))
	}
}

func (s *webService) updateQuantityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		vars := mux.Vars(r)
		productUID := vars["productUID"]

		quantity, err := strconv.Atoi(vars["quantity"])
		if err != nil {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid quantity %s", vars["quantity"]))
			return
		}

		cart, err := s.service.updateQuantity(c, productUID, quantity)
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartResponse(cart))
	}
}

func (s *webService) clearCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cart, err := s.service.clearCart(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartResponse(cart))
	}
}

func (s *webService) refreshCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		cart, err := s.service.refresh(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, newCartResponse(cart))
	}
}
