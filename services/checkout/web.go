package checkout

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopfront/lib/mycontext"
	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myhttp"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/mystore"
	"github.com/MarcGrol/shopfront/lib/mytime"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/checkoutevents"
	"github.com/MarcGrol/shopfront/services/session"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(sessions session.Observer, carts CartService, orderStore OrderStore,
	checkoutStore mystore.Store[CheckoutContext], payer Payer, publisher mypublisher.Publisher,
	nower mytime.Nower, uuider myuuid.UUIDer, logger mylog.Logger) *webService {
	return &webService{
		service: newService(sessions, carts, orderStore, checkoutStore, payer, publisher, nower, uuider, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/checkout", s.startCheckoutPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{orderUID}/success", s.checkoutSuccessPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{orderUID}/fail", s.checkoutFailPage()).Methods("GET")
	router.HandleFunc("/api/orders", s.orderListPage()).Methods("GET")
	router.HandleFunc("/api/orders/{orderUID}", s.orderDetailPage()).Methods("GET")

	return s.service.publisher.CreateTopic(c, checkoutevents.TopicName)
}

// startCheckoutPage creates the order and redirects the shopper to the
// provider's hosted payment page.
func (s *webService) startCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		form, err := parseCheckoutForm(r)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		redirectURL, err := s.service.startCheckout(c, form, myhttp.HostnameWithScheme(r))
		if err != nil {
			responseWriter.WriteError(c, w, 2, err)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

// checkoutSuccessPage is the redirect target of the payment provider.
// The query carries orderId, paymentKey and amount.
func (s *webService) checkoutSuccessPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		orderUID := mux.Vars(r)["orderUID"]

		orderID := r.URL.Query().Get("orderId")
		if orderID != "" && orderID != orderUID {
			responseWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("orderId %s does not match order %s", orderID, orderUID))
			return
		}

		paymentKey := r.URL.Query().Get("paymentKey")
		if paymentKey == "" {
			responseWriter.WriteError(c, w, 2, myerrors.NewInvalidInputError(fmt.Errorf("missing paymentKey")))
			return
		}

		amountParam := r.URL.Query().Get("amount")
		amountInCents, err := strconv.ParseInt(amountParam, 10, 64)
		if err != nil {
			responseWriter.WriteError(c, w, 3, myerrors.NewInvalidInputErrorf("invalid amount %s", amountParam))
			return
		}

		returnURL, err := s.service.handleSuccess(c, orderUID, paymentKey, amountInCents)
		if err != nil {
			responseWriter.WriteError(c, w, 4, err)
			return
		}

		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

// checkoutFailPage is the redirect target when payment did not complete.
// The query carries code and message.
func (s *webService) checkoutFailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		orderUID := mux.Vars(r)["orderUID"]
		code := r.URL.Query().Get("code")
		message := r.URL.Query().Get("message")

		returnURL, err := s.service.handleFail(c, orderUID, code, message)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		http.Redirect(w, r, returnURL, http.StatusSeeOther)
	}
}

func (s *webService) orderListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		orders, err := s.service.listOrders(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, orders)
	}
}

type orderDetailResponse struct {
	Order Order
	Items []OrderItem
}

func (s *webService) orderDetailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		orderUID := mux.Vars(r)["orderUID"]

		order, items, err := s.service.getOrder(c, orderUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, orderDetailResponse{
			Order: order,
			Items: items,
		})
	}
}
