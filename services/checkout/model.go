package checkout

import (
	"net/http"
	"time"

	"github.com/go-playground/form/v4"

	"github.com/MarcGrol/shopfront/lib/myerrors"
)

type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
)

// Order is the persistent record of a checkout attempt. It lives in the
// same database as the server-side cart.
type Order struct {
	UID                string
	ShopperUID         string
	ShopperName        string
	ShopperEmail       string
	TotalAmountInCents int64
	Currency           string
	Status             OrderStatus
	CreatedAt          time.Time
	LastModified       *time.Time
}

type OrderItem struct {
	UID          string
	OrderUID     string
	ProductUID   string
	ProductName  string
	Quantity     int
	PriceInCents int64
}

// CheckoutContext carries the volatile part of a checkout between the
// start of the payment and the redirect back.
type CheckoutContext struct {
	OrderUID     string
	CreatedAt    time.Time
	ReturnURL    string
	PaymentKey   string
	Status       string
	LastModified *time.Time
}

type checkoutForm struct {
	ShopperName  string `form:"shopperName"`
	ShopperEmail string `form:"shopperEmail"`
	ReturnURL    string `form:"returnUrl"`
}

var formDecoder = form.NewDecoder()

func parseCheckoutForm(r *http.Request) (checkoutForm, error) {
	err := r.ParseForm()
	if err != nil {
		return checkoutForm{}, myerrors.NewInvalidInputError(err)
	}

	co := checkoutForm{}
	err = formDecoder.Decode(&co, r.Form)
	if err != nil {
		return checkoutForm{}, myerrors.NewInvalidInputError(err)
	}

	return co, nil
}
