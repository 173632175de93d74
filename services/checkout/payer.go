package checkout

import (
	"context"
)

// PaymentRequest describes what the payment provider should charge and
// where the hosted page must redirect afterwards.
type PaymentRequest struct {
	OrderUID      string
	Description   string
	AmountInCents int64
	Currency      string
	SuccessURL    string
	FailURL       string
	CustomerName  string
	CustomerEmail string
	Items         []PaymentItem
}

type PaymentItem struct {
	Name         string
	Quantity     int
	PriceInCents int64
}

// Payer abstracts the hosted payment page of a provider. It returns the
// URL to redirect the shopper to and the provider's key for the payment.
//
//go:generate mockgen -source=payer.go -package checkout -destination payer_mock.go Payer
type Payer interface {
	ProviderName() string
	CreatePaymentPage(c context.Context, request PaymentRequest) (redirectURL string, paymentKey string, err error)
}
