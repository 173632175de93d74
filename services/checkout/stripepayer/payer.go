package stripepayer

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/services/checkout"
)

type stripePayer struct{}

func New(apiKey string) checkout.Payer {
	stripe.Key = apiKey
	return &stripePayer{}
}

func (p *stripePayer) ProviderName() string {
	return "stripe"
}

// CreatePaymentPage creates a hosted checkout session. Stripe substitutes
// the session id into the success URL, so the redirect back carries the
// same key that we return here.
func (p *stripePayer) CreatePaymentPage(c context.Context, request checkout.PaymentRequest) (string, string, error) {
	lineItems := []*stripe.CheckoutSessionLineItemParams{}
	for _, item := range request.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(request.Currency),
				UnitAmount: stripe.Int64(item.PriceInCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	params := &stripe.CheckoutSessionParams{
		ClientReferenceID: stripe.String(request.OrderUID),
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         lineItems,
		SuccessURL: stripe.String(fmt.Sprintf("%s?orderId=%s&paymentKey={CHECKOUT_SESSION_ID}&amount=%d",
			request.SuccessURL, request.OrderUID, request.AmountInCents)),
		CancelURL: stripe.String(fmt.Sprintf("%s?code=cancelled&message=payment%%20cancelled", request.FailURL)),
	}
	if request.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(request.CustomerEmail)
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", myerrors.NewInvalidInputError(fmt.Errorf("error creating stripe session: %s", err))
	}

	return sess.URL, sess.ID, nil
}
