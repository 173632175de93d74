package molliepayer

import (
	"context"
	"fmt"

	"github.com/VictorAvelar/mollie-api-go/v3/mollie"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/checkout"
)

type molliePayer struct {
	client *mollie.Client
	uuider myuuid.UUIDer
}

func New(apiKey string, uuider myuuid.UUIDer) (checkout.Payer, error) {
	config := mollie.NewAPITestingConfig(true)

	client, err := mollie.NewClient(nil, config)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error creating mollie client: %s", err))
	}
	client.WithAuthenticationValue(apiKey)

	return &molliePayer{
		client: client,
		uuider: uuider,
	}, nil
}

func (p *molliePayer) ProviderName() string {
	return "mollie"
}

// CreatePaymentPage creates a mollie payment. Mollie cannot substitute the
// payment id into the redirect URL, so a self-generated payment key is
// baked into the URL and returned for later verification.
func (p *molliePayer) CreatePaymentPage(c context.Context, request checkout.PaymentRequest) (string, string, error) {
	paymentKey := p.uuider.Create()

	payment, err := p.createPayment(c, mollie.Payment{
		Description:  request.Description,
		ConsumerName: request.CustomerName,
		BillingEmail: request.CustomerEmail,
		RedirectURL: fmt.Sprintf("%s?orderId=%s&paymentKey=%s&amount=%d",
			request.SuccessURL, request.OrderUID, paymentKey, request.AmountInCents),
		CancelURL: fmt.Sprintf("%s?code=cancelled&message=payment%%20cancelled", request.FailURL),
		Metadata: map[string]string{
			"orderUID": request.OrderUID,
		},
		Amount: &mollie.Amount{
			Currency: request.Currency,
			Value:    fmt.Sprintf("%.2f", float64(request.AmountInCents)/100.0),
		},
	})
	if err != nil {
		return "", "", err
	}

	if payment.Links.Checkout == nil {
		return "", "", myerrors.NewInternalError(fmt.Errorf("mollie payment %s has no checkout link", payment.ID))
	}

	return payment.Links.Checkout.Href, paymentKey, nil
}

func (p *molliePayer) createPayment(c context.Context, request mollie.Payment) (mollie.Payment, error) {
	_, payment, err := p.client.Payments.Create(c, request, nil)
	if err != nil {
		return mollie.Payment{}, myerrors.NewInvalidInputError(fmt.Errorf("error creating mollie payment: %s", err))
	}

	return *payment, nil
}
