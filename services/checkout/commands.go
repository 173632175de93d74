package checkout

import (
	"context"
	"fmt"
	"net/url"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/services/cart"
	"github.com/MarcGrol/shopfront/services/checkoutevents"
	"github.com/MarcGrol/shopfront/services/session"
)

// startCheckout turns the current cart into an order and hands the
// shopper over to the payment provider's hosted page.
func (s *service) startCheckout(c context.Context, form checkoutForm, baseURL string) (string, error) {
	now := s.nower.Now()

	currentCart := s.carts.CurrentCart(c)
	if currentCart.IsEmpty() {
		return "", myerrors.NewInvalidInputError(fmt.Errorf("cannot check out an empty cart"))
	}

	shopper := s.resolveShopper(c, form)

	order := Order{
		UID:                "order_" + s.uuider.Create(),
		ShopperUID:         shopper.UID,
		ShopperName:        shopper.DisplayName,
		ShopperEmail:       shopper.Email,
		TotalAmountInCents: currentCart.TotalAmountInCents(),
		Currency:           currencyOf(currentCart),
		Status:             OrderStatusCreated,
		CreatedAt:          now,
	}

	items := []OrderItem{}
	paymentItems := []PaymentItem{}
	for _, line := range currentCart.Lines {
		items = append(items, OrderItem{
			UID:          "item_" + s.uuider.Create(),
			OrderUID:     order.UID,
			ProductUID:   line.ProductUID,
			ProductName:  line.Product.Name,
			Quantity:     line.Quantity,
			PriceInCents: line.Product.PriceInCents,
		})
		paymentItems = append(paymentItems, PaymentItem{
			Name:         line.Product.Name,
			Quantity:     line.Quantity,
			PriceInCents: line.Product.PriceInCents,
		})
	}

	err := s.orderStore.CreateOrder(c, order, items)
	if err != nil {
		return "", err
	}

	s.logger.Log(c, order.UID, mylog.SeverityInfo, "Start checkout of order %s (%d cents) via %s",
		order.UID, order.TotalAmountInCents, s.payer.ProviderName())

	redirectURL, paymentKey, err := s.payer.CreatePaymentPage(c, PaymentRequest{
		OrderUID:      order.UID,
		Description:   fmt.Sprintf("Order %s", order.UID),
		AmountInCents: order.TotalAmountInCents,
		Currency:      order.Currency,
		SuccessURL:    fmt.Sprintf("%s/api/checkout/%s/success", baseURL, order.UID),
		FailURL:       fmt.Sprintf("%s/api/checkout/%s/fail", baseURL, order.UID),
		CustomerName:  order.ShopperName,
		CustomerEmail: order.ShopperEmail,
		Items:         paymentItems,
	})
	if err != nil {
		return "", err
	}

	err = s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		err := s.checkoutStore.Put(c, order.UID, CheckoutContext{
			OrderUID:   order.UID,
			CreatedAt:  now,
			ReturnURL:  form.ReturnURL,
			PaymentKey: paymentKey,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing checkout context: %s", err))
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			OrderUID:      order.UID,
			ProviderName:  s.payer.ProviderName(),
			AmountInCents: order.TotalAmountInCents,
			Currency:      order.Currency,
			ShopperUID:    order.ShopperUID,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return redirectURL, nil
}

// handleSuccess verifies the redirect from the payment provider and, on a
// match, marks the order paid and empties the cart.
func (s *service) handleSuccess(c context.Context, orderUID string, paymentKey string, amountInCents int64) (string, error) {
	now := s.nower.Now()

	returnURL := ""
	err := s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		checkoutContext, found, err := s.checkoutStore.Get(c, orderUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout context %s: %s", orderUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout context %s not found", orderUID))
		}

		returnURL, err = addStatusQueryParam(checkoutContext.ReturnURL, "success")
		if err != nil {
			return err
		}

		if checkoutContext.Status == "success" {
			// Redirect delivered twice
			return nil
		}

		if checkoutContext.PaymentKey != paymentKey {
			return myerrors.NewAuthenticationError(fmt.Errorf("payment key mismatch for order %s", orderUID))
		}

		order, found, err := s.orderStore.GetOrder(c, orderUID)
		if err != nil {
			return err
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("order %s not found", orderUID))
		}

		if order.TotalAmountInCents != amountInCents {
			return myerrors.NewInvalidInputErrorf("amount mismatch for order %s: expected %d, got %d",
				orderUID, order.TotalAmountInCents, amountInCents)
		}

		err = s.orderStore.UpdateStatus(c, orderUID, OrderStatusPaid, now)
		if err != nil {
			return err
		}

		checkoutContext.Status = "success"
		checkoutContext.LastModified = &now
		err = s.checkoutStore.Put(c, orderUID, checkoutContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			OrderUID:       orderUID,
			ProviderName:   s.payer.ProviderName(),
			CheckoutStatus: checkoutevents.CheckoutStatusSuccess,
			AmountInCents:  order.TotalAmountInCents,
			Currency:       order.Currency,
			ShopperUID:     order.ShopperUID,
			ShopperName:    order.ShopperName,
			ShopperEmail:   order.ShopperEmail,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		err = s.carts.ClearAfterCheckout(c)
		if err != nil {
			// The order is paid, a lingering cart is the lesser problem
			s.logger.Log(c, orderUID, mylog.SeverityWarn, "Error clearing cart after checkout: %s", err)
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Log(c, orderUID, mylog.SeverityInfo, "Order %s paid", orderUID)

	return returnURL, nil
}

// handleFail records the failure. The cart is left as it was so the
// shopper can retry.
func (s *service) handleFail(c context.Context, orderUID string, code string, message string) (string, error) {
	now := s.nower.Now()

	returnURL := ""
	err := s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		checkoutContext, found, err := s.checkoutStore.Get(c, orderUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout context %s: %s", orderUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout context %s not found", orderUID))
		}

		returnURL, err = addStatusQueryParam(checkoutContext.ReturnURL, "failed")
		if err != nil {
			return err
		}

		if checkoutContext.Status == "failed" {
			return nil
		}

		order, found, err := s.orderStore.GetOrder(c, orderUID)
		if err != nil {
			return err
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("order %s not found", orderUID))
		}

		err = s.orderStore.UpdateStatus(c, orderUID, OrderStatusFailed, now)
		if err != nil {
			return err
		}

		checkoutContext.Status = "failed"
		checkoutContext.LastModified = &now
		err = s.checkoutStore.Put(c, orderUID, checkoutContext)
		if err != nil {
			return myerrors.NewInternalError(err)
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutCompleted{
			OrderUID:       orderUID,
			ProviderName:   s.payer.ProviderName(),
			CheckoutStatus: checkoutevents.CheckoutStatusFailed,
			StatusDetails:  fmt.Sprintf("%s: %s", code, message),
			AmountInCents:  order.TotalAmountInCents,
			Currency:       order.Currency,
			ShopperUID:     order.ShopperUID,
			ShopperName:    order.ShopperName,
			ShopperEmail:   order.ShopperEmail,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Log(c, orderUID, mylog.SeverityWarn, "Order %s failed: %s: %s", orderUID, code, message)

	return returnURL, nil
}

func (s *service) listOrders(c context.Context) ([]Order, error) {
	identity, signedIn := s.sessions.Current(c)
	if !signedIn {
		return nil, myerrors.NewAuthenticationError(fmt.Errorf("sign in to list orders"))
	}

	return s.orderStore.ListOrders(c, identity.UID)
}

func (s *service) getOrder(c context.Context, orderUID string) (Order, []OrderItem, error) {
	order, found, err := s.orderStore.GetOrder(c, orderUID)
	if err != nil {
		return Order{}, nil, err
	}
	if !found {
		return Order{}, nil, myerrors.NewNotFoundError(fmt.Errorf("order %s not found", orderUID))
	}

	items, err := s.orderStore.ListItems(c, orderUID)
	if err != nil {
		return Order{}, nil, err
	}

	return order, items, nil
}

func (s *service) resolveShopper(c context.Context, form checkoutForm) session.Identity {
	identity, signedIn := s.sessions.Current(c)
	if !signedIn {
		identity = session.Identity{UID: "guest_" + s.uuider.Create()}
	}
	if form.ShopperName != "" {
		identity.DisplayName = form.ShopperName
	}
	if form.ShopperEmail != "" {
		identity.Email = form.ShopperEmail
	}
	return identity
}

func currencyOf(currentCart cart.Cart) string {
	for _, line := range currentCart.Lines {
		if line.Product.Currency != "" {
			return line.Product.Currency
		}
	}
	return "EUR"
}

func addStatusQueryParam(orgURL string, status string) (string, error) {
	u, err := url.Parse(orgURL)
	if err != nil {
		return "", myerrors.NewInternalError(fmt.Errorf("error parsing return URL %s: %s", orgURL, err))
	}
	params := u.Query()
	params.Set("status", status)
	u.RawQuery = params.Encode()
	return u.String(), nil
}
