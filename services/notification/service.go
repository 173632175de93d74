package notification

import (
	"context"
	"fmt"

	"github.com/MarcGrol/shopfront/lib/myhttp"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypubsub"
	"github.com/MarcGrol/shopfront/services/checkoutevents"
)

type service struct {
	emailer Emailer
	pubsub  mypubsub.PubSub
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(emailer Emailer, pubsub mypubsub.PubSub, logger mylog.Logger) *service {
	return &service{
		emailer: emailer,
		pubsub:  pubsub,
		logger:  logger,
	}
}

func (s *service) Subscribe(c context.Context) error {
	err := s.pubsub.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/notification/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	return nil
}

// OnCheckoutCompleted mails an order confirmation. A mail failure is
// logged but never bounces the event back to the queue.
func (s *service) OnCheckoutCompleted(c context.Context, topic string, event checkoutevents.CheckoutCompleted) error {
	if event.CheckoutStatus != checkoutevents.CheckoutStatusSuccess {
		s.logger.Log(c, event.OrderUID, mylog.SeverityInfo,
			"No confirmation mail for order %s with status %s", event.OrderUID, event.CheckoutStatus)
		return nil
	}

	if event.ShopperEmail == "" {
		s.logger.Log(c, event.OrderUID, mylog.SeverityWarn,
			"No shopper email on order %s, skipping confirmation mail", event.OrderUID)
		return nil
	}

	subject := fmt.Sprintf("Your order %s is confirmed", event.OrderUID)
	body := fmt.Sprintf("Hi %s,\n\nThanks for your order %s.\nWe received your payment of %s %.2f.\n",
		event.ShopperName, event.OrderUID, event.Currency, float64(event.AmountInCents)/100.0)

	err := s.emailer.Send(c, event.ShopperName, event.ShopperEmail, subject, body)
	if err != nil {
		s.logger.Log(c, event.OrderUID, mylog.SeverityError,
			"Error sending confirmation mail for order %s: %s", event.OrderUID, err)
		return nil
	}

	s.logger.Log(c, event.OrderUID, mylog.SeverityInfo,
		"Confirmation mail for order %s sent to %s", event.OrderUID, event.ShopperEmail)

	return nil
}
