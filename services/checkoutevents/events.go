package checkoutevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myevents"
)

const (
	TopicName             = "checkout"
	checkoutStartedName   = TopicName + ".started"
	checkoutCompletedName = TopicName + ".completed"
)

type CheckoutEventService interface {
	Subscribe(c context.Context) error
	OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error
	OnCheckoutCompleted(c context.Context, topic string, event CheckoutCompleted) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CheckoutEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case checkoutStartedName:
		{
			event := CheckoutStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutStarted(c, envelope.Topic, event)
		}
	case checkoutCompletedName:
		{
			event := CheckoutCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutCompleted(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("event %s not supported", envelope.EventTypeName))
	}
}

type CheckoutStarted struct {
	OrderUID      string
	ProviderName  string
	AmountInCents int64
	Currency      string
	ShopperUID    string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.OrderUID
}

type CheckoutStatus string

const (
	CheckoutStatusUndefined CheckoutStatus = ""
	CheckoutStatusSuccess   CheckoutStatus = "success"
	CheckoutStatusFailed    CheckoutStatus = "failed"
)

type CheckoutCompleted struct {
	OrderUID       string
	ProviderName   string
	CheckoutStatus CheckoutStatus
	StatusDetails  string
	AmountInCents  int64
	Currency       string
	ShopperUID     string
	ShopperName    string
	ShopperEmail   string
}

func (e CheckoutCompleted) GetEventTypeName() string {
	return checkoutCompletedName
}

func (e CheckoutCompleted) GetAggregateName() string {
	return e.OrderUID
}
