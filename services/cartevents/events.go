package cartevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/myevents"
)

const (
	TopicName             = "cart"
	cartMergedName        = TopicName + ".merged"
	remoteWriteFailedName = TopicName + ".remoteWriteFailed"
)

type CartEventService interface {
	Subscribe(c context.Context) error
	OnCartMerged(c context.Context, topic string, event CartMerged) error
	OnRemoteWriteFailed(c context.Context, topic string, event RemoteWriteFailed) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CartEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case cartMergedName:
		{
			event := CartMerged{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCartMerged(c, envelope.Topic, event)
		}
	case remoteWriteFailedName:
		{
			event := RemoteWriteFailed{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnRemoteWriteFailed(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("event %s not supported", envelope.EventTypeName))
	}
}

// CartMerged is published after a sign-in merged the device-local cart
// into the shopper's server-side cart.
type CartMerged struct {
	ShopperUID string
	LineCount  int
}

func (e CartMerged) GetEventTypeName() string {
	return cartMergedName
}

func (e CartMerged) GetAggregateName() string {
	return e.ShopperUID
}

// RemoteWriteFailed is published when an asynchronous write-through to the
// server-side cart failed. The local cart remains the accepted truth.
type RemoteWriteFailed struct {
	ShopperUID string
	ProductUID string
	Operation  string
	Reason     string
}

func (e RemoteWriteFailed) GetEventTypeName() string {
	return remoteWriteFailedName
}

func (e RemoteWriteFailed) GetAggregateName() string {
	return e.ShopperUID
}
