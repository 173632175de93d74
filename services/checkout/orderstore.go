package checkout

import (
	"context"
	"time"
)

// OrderStore persists orders and their items.
type OrderStore interface {
	CreateOrder(c context.Context, order Order, items []OrderItem) error
	GetOrder(c context.Context, orderUID string) (Order, bool, error)
	UpdateStatus(c context.Context, orderUID string, status OrderStatus, lastModified time.Time) error
	ListOrders(c context.Context, shopperUID string) ([]Order, error)
	ListItems(c context.Context, orderUID string) ([]OrderItem, error)
}
