package checkout

import (
	"context"
	"sort"
	"sync"
	"time"
)

type inMemoryOrderStore struct {
	sync.Mutex
	orders map[string]Order
	items  map[string][]OrderItem
}

func NewInMemoryOrderStore() OrderStore {
	return &inMemoryOrderStore{
		orders: map[string]Order{},
		items:  map[string][]OrderItem{},
	}
}

func (s *inMemoryOrderStore) CreateOrder(c context.Context, order Order, items []OrderItem) error {
	s.Lock()
	defer s.Unlock()

	s.orders[order.UID] = order
	s.items[order.UID] = items

	return nil
}

func (s *inMemoryOrderStore) GetOrder(c context.Context, orderUID string) (Order, bool, error) {
	s.Lock()
	defer s.Unlock()

	order, found := s.orders[orderUID]

	return order, found, nil
}

func (s *inMemoryOrderStore) UpdateStatus(c context.Context, orderUID string, status OrderStatus, lastModified time.Time) error {
	s.Lock()
	defer s.Unlock()

	order, found := s.orders[orderUID]
	if !found {
		return nil
	}
	order.Status = status
	order.LastModified = &lastModified
	s.orders[orderUID] = order

	return nil
}

func (s *inMemoryOrderStore) ListOrders(c context.Context, shopperUID string) ([]Order, error) {
	s.Lock()
	defer s.Unlock()

	orders := []Order{}
	for _, order := range s.orders {
		if order.ShopperUID == shopperUID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})

	return orders, nil
}

func (s *inMemoryOrderStore) ListItems(c context.Context, orderUID string) ([]OrderItem, error) {
	s.Lock()
	defer s.Unlock()

	return s.items[orderUID], nil
}
