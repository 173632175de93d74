package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcGrol/shopfront/services/catalog"
)

// inMemoryCartStore has the same conflict semantics as the postgres
// variant. It backs local development and tests.
type inMemoryCartStore struct {
	sync.Mutex
	carts    map[string]map[string]CartLine
	nextRow  int
	downWith error
}

func NewInMemoryCartStore() *inMemoryCartStore {
	return &inMemoryCartStore{
		carts: map[string]map[string]CartLine{},
	}
}

// SimulateUnavailable makes every subsequent operation fail with the given
// error, until called again with nil.
func (s *inMemoryCartStore) SimulateUnavailable(err error) {
	s.Lock()
	defer s.Unlock()
	s.downWith = err
}

func (s *inMemoryCartStore) Load(c context.Context, shopperUID string) (Cart, error) {
	s.Lock()
	defer s.Unlock()

	if s.downWith != nil {
		return Cart{}, s.downWith
	}

	cart := Cart{}
	for _, line := range s.carts[shopperUID] {
		cart.Lines = append(cart.Lines, line)
	}

	return cart, nil
}

func (s *inMemoryCartStore) UpsertLine(c context.Context, shopperUID string, productUID string, quantity int, snapshot catalog.Product) error {
	s.Lock()
	defer s.Unlock()

	if s.downWith != nil {
		return s.downWith
	}

	lines, exists := s.carts[shopperUID]
	if !exists {
		lines = map[string]CartLine{}
		s.carts[shopperUID] = lines
	}

	line, exists := lines[productUID]
	if exists {
		line.Quantity = quantity
		line.Product = snapshot
	} else {
		s.nextRow++
		line = CartLine{
			UID:        fmt.Sprintf("row_%d", s.nextRow),
			ProductUID: productUID,
			Quantity:   quantity,
			Product:    snapshot,
		}
	}
	lines[productUID] = line

	return nil
}

func (s *inMemoryCartStore) RemoveLine(c context.Context, shopperUID string, productUID string) error {
	s.Lock()
	defer s.Unlock()

	if s.downWith != nil {
		return s.downWith
	}

	delete(s.carts[shopperUID], productUID)

	return nil
}

func (s *inMemoryCartStore) UpdateQuantity(c context.Context, shopperUID string, productUID string, quantity int) error {
	s.Lock()
	defer s.Unlock()

	if s.downWith != nil {
		return s.downWith
	}

	line, exists := s.carts[shopperUID][productUID]
	if !exists {
		return nil
	}
	line.Quantity = quantity
	s.carts[shopperUID][productUID] = line

	return nil
}

func (s *inMemoryCartStore) ClearAll(c context.Context, shopperUID string) error {
	s.Lock()
	defer s.Unlock()

	if s.downWith != nil {
		return s.downWith
	}

	delete(s.carts, shopperUID)

	return nil
}
