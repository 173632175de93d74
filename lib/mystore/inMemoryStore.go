package mystore

import (
	"context"
	"reflect"
	"sync"
)

type inMemoryStore[T any] struct {
	sync.Mutex
	Items map[string]T
}

func newInMemoryStore[T any](c context.Context) (*inMemoryStore[T], func(), error) {
	return &inMemoryStore[T]{
		Items: make(map[string]T),
	}, func() {}, nil
}

func (s *inMemoryStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	// Start transaction
	s.Lock()

	ctx := context.WithValue(c, ctxTransactionKey{}, true)

	// Within this block everything is transactional
	err := f(ctx)
	if err != nil {

		// Rollback
		s.Unlock()

		return err
	}

	// Commit
	s.Unlock()

	return nil
}

func (s *inMemoryStore[T]) Put(c context.Context, uid string, value T) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
	}

	s.Items[uid] = value

	if nonTransactional {
		s.Unlock()
	}

	return nil
}

func (s *inMemoryStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
	}
	result, exists := s.Items[uid]

	if nonTransactional {
		s.Unlock()
	}

	return result, exists, nil
}

func (s *inMemoryStore[T]) Remove(c context.Context, uid string) error {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
	}

	delete(s.Items, uid)

	if nonTransactional {
		s.Unlock()
	}

	return nil
}

func (s *inMemoryStore[T]) List(c context.Context) ([]T, error) {
	nonTransactional := c.Value(ctxTransactionKey{}) == nil

	if nonTransactional {
		s.Lock()
	}

	result := make([]T, 0, len(s.Items))
	for _, v := range s.Items {
		result = append(result, v)
	}

	if nonTransactional {
		s.Unlock()
	}

	return result, nil
}

func (s *inMemoryStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	all, err := s.List(c)
	if err != nil {
		return nil, err
	}

	// Only equality filters are supported, which is all the gcloud variant uses too
	result := make([]T, 0, len(all))
	for _, item := range all {
		if matchesFilters(item, filters) {
			result = append(result, item)
		}
	}

	return result, nil
}

func matchesFilters[T any](item T, filters []Filter) bool {
	value := reflect.ValueOf(item)
	for _, filter := range filters {
		field := value.FieldByName(filter.Field)
		if !field.IsValid() {
			return false
		}
		if !reflect.DeepEqual(field.Interface(), filter.Value) {
			return false
		}
	}
	return true
}
