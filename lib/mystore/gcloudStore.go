package mystore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/datastore"
)

type gcloudStore[T any] struct {
	client *datastore.Client
	kind   string
}

func newGcloudStore[T any](c context.Context) (*gcloudStore[T], func(), error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	client, err := datastore.NewClient(c, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating datastore-client: %s", err)
	}

	val := new(T)
	kind := fmt.Sprintf("%T", *val)
	if strings.Contains(kind, ".") {
		kind = strings.Split(kind, ".")[1]
	}

	return &gcloudStore[T]{
			client: client,
			kind:   kind,
		}, func() {
			client.Close()
		}, nil
}

func (s *gcloudStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if c.Value(ctxTransactionKey{}) != nil {
		// Nested transactions just run within the outer one
		return f(c)
	}

	_, err := s.client.RunInTransaction(c, func(t *datastore.Transaction) error {
		return f(context.WithValue(c, ctxTransactionKey{}, t))
	})
	if err != nil {
		return fmt.Errorf("error running transaction: %s", err)
	}

	return nil
}

func (s *gcloudStore[T]) Put(c context.Context, uid string, value T) error {
	if t, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction); ok {
		_, err := t.Put(datastore.NameKey(s.kind, uid, nil), &value)
		return err
	}

	_, err := s.client.Put(c, datastore.NameKey(s.kind, uid, nil), &value)
	if err != nil {
		return fmt.Errorf("error storing %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var result T
	var err error

	if t, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction); ok {
		err = t.Get(datastore.NameKey(s.kind, uid, nil), &result)
	} else {
		err = s.client.Get(c, datastore.NameKey(s.kind, uid, nil), &result)
	}
	if err == datastore.ErrNoSuchEntity {
		return result, false, nil
	}
	if err != nil {
		return result, false, fmt.Errorf("error fetching %s with uid %s: %s", s.kind, uid, err)
	}

	return result, true, nil
}

func (s *gcloudStore[T]) Remove(c context.Context, uid string) error {
	if t, ok := c.Value(ctxTransactionKey{}).(*datastore.Transaction); ok {
		return t.Delete(datastore.NameKey(s.kind, uid, nil))
	}

	err := s.client.Delete(c, datastore.NameKey(s.kind, uid, nil))
	if err != nil {
		return fmt.Errorf("error removing %s with uid %s: %s", s.kind, uid, err)
	}

	return nil
}

func (s *gcloudStore[T]) List(c context.Context) ([]T, error) {
	result := []T{}

	_, err := s.client.GetAll(c, datastore.NewQuery(s.kind), &result)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %s", s.kind, err)
	}

	return result, nil
}

func (s *gcloudStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	result := []T{}

	query := datastore.NewQuery(s.kind)
	for _, filter := range filters {
		query = query.FilterField(filter.Field, filter.Compare, filter.Value)
	}
	if orderByField != "" {
		query = query.Order(orderByField)
	}

	_, err := s.client.GetAll(c, query, &result)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %s", s.kind, err)
	}

	return result, nil
}
