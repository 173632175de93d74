package mykvstore

import (
	"context"
	"sync"
)

type inMemoryStore struct {
	sync.Mutex
	items map[string]string
}

func newInMemoryStore(c context.Context) (*inMemoryStore, func(), error) {
	return &inMemoryStore{
		items: make(map[string]string),
	}, func() {}, nil
}

func (s *inMemoryStore) Get(c context.Context, key string) (string, bool, error) {
	s.Lock()
	defer s.Unlock()

	value, exists := s.items[key]

	return value, exists, nil
}

func (s *inMemoryStore) Set(c context.Context, key string, value string) error {
	s.Lock()
	defer s.Unlock()

	s.items[key] = value

	return nil
}

func (s *inMemoryStore) Remove(c context.Context, key string) error {
	s.Lock()
	defer s.Unlock()

	delete(s.items, key)

	return nil
}
