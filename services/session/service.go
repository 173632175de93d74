package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
)

const (
	tokenStorageKey = "session_id_token"
)

type service struct {
	verifier TokenVerifier
	kvStore  mykvstore.KVStore
	logger   mylog.Logger

	mutex             sync.Mutex
	resolved          bool
	current           *Identity
	subscribers       map[int]func(c context.Context, t Transition)
	nextSubscriberUID int
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(verifier TokenVerifier, kvStore mykvstore.KVStore, logger mylog.Logger) *service {
	return &service{
		verifier:    verifier,
		kvStore:     kvStore,
		logger:      logger,
		subscribers: map[int]func(c context.Context, t Transition){},
	}
}

func (s *service) Current(c context.Context) (Identity, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *service) Subscribe(fn func(c context.Context, t Transition)) func() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	uid := s.nextSubscriberUID
	s.nextSubscriberUID++
	s.subscribers[uid] = fn

	return func() {
		s.mutex.Lock()
		defer s.mutex.Unlock()
		delete(s.subscribers, uid)
	}
}

// resolve determines the initial session state. A failure against the auth
// backend degrades to anonymous: the storefront must keep working on the
// local cart only.
func (s *service) resolve(c context.Context) {
	idToken, found, err := s.kvStore.Get(c, tokenStorageKey)
	if err != nil || !found || idToken == "" {
		s.logger.Log(c, "", mylog.SeverityInfo, "No stored session, resolving as anonymous")
		s.transitionTo(c, nil)
		return
	}

	identity, err := s.verifier.Verify(c, idToken)
	if err != nil {
		s.logger.Log(c, "", mylog.SeverityWarn, "Could not verify stored session, resolving as anonymous: %s", err)
		s.transitionTo(c, nil)
		return
	}

	s.logger.Log(c, identity.UID, mylog.SeverityInfo, "Resolved session for shopper %s", identity.UID)
	s.transitionTo(c, &identity)
}

func (s *service) signIn(c context.Context, idToken string) (Identity, error) {
	identity, err := s.verifier.Verify(c, idToken)
	if err != nil {
		return Identity{}, myerrors.NewAuthenticationError(fmt.Errorf("error verifying id-token: %s", err))
	}

	err = s.kvStore.Set(c, tokenStorageKey, idToken)
	if err != nil {
		s.logger.Log(c, identity.UID, mylog.SeverityWarn, "Error persisting session token: %s", err)
	}

	s.logger.Log(c, identity.UID, mylog.SeverityInfo, "Shopper %s signed in", identity.UID)
	s.transitionTo(c, &identity)

	return identity, nil
}

func (s *service) signOut(c context.Context) error {
	err := s.kvStore.Remove(c, tokenStorageKey)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error removing session token: %s", err))
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Shopper signed out")
	s.transitionTo(c, nil)

	return nil
}

func (s *service) transitionTo(c context.Context, next *Identity) {
	s.mutex.Lock()

	previous := s.current
	s.current = next
	s.resolved = true

	transition := Transition{
		Previous: previous,
		Current:  next,
	}

	subscribers := make([]func(c context.Context, t Transition), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subscribers = append(subscribers, fn)
	}

	// Deliver outside the lock: subscribers are allowed to call back into Current()
	s.mutex.Unlock()

	for _, fn := range subscribers {
		fn(c, transition)
	}
}
