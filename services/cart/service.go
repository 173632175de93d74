package cart

import (
	"sync"

	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/session"
)

type cartState int

const (
	cartStateUninitialized cartState = iota
	cartStateAnonymous
	cartStateAuthenticated
)

func (s cartState) String() string {
	switch s {
	case cartStateAnonymous:
		return "anonymous"
	case cartStateAuthenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// service reconciles the in-memory cart with the device-local copy and,
// for a signed-in shopper, with the server-side cart. All mutations are
// serialized behind the mutex: the in-memory cart and the local copy are
// updated before the call returns, the server-side write happens on a
// background goroutine and is never rolled back.
type service struct {
	sessions  session.Observer
	local     *localCartCache
	remote    RemoteCartStore
	publisher mypublisher.Publisher
	uuider    myuuid.UUIDer
	logger    mylog.Logger

	mutex      sync.Mutex
	state      cartState
	shopperUID string
	cart       Cart

	remoteWrites sync.WaitGroup
}

func newService(sessions session.Observer, local *localCartCache, remote RemoteCartStore,
	publisher mypublisher.Publisher, uuider myuuid.UUIDer, logger mylog.Logger) *service {
	return &service{
		sessions:  sessions,
		local:     local,
		remote:    remote,
		publisher: publisher,
		uuider:    uuider,
		logger:    logger,
		state:     cartStateUninitialized,
	}
}

// waitForRemoteWrites blocks until all pending background writes to the
// server-side cart have completed. Tests use it to make assertions
// deterministic.
func (s *service) waitForRemoteWrites() {
	s.remoteWrites.Wait()
}
