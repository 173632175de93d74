package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopfront/lib/mykvstore"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mypublisher"
	"github.com/MarcGrol/shopfront/lib/mypubsub"
	"github.com/MarcGrol/shopfront/lib/myqueue"
	"github.com/MarcGrol/shopfront/lib/myrdb"
	"github.com/MarcGrol/shopfront/lib/mystore"
	"github.com/MarcGrol/shopfront/lib/mytime"
	"github.com/MarcGrol/shopfront/lib/myuuid"
	"github.com/MarcGrol/shopfront/services/cart"
	"github.com/MarcGrol/shopfront/services/catalog"
	"github.com/MarcGrol/shopfront/services/checkout"
	"github.com/MarcGrol/shopfront/services/checkout/molliepayer"
	"github.com/MarcGrol/shopfront/services/checkout/stripepayer"
	"github.com/MarcGrol/shopfront/services/notification"
	"github.com/MarcGrol/shopfront/services/session"
)

func main() {
	c := context.Background()
	logger := mylog.New("shopfront")
	router := mux.NewRouter()

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	kvStore, kvStoreCleanup, err := mykvstore.New(c)
	if err != nil {
		log.Fatalf("Error creating local key-value store: %s", err)
	}
	defer kvStoreCleanup()

	sessionService := session.NewService(createTokenVerifier(c), kvStore, logger, cookieSecret())
	sessionService.RegisterEndpoints(c, router)

	productStore, productStoreCleanup, err := mystore.New[catalog.Product](c)
	if err != nil {
		log.Fatalf("Error creating product store: %s", err)
	}
	defer productStoreCleanup()

	catalogService := catalog.NewService(productStore, logger)
	err = catalogService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering catalog service: %s", err)
	}

	remoteCartStore, orderStore, rdbCleanup, err := createRelationalStores(c, uuider)
	if err != nil {
		log.Fatalf("Error creating relational stores: %s", err)
	}
	defer rdbCleanup()

	cartService := cart.NewService(sessionService.Observer(), kvStore, remoteCartStore,
		catalogService, publisher, uuider, logger)
	err = cartService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering cart service: %s", err)
	}

	checkoutStore, checkoutStoreCleanup, err := mystore.New[checkout.CheckoutContext](c)
	if err != nil {
		log.Fatalf("Error creating checkout store: %s", err)
	}
	defer checkoutStoreCleanup()

	payer, err := createPayer(uuider)
	if err != nil {
		log.Fatalf("Error creating payer: %s", err)
	}

	checkoutService := checkout.NewService(sessionService.Observer(), cartService, orderStore,
		checkoutStore, payer, publisher, nower, uuider, logger)
	err = checkoutService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering checkout service: %s", err)
	}

	emailer := notification.NewSendgridEmailer(os.Getenv("SENDGRID_API_KEY"),
		"Shopfront", "orders@shopfront.example.com")
	notificationService := notification.NewService(emailer, pubsub, logger)
	err = notificationService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error registering notification service: %s", err)
	}

	// Resolve only after every subscriber is attached, so all of them see
	// the initial session state
	sessionService.Resolve(c)

	startWebServerBlocking(router)
}

func createTokenVerifier(c context.Context) session.TokenVerifier {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") == "" {
		return session.NewFakeVerifier()
	}

	verifier, err := session.NewFirebaseVerifier(c)
	if err != nil {
		log.Fatalf("Error creating firebase verifier: %s", err)
	}
	return verifier
}

// createRelationalStores connects the server-side cart and the orders to
// postgres when DATABASE_URL is set, in-memory stores otherwise.
func createRelationalStores(c context.Context, uuider myuuid.UUIDer) (cart.RemoteCartStore, checkout.OrderStore, func(), error) {
	if os.Getenv("DATABASE_URL") == "" {
		return cart.NewInMemoryCartStore(), checkout.NewInMemoryOrderStore(), func() {}, nil
	}

	db, dbCleanup, err := myrdb.New(c)
	if err != nil {
		return nil, nil, nil, err
	}

	remoteCartStore, err := cart.NewPostgresCartStore(c, db, uuider)
	if err != nil {
		dbCleanup()
		return nil, nil, nil, err
	}

	orderStore, err := checkout.NewPostgresOrderStore(c, db)
	if err != nil {
		dbCleanup()
		return nil, nil, nil, err
	}

	return remoteCartStore, orderStore, dbCleanup, nil
}

func createPayer(uuider myuuid.UUIDer) (checkout.Payer, error) {
	switch os.Getenv("PAYMENT_PROVIDER") {
	case "mollie":
		return molliepayer.New(os.Getenv("MOLLIE_API_KEY"), uuider)
	default:
		return stripepayer.New(os.Getenv("STRIPE_API_KEY")), nil
	}
}

func cookieSecret() string {
	secret := os.Getenv("SESSION_COOKIE_SECRET")
	if secret == "" {
		secret = "insecure-dev-cookie-secret"
	}
	return secret
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
