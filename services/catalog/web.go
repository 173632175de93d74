package catalog

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MarcGrol/shopfront/lib/mycontext"
	"github.com/MarcGrol/shopfront/lib/myhttp"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mystore"
)

type webService struct {
	service *service
	logger  mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(productStore mystore.Store[Product], logger mylog.Logger) *webService {
	return &webService{
		service: newService(productStore, logger),
		logger:  logger,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/products", s.productListPage()).Methods("GET")
	router.HandleFunc("/api/products/{productUID}", s.productDetailPage()).Methods("GET")

	return s.service.seed(c, defaultAssortment())
}

// GetProduct allows other services to fetch a product snapshot.
func (s *webService) GetProduct(c context.Context, productUID string) (Product, error) {
	return s.service.getProduct(c, productUID)
}

func (s *webService) productListPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		products, err := s.service.listProducts(c)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, products)
	}
}

func (s *webService) productDetailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		responseWriter := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		product, err := s.service.getProduct(c, productUID)
		if err != nil {
			responseWriter.WriteError(c, w, 1, err)
			return
		}

		responseWriter.Write(c, w, http.StatusOK, product)
	}
}

func defaultAssortment() []Product {
	return []Product{
		{
			UID:          "product_classic_white_tshirt",
			Name:         "Classic white t-shirt",
			Description:  "Soft cotton basic tee, wearable all year round",
			PriceInCents: 2900,
			Currency:     "EUR",
			ImageURL:     "https://picsum.photos/seed/tshirt/500/500",
			Stock:        50,
			Category:     "clothing",
			CreatedAt:    time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			UID:          "product_denim_jeans",
			Name:         "Denim jeans",
			Description:  "Slim-fit jeans with a comfortable stretch",
			PriceInCents: 5900,
			Currency:     "EUR",
			ImageURL:     "https://picsum.photos/seed/jeans/500/500",
			Stock:        30,
			Category:     "clothing",
			CreatedAt:    time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			UID:          "product_leather_crossbody_bag",
			Name:         "Leather crossbody bag",
			Description:  "Practical crossbody bag in premium leather",
			PriceInCents: 8900,
			Currency:     "EUR",
			ImageURL:     "https://picsum.photos/seed/bag/500/500",
			Stock:        20,
			Category:     "bags",
			CreatedAt:    time.Date(2025, time.January, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			UID:          "product_sneakers",
			Name:         "Sneakers",
			Description:  "Casual sneakers for sports and daily wear",
			PriceInCents: 7900,
			Currency:     "EUR",
			ImageURL:     "https://picsum.photos/seed/sneakers/500/500",
			Stock:        40,
			Category:     "shoes",
			CreatedAt:    time.Date(2025, time.January, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			UID:          "product_wool_knit_sweater",
			Name:         "Wool knit sweater",
			Description:  "Warm winter knit in soft wool",
			PriceInCents: 6900,
			Currency:     "EUR",
			ImageURL:     "https://picsum.photos/seed/sweater/500/500",
			Stock:        25,
			Category:     "clothing",
			CreatedAt:    time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			UID:          "product_leather_belt",
			Name:         "Leather belt",
			Description:  "Simple leather belt for business wear",
			PriceInCents: 3900,
			Currency:     "EUR",
			ImageURL:     "https://picsum.photos/seed/belt/500/500",
			Stock:        60,
			Category:     "accessories",
			CreatedAt:    time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC),
		},
	}
}
