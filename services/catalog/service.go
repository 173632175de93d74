package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/MarcGrol/shopfront/lib/myerrors"
	"github.com/MarcGrol/shopfront/lib/mylog"
	"github.com/MarcGrol/shopfront/lib/mystore"
)

type service struct {
	productStore mystore.Store[Product]
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(productStore mystore.Store[Product], logger mylog.Logger) *service {
	return &service{
		productStore: productStore,
		logger:       logger,
	}
}

func (s *service) listProducts(c context.Context) ([]Product, error) {
	s.logger.Log(c, "", mylog.SeverityDebug, "Fetch all products")

	products, err := s.productStore.List(c)
	if err != nil {
		return nil, myerrors.NewInternalError(err)
	}

	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})

	return products, nil
}

func (s *service) getProduct(c context.Context, productUID string) (Product, error) {
	s.logger.Log(c, productUID, mylog.SeverityDebug, "Fetch details of product %s", productUID)

	product, found, err := s.productStore.Get(c, productUID)
	if err != nil {
		return Product{}, myerrors.NewInternalError(err)
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", productUID))
	}

	return product, nil
}

// seed makes sure a fresh environment has something to sell.
func (s *service) seed(c context.Context, products []Product) error {
	existing, err := s.productStore.List(c)
	if err != nil {
		return myerrors.NewInternalError(err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, product := range products {
		err := s.productStore.Put(c, product.UID, product)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error seeding product %s: %s", product.UID, err))
		}
	}

	s.logger.Log(c, "", mylog.SeverityInfo, "Seeded catalog with %d products", len(products))

	return nil
}
