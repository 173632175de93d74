package catalog

import (
	"fmt"
	"time"
)

// Product is the catalog entry. Cart lines carry a denormalized copy of it
// so the cart can be rendered without a catalog lookup; that copy may go
// stale relative to this record.
type Product struct {
	UID          string
	Name         string
	Description  string
	PriceInCents int64
	Currency     string
	ImageURL     string
	Stock        int
	Category     string
	CreatedAt    time.Time
}

func (p Product) GetPriceInCurrency() string {
	return fmt.Sprintf("%s %.2f", p.Currency, float32(p.PriceInCents)/100.0)
}
