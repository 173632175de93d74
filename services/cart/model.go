package cart

import (
	"github.com/MarcGrol/shopfront/services/catalog"
)

// CartLine holds one product in the cart. Locally created lines get a fresh
// UID from the uuider; lines loaded from the server carry the server's own
// row UID instead. The two identifier spaces are never compared with each
// other: ProductUID is the join key.
type CartLine struct {
	UID        string
	ProductUID string
	Quantity   int
	Product    catalog.Product
}

// Cart holds at most one line per product.
type Cart struct {
	Lines []CartLine
}

func (cart Cart) findLine(productUID string) (int, bool) {
	for i, line := range cart.Lines {
		if line.ProductUID == productUID {
			return i, true
		}
	}
	return 0, false
}

func (cart Cart) IsEmpty() bool {
	return len(cart.Lines) == 0
}

func (cart Cart) TotalAmountInCents() int64 {
	var total int64
	for _, line := range cart.Lines {
		total += line.Product.PriceInCents * int64(line.Quantity)
	}
	return total
}

func (cart Cart) TotalItemCount() int {
	total := 0
	for _, line := range cart.Lines {
		total += line.Quantity
	}
	return total
}

func (cart Cart) clone() Cart {
	lines := make([]CartLine, len(cart.Lines))
	copy(lines, cart.Lines)
	return Cart{Lines: lines}
}
