package pricing

import (
	"sort"

	"github.com/shopspring/decimal"
)

// CartLine is one requested product and quantity. It is never persisted.
type CartLine struct {
	ProductID int
	Quantity  int
}

// Item is the catalog data the engine needs for one product.
type Item struct {
	Name  string
	Price decimal.Decimal
}

// Lookup resolves a product id to its current catalog item.
type Lookup func(productID int) (Item, bool)

// PricedLine is a cart line with its unit price snapshot applied.
type PricedLine struct {
	ProductID int
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Quote is the priced cart.
type Quote struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
	Lines    []PricedLine
}

// Round2 rounds to cents, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidateLines checks the cart shape without consulting the catalog.
func ValidateLines(lines []CartLine) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return &BadQuantityError{ProductID: ln.ProductID}
		}
	}
	return nil
}

// PriceCart prices lines in the caller's order. Lines that share a product id
// stay separate.
func PriceCart(lines []CartLine, taxRate decimal.Decimal, lookup Lookup) (Quote, error) {
	if err := ValidateLines(lines); err != nil {
		return Quote{}, err
	}

	q := Quote{Lines: make([]PricedLine, 0, len(lines))}
	sum := decimal.Zero
	for _, ln := range lines {
		item, ok := lookup(ln.ProductID)
		if !ok {
			return Quote{}, &ProductNotFoundError{ProductID: ln.ProductID}
		}
		unit := Round2(item.Price)
		lineTotal := Round2(unit.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		q.Lines = append(q.Lines, PricedLine{
			ProductID: ln.ProductID,
			Name:      item.Name,
			Quantity:  ln.Quantity,
			UnitPrice: unit,
			LineTotal: lineTotal,
		})
		sum = sum.Add(lineTotal)
	}

	q.Subtotal = Round2(sum)
	q.Tax = Round2(q.Subtotal.Mul(taxRate))
	q.Total = Round2(q.Subtotal.Add(q.Tax))
	return q, nil
}

// DistinctProductIDs returns the product ids referenced by lines, ascending.
// This is the lock order used by checkout.
func DistinctProductIDs(lines []CartLine) []int {
	seen := make(map[int]struct{}, len(lines))
	ids := make([]int, 0, len(lines))
	for _, ln := range lines {
		if _, ok := seen[ln.ProductID]; ok {
			continue
		}
		seen[ln.ProductID] = struct{}{}
		ids = append(ids, ln.ProductID)
	}
	sort.Ints(ids)
	return ids
}

// QuantitiesByProduct sums requested quantities per product id.
func QuantitiesByProduct(lines []CartLine) map[int]int {
	out := make(map[int]int, len(lines))
	for _, ln := range lines {
		out[ln.ProductID] += ln.Quantity
	}
	return out
}
