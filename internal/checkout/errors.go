package checkout

import (
	"fmt"
	"strings"
)

// InsufficientStockError is returned under the strict policy when the summed
// quantity of a product exceeds its locked stock.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// StockPolicy decides what happens when a sale would take stock below zero.
type StockPolicy string

const (
	// StockStrict fails the checkout with InsufficientStockError.
	StockStrict StockPolicy = "strict"
	// StockPermissive lets the sale through and the stock go negative until
	// the next restock.
	StockPermissive StockPolicy = "permissive"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch p := StockPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return StockStrict, nil
	case StockStrict, StockPermissive:
		return p, nil
	default:
		return "", fmt.Errorf("unknown stock policy %q", s)
	}
}
