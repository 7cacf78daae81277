package catalog

import "github.com/shopspring/decimal"

// Product maps to a row of the `products` table. Stock is a mutable counter
// that only checkout and restock change, always under a row lock.
type Product struct {
	ID    int
	Name  string
	Price decimal.Decimal
	Stock int
}

// productResponse is the JSON shape returned by the product endpoints.
type productResponse struct {
	ProductID int     `json:"ProductID"`
	Name      string  `json:"Name"`
	Price     float64 `json:"Price"`
	Stock     int     `json:"stock"`
}

func toResponse(p Product) productResponse {
	return productResponse{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price.InexactFloat64(),
		Stock:     p.Stock,
	}
}
