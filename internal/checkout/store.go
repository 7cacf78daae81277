package checkout

import (
	"context"

	"github.com/wichananm65/grocery-pos-backend/internal/catalog"
	"github.com/wichananm65/grocery-pos-backend/internal/order"
)

// Store opens a transaction scoped to a single checkout.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the write side of one checkout. Rollback after a successful Commit is
// a no-op.
type Tx interface {
	// LockProducts locks the rows of ids, which must be sorted ascending, and
	// returns their current state. Unknown ids are absent from the result.
	LockProducts(ctx context.Context, ids []int) (map[int]catalog.Product, error)
	InsertOrder(ctx context.Context, o order.Order) (int64, error)
	InsertLines(ctx context.Context, orderID int64, lines []order.Line) error
	DecrementStock(ctx context.Context, productID, qty int) error
	Commit() error
	Rollback() error
}
