package checkout

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/wichananm65/grocery-pos-backend/internal/catalog"
	"github.com/wichananm65/grocery-pos-backend/internal/order"
)

const (
	lockProductsQuery = `
		SELECT product_id, name, price, stock
		FROM products
		WHERE product_id = ANY($1::int[])
		ORDER BY product_id
		FOR UPDATE
	`
	insertOrderQuery = `
		INSERT INTO orders (customer_id, employee_id, date_placed, status, subtotal, tax, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING order_id
	`
	insertLineQuery = `
		INSERT INTO order_details (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
	`
	decrementStockQuery = `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE product_id = $1
	`
)

// PostgresStore runs each checkout in its own database transaction. Row locks
// taken by LockProducts serialize overlapping checkouts.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &postgresTx{tx: tx}, nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) LockProducts(ctx context.Context, ids []int) (map[int]catalog.Product, error) {
	rows, err := t.tx.QueryContext(ctx, lockProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()

	out := make(map[int]catalog.Product, len(ids))
	for rows.Next() {
		var p catalog.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock); err != nil {
			return nil, fmt.Errorf("scan locked product: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate locked products: %w", err)
	}
	return out, nil
}

func (t *postgresTx) InsertOrder(ctx context.Context, o order.Order) (int64, error) {
	var id int64
	err := t.tx.QueryRowContext(ctx, insertOrderQuery,
		nullInt64(o.CustomerID), nullInt64(o.EmployeeID), o.DatePlaced, o.Status,
		o.Subtotal.StringFixed(2), o.Tax.StringFixed(2), o.Total.StringFixed(2),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

func (t *postgresTx) InsertLines(ctx context.Context, orderID int64, lines []order.Line) error {
	for _, l := range lines {
		if _, err := t.tx.ExecContext(ctx, insertLineQuery, orderID, l.ProductID, l.Quantity, l.UnitPrice.StringFixed(2)); err != nil {
			return fmt.Errorf("insert order line for product %d: %w", l.ProductID, err)
		}
	}
	return nil
}

func (t *postgresTx) DecrementStock(ctx context.Context, productID, qty int) error {
	res, err := t.tx.ExecContext(ctx, decrementStockQuery, productID, qty)
	if err != nil {
		return fmt.Errorf("decrement stock for product %d: %w", productID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("decrement stock for product %d: %w", productID, catalog.ErrNotFound)
	}
	return nil
}

func (t *postgresTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *postgresTx) Rollback() error {
	return t.tx.Rollback()
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
