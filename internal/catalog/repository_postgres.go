package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/grocery-pos-backend/internal/pricing"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	lookupProductsQuery = `
		SELECT product_id, name, price
		FROM products
		WHERE product_id = ANY($1::int[])
	`
	getProductQuery = `
		SELECT product_id, name, price, stock
		FROM products
		WHERE product_id = $1
	`
	lockProductQuery = `
		SELECT stock
		FROM products
		WHERE product_id = $1
		FOR UPDATE
	`
	restockQuery = `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE product_id = $1
		RETURNING stock
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Lookup(ctx context.Context, ids []int) (map[int]pricing.Item, error) {
	out := make(map[int]pricing.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, lookupProductsQuery, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lookup products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    int
			name  string
			price decimal.Decimal
		)
		if err := rows.Scan(&id, &name, &price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[id] = pricing.Item{Name: name, Price: price}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (Product, error) {
	var p Product
	err := r.db.QueryRowContext(ctx, getProductQuery, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// Restock follows the checkout locking discipline: the row is locked before
// its stock is changed so concurrent checkouts never lose an update.
func (r *PostgresRepository) Restock(ctx context.Context, id int, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current int
	if err := tx.QueryRowContext(ctx, lockProductQuery, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("lock product: %w", err)
	}

	var stock int
	if err := tx.QueryRowContext(ctx, restockQuery, id, qty).Scan(&stock); err != nil {
		return 0, fmt.Errorf("restock product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return stock, nil
}
