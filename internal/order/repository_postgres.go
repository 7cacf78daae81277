package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const foreignKeyViolation = "23503"

const (
	receiptHeaderQuery = `
		SELECT o.order_id, o.date_placed, o.status, o.customer_id, o.employee_id,
			c.first_name, c.last_name, o.subtotal, o.tax, o.total
		FROM orders o
		LEFT JOIN customers c ON c.customer_id = o.customer_id
		WHERE o.order_id = $1
	`
	receiptLinesQuery = `
		SELECT d.product_id, COALESCE(p.name, ''), d.quantity, d.price
		FROM order_details d
		LEFT JOIN products p ON p.product_id = d.product_id
		WHERE d.order_id = $1
		ORDER BY d.line_id
	`
	listRecentQuery = `
		SELECT order_id, customer_id, employee_id, date_placed, status, subtotal, tax, total
		FROM orders
		ORDER BY date_placed DESC, order_id DESC
		LIMIT $1
	`
	assignCustomerQuery = `UPDATE orders SET customer_id = $2 WHERE order_id = $1`
	updateStatusQuery   = `UPDATE orders SET status = $2 WHERE order_id = $1`
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetReceipt(ctx context.Context, orderID int64) (*Receipt, error) {
	var (
		rec                 Receipt
		customerID          sql.NullInt64
		employeeID          sql.NullInt64
		firstName, lastName sql.NullString
	)
	err := r.db.QueryRowContext(ctx, receiptHeaderQuery, orderID).Scan(
		&rec.OrderID, &rec.DatePlaced, &rec.Status, &customerID, &employeeID,
		&firstName, &lastName, &rec.Subtotal, &rec.Tax, &rec.Total,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query receipt header: %w", err)
	}
	rec.CustomerID = nullableID(customerID)
	rec.EmployeeID = nullableID(employeeID)
	rec.CustomerName = strings.TrimSpace(firstName.String + " " + lastName.String)

	rows, err := r.db.QueryContext(ctx, receiptLinesQuery, orderID)
	if err != nil {
		return nil, fmt.Errorf("query receipt lines: %w", err)
	}
	defer rows.Close()

	rec.Items = make([]ReceiptItem, 0)
	for rows.Next() {
		var l Line
		var name string
		if err := rows.Scan(&l.ProductID, &name, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan receipt line: %w", err)
		}
		rec.Items = append(rec.Items, ReceiptItem{
			ProductID: l.ProductID,
			Name:      name,
			Qty:       l.Quantity,
			Price:     l.UnitPrice,
			LineTotal: lineTotal(l),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate receipt lines: %w", err)
	}
	return &rec, nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listRecentQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var (
			o                      Order
			customerID, employeeID sql.NullInt64
			subtotal, tax, total   decimal.Decimal
		)
		if err := rows.Scan(&o.ID, &customerID, &employeeID, &o.DatePlaced, &o.Status, &subtotal, &tax, &total); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.CustomerID = nullableID(customerID)
		o.EmployeeID = nullableID(employeeID)
		o.Subtotal, o.Tax, o.Total = subtotal, tax, total
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return orders, nil
}

func (r *PostgresRepository) AssignCustomer(ctx context.Context, orderID, customerID int64) error {
	res, err := r.db.ExecContext(ctx, assignCustomerQuery, orderID, customerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("assign customer: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, status string) error {
	status, ok := NormalizeStatus(status)
	if !ok {
		return ErrInvalidStatus
	}
	res, err := r.db.ExecContext(ctx, updateStatusQuery, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}
