package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	upsertGuestQuery = `
		INSERT INTO customers (customer_id, first_name, last_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO NOTHING
	`
	// keep the serial ahead of explicitly inserted ids
	syncCustomerSequenceQuery = `
		SELECT setval(pg_get_serial_sequence('customers', 'customer_id'),
			GREATEST((SELECT MAX(customer_id) FROM customers), 1))
	`
	findByPhoneQuery = `
		SELECT customer_id
		FROM customers
		WHERE regexp_replace(phone, '[^0-9+]', '', 'g') = $1
		ORDER BY customer_id
		LIMIT 1
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) EnsureGuest(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, upsertGuestQuery, id, guestFirstName, guestLastName); err != nil {
		return fmt.Errorf("upsert guest customer: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, syncCustomerSequenceQuery); err != nil {
		return fmt.Errorf("sync customer sequence: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindIDByPhone(ctx context.Context, phone string) (int64, bool, error) {
	phone = NormalizePhone(phone)
	if phone == "" {
		return 0, false, nil
	}

	var id int64
	err := r.db.QueryRowContext(ctx, findByPhoneQuery, phone).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("find customer by phone: %w", err)
	}
	return id, true, nil
}
