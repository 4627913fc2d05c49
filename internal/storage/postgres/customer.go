package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-intake/internal/domain/customer"
)

const (
	customerExistsSQL = `SELECT EXISTS (SELECT 1 FROM customers WHERE id = $1)`
	upsertCustomerSQL = `INSERT INTO customers (name, email) VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name`
)

var _ customer.Directory = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Directory backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Exists reports whether a customer with the given id exists.
func (r *CustomerRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, customerExistsSQL, id).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check customer %d", id)
	}
	return exists, nil
}

// Upsert inserts the customer or refreshes the name when the email is
// already present. Used by seeding.
func (r *CustomerRepository) Upsert(ctx context.Context, c customer.Customer) error {
	if _, err := r.pool.Exec(ctx, upsertCustomerSQL, c.Name, c.Email); err != nil {
		return errors.Wrapf(err, "upsert customer %s", c.Email)
	}
	return nil
}
