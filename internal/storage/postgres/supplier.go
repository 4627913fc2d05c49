package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-intake/internal/domain/supplier"
)

const (
	supplierExistsSQL = `SELECT EXISTS (SELECT 1 FROM suppliers WHERE id = $1)`
	upsertSupplierSQL = `INSERT INTO suppliers (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
)

var _ supplier.Directory = (*SupplierRepository)(nil)

// SupplierRepository implements supplier.Directory backed by PostgreSQL.
type SupplierRepository struct {
	pool *pgxpool.Pool
}

// NewSupplierRepository returns a SupplierRepository that uses the given pool.
func NewSupplierRepository(pool *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{pool: pool}
}

// Exists reports whether a supplier with the given id exists.
func (r *SupplierRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, supplierExistsSQL, id).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check supplier %d", id)
	}
	return exists, nil
}

// Upsert pins the static supplier rows the adapters bind to. The explicit
// ids keep the seeded identities stable across environments.
func (r *SupplierRepository) Upsert(ctx context.Context, s supplier.Supplier) error {
	if _, err := r.pool.Exec(ctx, upsertSupplierSQL, s.ID, s.Name); err != nil {
		return errors.Wrapf(err, "upsert supplier %d", s.ID)
	}
	return nil
}
