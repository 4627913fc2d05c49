package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/order-intake/internal/domain/product"
)

const (
	productExistsSQL   = `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`
	resolveCodeSQL     = `SELECT id FROM products WHERE code = $1`
	insertProductSQL   = `INSERT INTO products (code, name, price, category) VALUES ($1, $2, $3, $4) RETURNING id`
	upsertProductSQL   = `INSERT INTO products (code, name, price, category) VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price, category = EXCLUDED.category`
	uniqueViolationCode = "23505"
)

var _ product.Catalog = (*ProductRepository)(nil)

// ProductRepository implements product.Catalog backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Exists reports whether a product with the given id is in the catalog.
func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, productExistsSQL, id).Scan(&exists); err != nil {
		return false, errors.Wrapf(err, "check product %d", id)
	}
	return exists, nil
}

// ResolveCode maps an external product code to the canonical product id.
// Unknown codes yield product.ErrNotFound; storage faults propagate wrapped.
func (r *ProductRepository) ResolveCode(ctx context.Context, code uuid.UUID) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, resolveCodeSQL, code).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, product.ErrNotFound
		}
		return 0, errors.Wrapf(err, "resolve product code %s", code)
	}
	return id, nil
}

// Create inserts a new product and assigns its id. A duplicate external code
// yields product.ErrCodeConflict.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	err := r.pool.QueryRow(ctx, insertProductSQL, p.Code, p.Name, p.Price, p.Category).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return product.ErrCodeConflict
		}
		return errors.Wrapf(err, "create product %s", p.Code)
	}
	return nil
}

// Upsert inserts the product or refreshes name, price, and category when the
// code is already present. Used by seeding and catalog ingestion.
func (r *ProductRepository) Upsert(ctx context.Context, p *product.Product) error {
	if _, err := r.pool.Exec(ctx, upsertProductSQL, p.Code, p.Name, p.Price, p.Category); err != nil {
		return errors.Wrapf(err, "upsert product %s", p.Code)
	}
	return nil
}
