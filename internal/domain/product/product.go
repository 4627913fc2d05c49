package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrCodeConflict is returned when creating a product whose external
	// code is already taken.
	ErrCodeConflict = errors.New("product code already exists")
)

// Product is a canonical catalog item. Code is the immutable
// externally-facing identifier used by suppliers that do not share the
// internal numeric id space.
type Product struct {
	ID       int64
	Code     uuid.UUID
	Name     string
	Price    decimal.Decimal
	Category string
}

// Catalog defines the read capabilities the order pipeline consumes. All
// operations are side-effect free and safe for concurrent use.
type Catalog interface {
	Exists(ctx context.Context, id int64) (bool, error)
	// ResolveCode maps an external product code to the canonical product
	// id. Unknown codes yield ErrNotFound; any other error is a storage
	// fault and must propagate unchanged.
	ResolveCode(ctx context.Context, code uuid.UUID) (int64, error)
}
