// Package customer holds the customer reference entity and the narrow
// lookup capability the order pipeline consumes.
package customer

import "context"

// Customer is a canonical customer record.
type Customer struct {
	ID    int64
	Name  string
	Email string
}

// Directory provides existence checks against the customer catalog.
type Directory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
