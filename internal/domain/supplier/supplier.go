// Package supplier holds the static supplier reference entities. The two
// seeded suppliers are hard-bound by the format adapters.
package supplier

import "context"

// Supplier is a canonical supplier record.
type Supplier struct {
	ID   int64
	Name string
}

// Seeded supplier identities the format adapters bind to.
var (
	Alpha = Supplier{ID: 1, Name: "Alpha Trading Ltd"}
	Beta  = Supplier{ID: 2, Name: "Beta Wholesale GmbH"}
)

// Directory provides existence checks against the supplier catalog.
type Directory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}
