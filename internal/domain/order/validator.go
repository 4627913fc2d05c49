package order

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/go-faster/errors"

	"github.com/xenking/order-intake/internal/domain/customer"
	"github.com/xenking/order-intake/internal/domain/product"
	"github.com/xenking/order-intake/internal/domain/supplier"
)

const maxEmailLength = 200

// Validator checks a canonical order against structural and referential
// business invariants before it is allowed to reach persistence.
//
// Validation is not short-circuited: every rule runs and every failure is
// collected, so the caller can return a single aggregated client error.
// Lookup transport failures abort validation with a wrapped error instead
// of being reported as violations.
type Validator struct {
	customers customer.Directory
	suppliers supplier.Directory
	products  product.Catalog
}

// NewValidator creates a Validator with the required catalog collaborators.
func NewValidator(
	customers customer.Directory,
	suppliers supplier.Directory,
	products product.Catalog,
) *Validator {
	return &Validator{
		customers: customers,
		suppliers: suppliers,
		products:  products,
	}
}

// Validate returns nil when o satisfies all invariants, a Violations error
// listing every failed rule otherwise.
func (v *Validator) Validate(ctx context.Context, o *Order) error {
	var found Violations

	// At least one customer-identifying field. Both present is fine.
	switch {
	case o.CustomerID == nil && o.CustomerEmail == "":
		found = append(found, Violation{
			Field:   "customerId",
			Message: "either customerId or customerEmail is required",
		})
	default:
		if o.CustomerID != nil {
			vs, err := v.checkCustomerID(ctx, *o.CustomerID)
			if err != nil {
				return err
			}
			found = append(found, vs...)
		}
		if o.CustomerEmail != "" {
			found = append(found, checkEmail(o.CustomerEmail)...)
		}
	}

	vs, err := v.checkSupplierID(ctx, o.SupplierID)
	if err != nil {
		return err
	}
	found = append(found, vs...)

	if o.OrderDate.IsZero() {
		found = append(found, Violation{Field: "orderDate", Message: "order date is required"})
	}
	if !o.Status.Valid() {
		found = append(found, Violation{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", string(o.Status)),
		})
	}

	vs, err = v.checkItems(ctx, o.Items)
	if err != nil {
		return err
	}
	found = append(found, vs...)

	if len(found) > 0 {
		return found
	}
	return nil
}

func (v *Validator) checkCustomerID(ctx context.Context, id int64) (Violations, error) {
	if id <= 0 {
		return Violations{{Field: "customerId", Message: "must be a positive integer"}}, nil
	}
	ok, err := v.customers.Exists(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "check customer %d", id)
	}
	if !ok {
		return Violations{{
			Field:   "customerId",
			Message: fmt.Sprintf("customer %d does not exist", id),
		}}, nil
	}
	return nil, nil
}

func checkEmail(email string) Violations {
	var found Violations
	if len(email) > maxEmailLength {
		found = append(found, Violation{
			Field:   "customerEmail",
			Message: fmt.Sprintf("must be at most %d characters", maxEmailLength),
		})
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		found = append(found, Violation{Field: "customerEmail", Message: "malformed email address"})
	}
	return found
}

func (v *Validator) checkSupplierID(ctx context.Context, id int64) (Violations, error) {
	if id <= 0 {
		return Violations{{Field: "supplierId", Message: "must be a positive integer"}}, nil
	}
	ok, err := v.suppliers.Exists(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "check supplier %d", id)
	}
	if !ok {
		return Violations{{
			Field:   "supplierId",
			Message: fmt.Sprintf("supplier %d does not exist", id),
		}}, nil
	}
	return nil, nil
}

// checkItems enforces the per-item invariants: positive quantity,
// non-negative price, and product existence for every line. An order with
// a structurally valid collection but a single bad line is still rejected.
func (v *Validator) checkItems(ctx context.Context, items []Item) (Violations, error) {
	if len(items) == 0 {
		return Violations{{Field: "orderItems", Message: "order must contain at least one item"}}, nil
	}

	var found Violations
	for i, it := range items {
		if it.Quantity <= 0 {
			found = append(found, Violation{
				Field:   fmt.Sprintf("orderItems[%d].quantity", i),
				Message: "must be greater than 0",
			})
		}
		if it.Price.IsNegative() {
			found = append(found, Violation{
				Field:   fmt.Sprintf("orderItems[%d].price", i),
				Message: "must not be negative",
			})
		}

		if it.ProductID <= 0 {
			found = append(found, Violation{
				Field:   fmt.Sprintf("orderItems[%d].productId", i),
				Message: "must be a positive integer",
			})
			continue
		}
		ok, err := v.products.Exists(ctx, it.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "check product %d", it.ProductID)
		}
		if !ok {
			found = append(found, Violation{
				Field:   fmt.Sprintf("orderItems[%d].productId", i),
				Message: fmt.Sprintf("product %d does not exist", it.ProductID),
			})
		}
	}
	return found, nil
}
