package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the order fulfilment states.
type Status string

const (
	// StatusReceived is the initial state of every ingested order.
	StatusReceived Status = "Received"
	// StatusPicking means warehouse picking is in progress.
	StatusPicking Status = "Picking"
	// StatusDispatched means the order has left the warehouse.
	StatusDispatched Status = "Dispatched"
	// StatusDelivered means the order reached the customer.
	StatusDelivered Status = "Delivered"
)

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusReceived, StatusPicking, StatusDispatched, StatusDelivered:
		return true
	}
	return false
}

// ParseStatus converts raw into a Status, reporting whether it is one of the
// defined statuses.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	return s, s.Valid()
}

// Address is the canonical postal address shape all supplier formats
// normalize into. Only Street is mandatory.
type Address struct {
	Street     string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Item is a single order line with a resolved canonical product identity.
type Item struct {
	ProductID int64
	Quantity  int
	Price     decimal.Decimal

	// ProductName is populated only when related data is loaded.
	ProductName string
}

// LineTotal returns quantity × price.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the canonical, supplier-agnostic order representation.
//
// At least one of CustomerID and CustomerEmail identifies the customer;
// both may be present. BillingAddress is guaranteed post-normalization,
// DeliveryAddress is optional.
type Order struct {
	ID              int64
	CustomerID      *int64
	CustomerEmail   string
	SupplierID      int64
	OrderDate       time.Time
	Status          Status
	BillingAddress  Address
	DeliveryAddress *Address
	Items           []Item

	// SupplierName is populated only when related data is loaded.
	SupplierName string
}

// Total returns the derived order total: the sum of all line totals.
// It is computed on demand and never stored.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// Filter narrows list queries. Page is 1-based; both Page and PageSize must
// be >= 1 and are validated at the repository boundary, never clamped.
type Filter struct {
	CustomerID     *int64
	SupplierID     *int64
	Page           int
	PageSize       int
	IncludeRelated bool
}

// Repository defines persistence operations for canonical orders.
type Repository interface {
	// Create persists the order and its items as one atomic unit and
	// returns the order with its assigned identity.
	Create(ctx context.Context, o *Order) (*Order, error)
	// GetByID returns the order with its items. includeRelated adds
	// supplier and per-item product data.
	GetByID(ctx context.Context, id int64, includeRelated bool) (*Order, error)
	// List returns one page of orders plus the unpaged total count,
	// ordered by order date descending with id as tie-break.
	List(ctx context.Context, f Filter) ([]Order, int64, error)
	// Delete removes the order and its items atomically. It reports
	// whether an order row existed.
	Delete(ctx context.Context, id int64) (bool, error)
}
