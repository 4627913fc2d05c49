// Package adapter contains the per-supplier format adapters that normalize
// heterogeneous external order payloads into the canonical order model.
//
// The two supplier formats deliberately share no wire shape: each adapter
// owns its payload types end to end and only the canonical output contract
// is common.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/order-intake/internal/domain/order"
	"github.com/xenking/order-intake/internal/domain/supplier"
)

// alphaPayload is the wire format of the numeric-id supplier. Customers and
// products are identified by integers that already live in the canonical id
// space; addresses arrive as two sibling objects.
type alphaPayload struct {
	CustomerNumber int64         `json:"customerNumber"`
	OrderPlaced    time.Time     `json:"orderPlaced"`
	BillTo         *alphaAddress `json:"billTo"`
	ShipTo         *alphaAddress `json:"shipTo"`
	Lines          []alphaLine   `json:"lines"`
}

type alphaAddress struct {
	AddressLine1 string `json:"addressLine1"`
	Town         string `json:"town"`
	County       string `json:"county"`
	PostCode     string `json:"postCode"`
	CountryCode  string `json:"countryCode"`
}

type alphaLine struct {
	ProductNumber int64           `json:"productNumber"`
	Count         int             `json:"count"`
	UnitCost      decimal.Decimal `json:"unitCost"`
}

// Alpha adapts the numeric-id supplier format. Product numbers equal the
// canonical product ids, so no resolver round-trip is needed.
type Alpha struct {
	now func() time.Time
}

// NewAlpha creates the Alpha adapter.
func NewAlpha() *Alpha {
	return &Alpha{now: time.Now}
}

// Supplier returns the fixed supplier identity this adapter binds to.
func (a *Alpha) Supplier() supplier.Supplier { return supplier.Alpha }

// Tag returns the supplier tag used in order references.
func (a *Alpha) Tag() string { return "ALPHA" }

// Adapt maps the external payload onto the canonical order. The supplier id
// and initial status are pinned here and cannot come from the payload.
func (a *Alpha) Adapt(_ context.Context, payload []byte) (*order.Order, error) {
	var p alphaPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, order.Violations{{Field: "payload", Message: "malformed JSON: " + err.Error()}}
	}

	var found order.Violations
	if p.CustomerNumber <= 0 {
		found = append(found, order.Violation{
			Field:   "customerNumber",
			Message: "must be a positive integer",
		})
	}
	if p.BillTo == nil || p.BillTo.AddressLine1 == "" {
		found = append(found, order.Violation{
			Field:   "billTo.addressLine1",
			Message: "billing address with a street line is required",
		})
	}
	for i, l := range p.Lines {
		if l.ProductNumber <= 0 {
			found = append(found, order.Violation{
				Field:   fmt.Sprintf("lines[%d].productNumber", i),
				Message: "must be a positive integer",
			})
		}
	}
	if len(found) > 0 {
		return nil, found
	}

	orderDate := p.OrderPlaced
	if orderDate.IsZero() {
		orderDate = a.now().UTC()
	}

	items := make([]order.Item, len(p.Lines))
	for i, l := range p.Lines {
		items[i] = order.Item{
			ProductID: l.ProductNumber,
			Quantity:  l.Count,
			Price:     l.UnitCost,
		}
	}

	customerID := p.CustomerNumber
	return &order.Order{
		CustomerID:      &customerID,
		SupplierID:      supplier.Alpha.ID,
		OrderDate:       orderDate,
		Status:          order.StatusReceived,
		BillingAddress:  mapAlphaAddress(*p.BillTo),
		DeliveryAddress: mapAlphaAddressPtr(p.ShipTo),
		Items:           items,
	}, nil
}

func mapAlphaAddress(a alphaAddress) order.Address {
	return order.Address{
		Street:     a.AddressLine1,
		City:       a.Town,
		Region:     a.County,
		PostalCode: a.PostCode,
		Country:    a.CountryCode,
	}
}

// mapAlphaAddressPtr normalizes the optional ship-to block. A block without
// a street line carries no usable address and maps to nil.
func mapAlphaAddressPtr(a *alphaAddress) *order.Address {
	if a == nil || a.AddressLine1 == "" {
		return nil
	}
	mapped := mapAlphaAddress(*a)
	return &mapped
}
