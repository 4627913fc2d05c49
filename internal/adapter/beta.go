package adapter

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/order-intake/internal/domain/order"
	"github.com/xenking/order-intake/internal/domain/product"
	"github.com/xenking/order-intake/internal/domain/supplier"
)

// resolveConcurrency bounds the parallel resolver lookups per adaptation.
const resolveConcurrency = 4

// betaPayload is the wire format of the email/code supplier. Customers are
// identified by email only, products by opaque UUID codes, and both
// addresses sit one level deeper under a delivery-details envelope.
type betaPayload struct {
	ContactEmail    string       `json:"contactEmail"`
	PlacedAt        int64        `json:"placedAt"` // Unix seconds
	DeliveryDetails *betaDetails `json:"deliveryDetails"`
	Items           []betaItem   `json:"items"`
}

type betaDetails struct {
	Billing  *betaAddress `json:"billing"`
	Shipping *betaAddress `json:"shipping"`
}

type betaAddress struct {
	Road     string `json:"road"`
	City     string `json:"city"`
	District string `json:"district"`
	Zip      string `json:"zip"`
	Country  string `json:"country"`
}

type betaItem struct {
	ProductCode uuid.UUID       `json:"productCode"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Beta adapts the email/code supplier format. Adaptation is not pure: every
// distinct product code is resolved once through the catalog, and the whole
// adaptation fails if any code is unknown. Items are never silently dropped;
// that would corrupt the order total.
type Beta struct {
	catalog product.Catalog
	now     func() time.Time
}

// NewBeta creates the Beta adapter with the catalog used for code resolution.
func NewBeta(catalog product.Catalog) *Beta {
	return &Beta{catalog: catalog, now: time.Now}
}

// Supplier returns the fixed supplier identity this adapter binds to.
func (b *Beta) Supplier() supplier.Supplier { return supplier.Beta }

// Tag returns the supplier tag used in order references.
func (b *Beta) Tag() string { return "BETA" }

// Adapt maps the external payload onto the canonical order, resolving
// product codes concurrently while preserving the original item order.
func (b *Beta) Adapt(ctx context.Context, payload []byte) (*order.Order, error) {
	var p betaPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, order.Violations{{Field: "payload", Message: "malformed JSON: " + err.Error()}}
	}

	var found order.Violations
	if p.ContactEmail == "" {
		found = append(found, order.Violation{Field: "contactEmail", Message: "is required"})
	}
	if p.DeliveryDetails == nil || p.DeliveryDetails.Billing == nil || p.DeliveryDetails.Billing.Road == "" {
		found = append(found, order.Violation{
			Field:   "deliveryDetails.billing.road",
			Message: "billing address with a street line is required",
		})
	}
	if len(found) > 0 {
		return nil, found
	}

	ids, err := b.resolveCodes(ctx, p.Items)
	if err != nil {
		return nil, err
	}

	orderDate := b.now().UTC()
	if p.PlacedAt > 0 {
		orderDate = time.Unix(p.PlacedAt, 0).UTC()
	}

	items := make([]order.Item, len(p.Items))
	for i, it := range p.Items {
		items[i] = order.Item{
			ProductID: ids[it.ProductCode],
			Quantity:  it.Qty,
			Price:     it.UnitPrice,
		}
	}

	return &order.Order{
		CustomerEmail:   p.ContactEmail,
		SupplierID:      supplier.Beta.ID,
		OrderDate:       orderDate,
		Status:          order.StatusReceived,
		BillingAddress:  mapBetaAddress(*p.DeliveryDetails.Billing),
		DeliveryAddress: mapBetaAddressPtr(p.DeliveryDetails.Shipping),
		Items:           items,
	}, nil
}

// resolveCodes resolves each distinct product code exactly once, with
// bounded concurrency. Unknown codes fail the whole adaptation.
func (b *Beta) resolveCodes(ctx context.Context, items []betaItem) (map[uuid.UUID]int64, error) {
	distinct := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductCode]; ok {
			continue
		}
		seen[it.ProductCode] = struct{}{}
		distinct = append(distinct, it.ProductCode)
	}

	var mu sync.Mutex
	resolved := make(map[uuid.UUID]int64, len(distinct))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for _, code := range distinct {
		g.Go(func() error {
			id, err := b.catalog.ResolveCode(ctx, code)
			if err != nil {
				if errors.Is(err, product.ErrNotFound) {
					return &order.ReferenceNotFoundError{Kind: "product", Ref: code.String()}
				}
				return errors.Wrapf(err, "resolve product code %s", code)
			}
			mu.Lock()
			resolved[code] = id
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func mapBetaAddress(a betaAddress) order.Address {
	return order.Address{
		Street:     a.Road,
		City:       a.City,
		Region:     a.District,
		PostalCode: a.Zip,
		Country:    a.Country,
	}
}

// mapBetaAddressPtr normalizes the optional shipping block. A block without
// a street line carries no usable address and maps to nil.
func mapBetaAddressPtr(a *betaAddress) *order.Address {
	if a == nil || a.Road == "" {
		return nil
	}
	mapped := mapBetaAddress(*a)
	return &mapped
}
