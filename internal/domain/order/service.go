package order

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/order-intake/internal/domain/supplier"
)

// Adapter normalizes one supplier's external payload into a canonical Order.
// Implementations pin the supplier identity and initial status themselves;
// neither is caller-supplied nor overridable by the payload.
type Adapter interface {
	Supplier() supplier.Supplier
	// Tag is the short supplier tag used in order reference strings.
	Tag() string
	Adapt(ctx context.Context, payload []byte) (*Order, error)
}

// Receipt is the result of a successful transform-and-persist ingestion.
type Receipt struct {
	Order *Order
	// Reference is the externally quoted order reference, "{TAG}-{id}".
	Reference string
}

// Service runs the ingestion pipeline: adapt the external payload, validate
// the canonical order, and persist it atomically.
type Service struct {
	orders    Repository
	validator *Validator

	ingested metric.Int64Counter
}

// NewService creates the intake Service. The meter registers the ingestion
// counter; pass a noop meter in tests.
func NewService(orders Repository, validator *Validator, meter metric.Meter) (*Service, error) {
	ingested, err := meter.Int64Counter("orders.ingested",
		metric.WithDescription("Orders successfully ingested, by supplier tag"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "register ingestion counter")
	}

	return &Service{
		orders:    orders,
		validator: validator,
		ingested:  ingested,
	}, nil
}

// Ingest transforms the payload with the given adapter, validates the
// result, and persists it. No partial write is observable on any failure.
func (s *Service) Ingest(ctx context.Context, a Adapter, payload []byte) (*Receipt, error) {
	o, err := a.Adapt(ctx, payload)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(ctx, o); err != nil {
		return nil, err
	}

	persisted, err := s.orders.Create(ctx, o)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.ingested.Add(ctx, 1, metric.WithAttributes(attribute.String("supplier", a.Tag())))

	return &Receipt{
		Order:     persisted,
		Reference: fmt.Sprintf("%s-%d", a.Tag(), persisted.ID),
	}, nil
}

// Preview transforms the payload without persisting it. Product code
// resolution still happens (and still fails on unknown codes), but no
// referential validation or write is performed.
func (s *Service) Preview(ctx context.Context, a Adapter, payload []byte) (*Order, error) {
	return a.Adapt(ctx, payload)
}
