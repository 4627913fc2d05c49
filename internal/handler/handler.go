// Package handler exposes the intake pipeline and the order read surface
// over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/order-intake/internal/domain/order"
)

// maxPayloadBytes caps ingestion payload size.
const maxPayloadBytes = 1 << 20

// Handler routes HTTP requests to the intake service and order repository.
type Handler struct {
	intake *order.Service
	orders order.Repository
	alpha  order.Adapter
	beta   order.Adapter
}

// New constructs a Handler with the required domain dependencies.
func New(intake *order.Service, orders order.Repository, alpha, beta order.Adapter) *Handler {
	return &Handler{
		intake: intake,
		orders: orders,
		alpha:  alpha,
		beta:   beta,
	}
}

// Routes returns the API router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/orders", func(r chi.Router) {
		r.Post("/import/alpha", h.ingest(h.alpha))
		r.Post("/import/alpha/preview", h.preview(h.alpha))
		r.Post("/import/beta", h.ingest(h.beta))
		r.Post("/import/beta/preview", h.preview(h.beta))

		r.Get("/", h.listOrders)
		r.Get("/{id}", h.getOrder)
		r.Delete("/{id}", h.deleteOrder)
	})

	r.Get("/customers/{id}/orders", h.listByCustomer)
	r.Get("/suppliers/{id}/orders", h.listBySupplier)

	return r
}
