package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/order-intake/internal/domain/order"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// ingest handles transform-and-persist: the payload is adapted, validated
// against the catalogs, and committed atomically.
func (h *Handler) ingest(a order.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := readPayload(w, r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		receipt, err := h.intake.Ingest(r.Context(), a, payload)
		if err != nil {
			respondError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, receiptView{
			ID:          receipt.Order.ID,
			Reference:   receipt.Reference,
			TotalAmount: receipt.Order.Total(),
			ItemCount:   len(receipt.Order.Items),
		})
	}
}

// preview handles transform-only: the canonical representation is returned
// without validation against the catalogs and without persistence.
func (h *Handler) preview(a order.Adapter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := readPayload(w, r)
		if err != nil {
			respondError(w, r, err)
			return
		}

		o, err := h.intake.Preview(r.Context(), a, payload)
		if err != nil {
			respondError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, toOrderView(o))
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, order.Filter{})
}

func (h *Handler) listByCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.list(w, r, order.Filter{CustomerID: &id})
}

func (h *Handler) listBySupplier(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.list(w, r, order.Filter{SupplierID: &id})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, f order.Filter) {
	var err error
	f.Page, err = queryInt(r, "page", defaultPage)
	if err != nil {
		respondError(w, r, err)
		return
	}
	f.PageSize, err = queryInt(r, "pageSize", defaultPageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	f.IncludeRelated = r.URL.Query().Get("includeRelated") == "true"

	orders, total, err := h.orders.List(r.Context(), f)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]orderView, len(orders))
	for i := range orders {
		items[i] = toOrderView(&orders[i])
	}

	totalPages := total / int64(f.PageSize)
	if total%int64(f.PageSize) != 0 {
		totalPages++
	}

	writeJSON(w, r, http.StatusOK, pageView{
		Items:      items,
		TotalCount: total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	o, err := h.orders.GetByID(r.Context(), id, r.URL.Query().Get("includeRelated") == "true")
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toOrderView(o))
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	existed, err := h.orders.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !existed {
		respondError(w, r, order.ErrNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func readPayload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		return nil, order.Violations{{Field: "payload", Message: "unreadable request body"}}
	}
	return payload, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, order.Violations{{Field: "id", Message: "must be a positive integer"}}
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, order.Violations{{Field: name, Message: "must be an integer"}}
	}
	return v, nil
}
