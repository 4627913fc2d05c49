package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/order-intake/internal/domain/order"
	"github.com/xenking/order-intake/internal/domain/product"
)

type errorView struct {
	Code       int              `json:"code"`
	Message    string           `json:"message"`
	Violations order.Violations `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zctx.From(r.Context()).Error("encode response", zap.Error(err))
	}
}

// respondError maps domain errors onto the HTTP error taxonomy: structural
// violations become 400 with the full aggregated list, unresolved references
// 422, missing aggregates 404, conflicts 409. Anything else is a server
// fault: logged in full, surfaced generically.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var violations order.Violations
	if errors.As(err, &violations) {
		writeJSON(w, r, http.StatusBadRequest, errorView{
			Code:       http.StatusBadRequest,
			Message:    "validation failed",
			Violations: violations,
		})
		return
	}

	var refErr *order.ReferenceNotFoundError
	if errors.As(err, &refErr) {
		writeJSON(w, r, http.StatusUnprocessableEntity, errorView{
			Code:    http.StatusUnprocessableEntity,
			Message: refErr.Error(),
		})
		return
	}

	if errors.Is(err, order.ErrNotFound) {
		writeJSON(w, r, http.StatusNotFound, errorView{
			Code:    http.StatusNotFound,
			Message: "order not found",
		})
		return
	}

	if errors.Is(err, product.ErrCodeConflict) {
		writeJSON(w, r, http.StatusConflict, errorView{
			Code:    http.StatusConflict,
			Message: err.Error(),
		})
		return
	}

	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeJSON(w, r, http.StatusInternalServerError, errorView{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
	})
}
