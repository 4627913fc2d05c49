package order

import (
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

// Violation is a single structural validation failure, addressed by the
// JSON-ish path of the offending field.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations aggregates every structural failure found in one pass so the
// client receives all of them at once instead of just the first.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, violation := range v {
		msgs[i] = violation.Field + ": " + violation.Message
	}
	return "invalid order: " + strings.Join(msgs, "; ")
}

// ReferenceNotFoundError indicates a referenced entity does not exist in its
// owning catalog. It is a client error, not a storage fault.
type ReferenceNotFoundError struct {
	Kind string // "customer", "supplier", "product"
	Ref  string // the unresolved identifier or code
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.Ref)
}
