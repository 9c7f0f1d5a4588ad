package sheetapi

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a well-formed upstream reply that reports a missing
// employee-month record, so callers can route to a creation flow instead
// of offering a retry.
var ErrNotFound = errors.New("record not found")

// APIError is an application-level failure: the upstream answered with a
// well-formed envelope whose status is not "success". Callers never
// re-inspect the envelope's status field; they get this instead.
type APIError struct {
	Action  string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sheet api %s failed", e.Action)
	}
	return fmt.Sprintf("sheet api %s failed: %s", e.Action, e.Message)
}

// envelopeError classifies an envelope failure. The upstream reports a
// missing record through the same channel as any other failure; message
// sniffing is the only signal available.
func envelopeError(action, message string) error {
	if looksNotFound(message) {
		return fmt.Errorf("%s %s: %w", action, message, ErrNotFound)
	}
	return &APIError{Action: action, Message: message}
}

func looksNotFound(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "not found") || strings.Contains(m, "no record")
}
