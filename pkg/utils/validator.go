package utils

import (
	"fmt"
	"regexp"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %s", email)
	}
	return nil
}

// ValidateEmployeeID validates the human-assigned employee code. It is
// the left half of every record id, so it must be non-empty and must not
// contain the underscore separator.
func ValidateEmployeeID(id string) error {
	if id == "" {
		return fmt.Errorf("employee_id is required")
	}
	for _, r := range id {
		if r == '_' {
			return fmt.Errorf("employee_id must not contain underscores: %s", id)
		}
	}
	return nil
}

// Errors collects validation messages for a multi-field form. Failures
// are gathered and reported together rather than failing fast.
type Errors []string

// Add appends a formatted message.
func (e *Errors) Add(format string, args ...any) {
	*e = append(*e, fmt.Sprintf(format, args...))
}

// AddErr appends a message from a non-nil error.
func (e *Errors) AddErr(err error) {
	if err != nil {
		*e = append(*e, err.Error())
	}
}

// OK reports whether no message was collected.
func (e Errors) OK() bool {
	return len(e) == 0
}
