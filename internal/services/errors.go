// Package services defines the business logic for customer applications.
// This file centralizes service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// Translation into user-facing messages and HTTP status codes is performed
// at the handler layer.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormNotFound indicates that no application exists for the identifier.
	ErrFormNotFound = errors.New("form not found")

	// ErrDuplicateEntry is matched by every *DuplicateError.
	ErrDuplicateEntry = errors.New("duplicate entry")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation error")
)

// FieldError describes one failing input field. Field is the dotted JSON
// path inside the submission, e.g. "paymentDetails.paymentMode".
type FieldError struct {
	Field   string `json:"field" example:"customerDetails.gender"`
	Message string `json:"message" example:"gender must be one of: MALE, FEMALE, OTHER"`
}

// ValidationError lists every failing field of a submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// DuplicateError reports that a unique value already belongs to another
// application. Field is one of "email", "mobile", "idProofNumber", "cafNo"
// or "uniqueId".
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate entry for %s", e.Field)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateEntry }
