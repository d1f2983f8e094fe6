// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error for callers. Resolvers and handlers switch on
// the kind instead of matching messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindDuplicate
	KindConstraint
)

// Code returns the stable machine-readable code sent to clients
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindUnauthenticated:
		return "UNAUTHENTICATED"
	case KindForbidden:
		return "FORBIDDEN"
	case KindNotFound:
		return "NOT_FOUND"
	case KindDuplicate:
		return "DUPLICATE_ERROR"
	case KindConstraint:
		return "CONSTRAINT_ERROR"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// HTTPStatus maps a kind to the status a REST handler should answer with
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate, KindConstraint:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	return strings.ToLower(k.Code())
}

// FieldError is one violated rule on one input field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// Error is the typed error surfaced to API clients
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Extensions is picked up by the GraphQL engine and rendered under
// "extensions" in the error response.
func (e *Error) Extensions() map[string]interface{} {
	ext := map[string]interface{}{
		"code": e.Kind.Code(),
	}
	switch e.Kind {
	case KindUnauthenticated, KindForbidden:
		ext["http"] = map[string]interface{}{"status": e.Kind.HTTPStatus()}
	case KindValidation:
		fields := make([]map[string]interface{}, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, map[string]interface{}{"field": f.Field, "message": f.Message})
		}
		ext["errors"] = fields
	}
	return ext
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation builds a validation error from field violations, keeping their order
func Validation(fields []FieldError) *Error {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}
	return &Error{
		Kind:    KindValidation,
		Message: "Validation error: " + strings.Join(parts, ", "),
		Fields:  fields,
	}
}

func Unauthenticated(format string, args ...any) *Error {
	return newf(KindUnauthenticated, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func Duplicate(format string, args ...any) *Error {
	return newf(KindDuplicate, format, args...)
}

func Constraint(format string, args ...any) *Error {
	return newf(KindConstraint, format, args...)
}

// Wrap attaches a kind to an underlying error
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// As returns the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the kind of err, KindInternal for untyped errors
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
