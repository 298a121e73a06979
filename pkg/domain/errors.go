package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports a (type, id) miss in a mutating operation.
type ErrNotFound struct {
	Ref TypeRef
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Ref)
}

// FieldError describes a single schema constraint violation.
type FieldError struct {
	Path       string `json:"path"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Message, e.Constraint)
}

// ValidationError aggregates the field errors that rejected a create or
// update. The triggering operation leaves the store unchanged; the caller may
// retry with corrected data.
type ValidationError struct {
	Ref    TypeRef
	Fields []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: validation failed", e.Ref)
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("%s: %s", e.Ref, strings.Join(msgs, "; "))
}

// StructuralError reports an operation requiring a relationship that does not
// hold, such as arranging an entity without a parent. Fatal to the single
// operation.
type StructuralError struct {
	Ref TypeRef
	Op  string
	Msg string
}

func (e StructuralError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Op, e.Ref, e.Msg)
}

// ErrDefaultsFetch wraps a failed best-effort asset defaults lookup. It is
// recovered internally; validation proceeds without the derived defaults.
var ErrDefaultsFetch = errors.New("asset defaults fetch failed")

// DefaultsFetchError carries the source URL of a failed defaults lookup.
type DefaultsFetchError struct {
	URL string
	Err error
}

func (e DefaultsFetchError) Error() string {
	return fmt.Sprintf("defaults fetch %s: %v", e.URL, e.Err)
}

func (e DefaultsFetchError) Unwrap() error { return ErrDefaultsFetch }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// IsStructural reports whether err is (or wraps) a StructuralError.
func IsStructural(err error) bool {
	var s StructuralError
	return errors.As(err, &s)
}
