// Package vkerrors defines the error taxonomy shared across the analysis
// core. Errors are distinguished by Kind rather than by Go type where
// possible, so callers can branch on a stable tag instead of a type switch.
package vkerrors

import (
	"fmt"
	"time"
)

// Kind is the stable error taxonomy named in the error-handling design:
// Config, IO, Parse, Extraction, Validation, Timeout, Cancelled.
type Kind string

const (
	KindConfig     Kind = "config"
	KindIO         Kind = "io"
	KindParse      Kind = "parse"
	KindExtraction Kind = "extraction"
	KindValidation Kind = "validation"
	KindTimeout    Kind = "timeout"
	KindCancelled  Kind = "cancelled"
)

// Error is the single error type surfaced by the core. It always carries a
// Kind and enough context (path, entity id) for an operator to act, per the
// propagation policy: non-fatal errors become Warnings with this same shape,
// fatal errors are returned as *Error to the caller.
type Error struct {
	Kind       Kind
	Path       string
	EntityID   string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// New creates an Error of the given kind wrapping err.
func New(kind Kind, op string, err error) *Error {
	return &Error{
		Kind:       kind,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithPath attaches a file path to the error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithEntity attaches an entity id to the error.
func (e *Error) WithEntity(id string) *Error {
	e.EntityID = id
	return e
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.EntityID != "":
		return fmt.Sprintf("%s %s failed for %s (entity %s): %v", e.Kind, e.Operation, e.Path, e.EntityID, e.Underlying)
	case e.Path != "":
		return fmt.Sprintf("%s %s failed for %s: %v", e.Kind, e.Operation, e.Path, e.Underlying)
	case e.EntityID != "":
		return fmt.Sprintf("%s %s failed for entity %s: %v", e.Kind, e.Operation, e.EntityID, e.Underlying)
	default:
		return fmt.Sprintf("%s %s failed: %v", e.Kind, e.Operation, e.Underlying)
	}
}

func (e *Error) Unwrap() error { return e.Underlying }

// Fatal reports whether errors of this kind abort the pipeline outright.
// Config and Validation are always fatal; everything else degrades to a
// Warning at the call site (file-local, entity-local, or stage-local).
func (e *Error) Fatal() bool {
	return e.Kind == KindConfig || e.Kind == KindValidation
}

// Warning is the stable shape non-fatal errors are recorded as in
// AnalysisResults.Warnings: {kind, path?, entity_id?, message}.
type Warning struct {
	Kind     Kind   `json:"kind"`
	Path     string `json:"path,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Message  string `json:"message"`
}

// AsWarning converts a non-fatal *Error into its Warning shape. Fatal
// errors should never be converted; callers abort instead.
func AsWarning(err error) Warning {
	if e, ok := err.(*Error); ok {
		return Warning{Kind: e.Kind, Path: e.Path, EntityID: e.EntityID, Message: e.Error()}
	}
	return Warning{Kind: KindIO, Message: err.Error()}
}

// MultiError aggregates independent failures from a fan-out stage (e.g. one
// per file) into a single error value, mirroring the teacher's MultiError.
type MultiError struct {
	Errors []error
}

// NewMultiError filters nil errors and returns a MultiError, or nil if
// nothing failed.
func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
