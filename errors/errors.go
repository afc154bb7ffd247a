// Package errors provides standardized error handling for the engine.
// It includes error classification, standard error variables, and helper
// functions for consistent wrapping and classification across packages.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes.
type ErrorClass int

const (
	// ErrorInvalid represents errors due to invalid input or configuration.
	// Configuration errors are fatal at construction time: the engine
	// refuses to build rather than run with a bad identifier space.
	ErrorInvalid ErrorClass = iota
	// ErrorNotFound represents lookups of identifiers that were never
	// issued. Callers should treat these as "not found", not a crash.
	ErrorNotFound
	// ErrorStale represents reasoning queries issued against closures that
	// were invalidated by a later axiom write and not yet recomputed.
	ErrorStale
	// ErrorBudget represents best-effort results where a fixpoint
	// computation hit its iteration budget before stabilizing.
	ErrorBudget
	// ErrorFatal represents internal consistency violations. Continuing
	// past one of these would produce silently wrong query results.
	ErrorFatal
)

// String returns the string representation of ErrorClass.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorInvalid:
		return "invalid"
	case ErrorNotFound:
		return "not_found"
	case ErrorStale:
		return "stale"
	case ErrorBudget:
		return "budget"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions.
var (
	// Configuration errors
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrCapacityExceeded = errors.New("identifier capacity exceeded")

	// Identifier errors
	ErrUnknownIdentifier  = errors.New("unknown identifier")
	ErrReservedIdentifier = errors.New("identifier zero is reserved")

	// Reasoning errors
	ErrStaleClosure  = errors.New("closures are stale; recompute required")
	ErrCycleBudget   = errors.New("closure fixpoint hit iteration budget")
	ErrComputing     = errors.New("closure computation already in progress")
	ErrIndexCorrupt  = errors.New("index state corrupted")
	ErrEngineClosed  = errors.New("engine has been closed")
	ErrShapeNotFound = errors.New("shape not registered")
)

// ClassifiedError wraps an error with its classification and the component
// and operation that produced it.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return fmt.Sprintf("%s.%s: %s: %v", ce.Component, ce.Operation, ce.Message, ce.Err)
	}
	return fmt.Sprintf("%s.%s: %v", ce.Component, ce.Operation, ce.Err)
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// Wrap creates a ClassifiedError with the given class and context.
func Wrap(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// WrapInvalid wraps an error as an invalid-input or configuration error.
func WrapInvalid(err error, component, operation, message string) *ClassifiedError {
	return Wrap(ErrorInvalid, err, component, operation, message)
}

// WrapNotFound wraps an error as an unknown-identifier error.
func WrapNotFound(err error, component, operation, message string) *ClassifiedError {
	return Wrap(ErrorNotFound, err, component, operation, message)
}

// WrapStale wraps an error as a stale-closure error.
func WrapStale(err error, component, operation, message string) *ClassifiedError {
	return Wrap(ErrorStale, err, component, operation, message)
}

// WrapBudget wraps an error as a budget-exhaustion error.
func WrapBudget(err error, component, operation, message string) *ClassifiedError {
	return Wrap(ErrorBudget, err, component, operation, message)
}

// WrapFatal wraps an error as an internal consistency violation.
func WrapFatal(err error, component, operation, message string) *ClassifiedError {
	return Wrap(ErrorFatal, err, component, operation, message)
}

// ClassOf returns the classification of an error, defaulting to
// ErrorInvalid for unclassified errors.
func ClassOf(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ErrorInvalid
}

// IsNotFound checks whether an error represents an unknown identifier.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorNotFound
	}
	return errors.Is(err, ErrUnknownIdentifier)
}

// IsStale checks whether an error represents stale closures.
func IsStale(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorStale
	}
	return errors.Is(err, ErrStaleClosure)
}

// IsBudget checks whether an error represents an exhausted fixpoint budget.
func IsBudget(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorBudget
	}
	return errors.Is(err, ErrCycleBudget)
}

// IsFatal checks whether an error is an internal consistency violation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}
	return errors.Is(err, ErrIndexCorrupt)
}
