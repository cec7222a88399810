// Package errors provides standardized error handling patterns for the table
// engine. It includes error classification, standard error variables, and
// helper functions for consistent error wrapping and classification across
// the system.
package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorConfig represents recoverable configuration errors: unknown
	// computer or adapter names, duplicate registrations, bad parameters.
	// These are logged and the caller receives a nil result.
	ErrorConfig ErrorClass = iota
	// ErrorTypeMismatch represents a bound source whose kind does not match
	// a computer's requirement. Registry factories return nil, no panic.
	ErrorTypeMismatch
	// ErrorShape represents an execution plan lacking the index or interval
	// shape a computer requires. This is a builder defect and aborts the
	// table's construction.
	ErrorShape
	// ErrorOperation represents a sub-operation that is invalid for a
	// type-specialized computer. Like ErrorShape it is a caller defect,
	// not bad input data, and aborts the build.
	ErrorOperation
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorConfig:
		return "config"
	case ErrorTypeMismatch:
		return "type-mismatch"
	case ErrorShape:
		return "shape"
	case ErrorOperation:
		return "operation"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Registry errors
	ErrUnknownComputer       = errors.New("computer not found in registry")
	ErrUnknownAdapter        = errors.New("adapter not found in registry")
	ErrDuplicateRegistration = errors.New("name already registered")

	// Source and adapter construction errors
	ErrNilSource          = errors.New("backing data cannot be nil")
	ErrNilTimeFrame       = errors.New("time frame cannot be nil")
	ErrSourceKindMismatch = errors.New("bound source kind does not match requirement")

	// Build-time errors
	ErrShapeMismatch     = errors.New("execution plan shape does not match computer requirement")
	ErrOperationMismatch = errors.New("operation not valid for this computer")
	ErrRowCountMismatch  = errors.New("columns disagree on row count")
	ErrDuplicateColumn   = errors.New("column name already present in table")

	// Lookup errors
	ErrUnknownColumn  = errors.New("column not found in table")
	ErrUnknownSource  = errors.New("data source not found")
	ErrUnknownFrame   = errors.New("time frame not found")
	ErrColumnKind     = errors.New("column holds a different value kind")
	ErrInvalidParam   = errors.New("invalid parameter value")
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrDuplicateTable = errors.New("table id already stored")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsConfig checks if an error is a recoverable configuration error
func IsConfig(err error) bool {
	return hasClass(err, ErrorConfig) ||
		errors.Is(err, ErrUnknownComputer) ||
		errors.Is(err, ErrUnknownAdapter) ||
		errors.Is(err, ErrDuplicateRegistration) ||
		errors.Is(err, ErrInvalidParam)
}

// IsTypeMismatch checks if an error is a source/computer kind mismatch
func IsTypeMismatch(err error) bool {
	return hasClass(err, ErrorTypeMismatch) ||
		errors.Is(err, ErrSourceKindMismatch)
}

// IsShape checks if an error is a plan shape mismatch (fatal to a build)
func IsShape(err error) bool {
	return hasClass(err, ErrorShape) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrRowCountMismatch)
}

// IsOperation checks if an error is an invalid sub-operation (fatal to a build)
func IsOperation(err error) bool {
	return hasClass(err, ErrorOperation) ||
		errors.Is(err, ErrOperationMismatch)
}

// IsFatal reports whether an error must abort a table's construction.
// Shape and operation mismatches indicate builder defects, not bad input.
func IsFatal(err error) bool {
	return IsShape(err) || IsOperation(err)
}

func hasClass(err error, class ErrorClass) bool {
	if err == nil {
		return false
	}
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == class
	}
	return false
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	switch {
	case IsShape(err):
		return ErrorShape
	case IsOperation(err):
		return ErrorOperation
	case IsTypeMismatch(err):
		return ErrorTypeMismatch
	default:
		return ErrorConfig
	}
}

// newClassified creates a new classified error
// This is an internal helper - use the Wrap* functions instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapConfig wraps an error as a recoverable configuration error with context
func WrapConfig(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorConfig, wrappedErr, component, method, wrappedErr.Error())
}

// WrapTypeMismatch wraps an error as a source kind mismatch with context
func WrapTypeMismatch(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorTypeMismatch, wrappedErr, component, method, wrappedErr.Error())
}

// WrapShape wraps an error as a fatal plan shape mismatch with context
func WrapShape(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorShape, wrappedErr, component, method, wrappedErr.Error())
}

// WrapOperation wraps an error as a fatal operation mismatch with context
func WrapOperation(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorOperation, wrappedErr, component, method, wrappedErr.Error())
}
