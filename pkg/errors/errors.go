package errors

import (
	"errors"
	"fmt"
)

// Domain error types for business logic

var (
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates invalid input parameters
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")

	// ErrTimeout indicates an operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrUnavailable indicates a service is unavailable
	ErrUnavailable = errors.New("service unavailable")
)

// Portfolio and trading errors

var (
	// ErrAggregation indicates brokerage data fetch or parse failed
	ErrAggregation = errors.New("portfolio aggregation failed")

	// ErrInvalidAction indicates a trade action is structurally invalid
	ErrInvalidAction = errors.New("invalid trade action")

	// ErrInvalidPortfolio indicates malformed portfolio input
	ErrInvalidPortfolio = errors.New("invalid portfolio")

	// ErrUnknownInstrument indicates a ticker outside the reference table
	ErrUnknownInstrument = errors.New("unknown instrument")

	// ErrOrderRejected indicates the broker rejected an order
	ErrOrderRejected = errors.New("order rejected by broker")
)

// AI provider errors

var (
	// ErrProviderUnavailable indicates an AI backend call failed
	ErrProviderUnavailable = errors.New("ai provider unavailable")

	// ErrNoProviders indicates no AI provider passed credential probing
	ErrNoProviders = errors.New("no ai providers configured")

	// ErrUnparsableResponse indicates an AI response yielded no usable strategy
	ErrUnparsableResponse = errors.New("unparsable ai response")
)

// ProviderError carries provider-specific failure details.
// It is always caught inside the AI router and converted into a
// failover trigger; it must never leak past Respond.
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider %s: %s", e.Provider, e.Message)
}

// Unwrap returns the wrapped error
func (e *ProviderError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrProviderUnavailable
}

// NewProviderError creates a provider error
func NewProviderError(provider string, statusCode int, message string, err error) *ProviderError {
	return &ProviderError{Provider: provider, StatusCode: statusCode, Message: message, Err: err}
}

// ValidationError represents a validation error with field-specific details
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: field '%s': %s (value: %v)", e.Field, e.Message, e.Value)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}

// Helper functions

// Is checks if err is or wraps target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func New(message string) error {
	return errors.New(message)
}

func Newf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
