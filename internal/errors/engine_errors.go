package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Errors caused by the caller's input; retrying cannot help
	ErrorCategoryValidation    ErrorCategory = "VALIDATION"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryStrategy      ErrorCategory = "STRATEGY"
	ErrorCategoryData          ErrorCategory = "DATA"
	ErrorCategoryCredentials   ErrorCategory = "CREDENTIALS"

	// Errors talking to a market data source
	ErrorCategoryExchange  ErrorCategory = "EXCHANGE"
	ErrorCategoryNetwork   ErrorCategory = "NETWORK"
	ErrorCategoryTimeout   ErrorCategory = "TIMEOUT"
	ErrorCategoryRateLimit ErrorCategory = "RATE_LIMIT"
	ErrorCategoryTemporary ErrorCategory = "TEMPORARY"
)

// ErrInvalidStrategy is wrapped by every strategy validation failure
var ErrInvalidStrategy = stderrors.New("invalid strategy")

// ErrNoData is wrapped when a provider yields no usable candles
var ErrNoData = stderrors.New("no market data")

// EngineError represents a categorized error with context
type EngineError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *EngineError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried
func (e *EngineError) IsRetryable() bool {
	return e.Retryable
}

// NewEngineError creates a new categorized error
func NewEngineError(category ErrorCategory, component, operation, message string) *EngineError {
	return &EngineError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with engine error context
func WrapError(err error, category ErrorCategory, component, operation string) *EngineError {
	if err == nil {
		return nil
	}

	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *EngineError) WithContext(key string, value interface{}) *EngineError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *EngineError) WithRetryable(retryable bool) *EngineError {
	e.Retryable = retryable
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryNetwork, ErrorCategoryTimeout, ErrorCategoryTemporary, ErrorCategoryRateLimit:
		return true
	default:
		return false
	}
}

// CategorizeError attempts to categorize a generic error
func CategorizeError(err error, component, operation string) *EngineError {
	if err == nil {
		return nil
	}

	var engineErr *EngineError
	if stderrors.As(err, &engineErr) {
		return engineErr
	}

	errMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded"):
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	case strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial"):
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	case strings.Contains(errMsg, "api key") || strings.Contains(errMsg, "unauthorized"):
		return WrapError(err, ErrorCategoryCredentials, component, operation)
	case strings.Contains(errMsg, "rate limit") || strings.Contains(errMsg, "too many requests"):
		return WrapError(err, ErrorCategoryRateLimit, component, operation)
	case strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "minimum") ||
		strings.Contains(errMsg, "maximum"):
		return WrapError(err, ErrorCategoryValidation, component, operation)
	}

	return WrapError(err, ErrorCategoryTemporary, component, operation)
}

// Common error constructors
func NewValidationError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryValidation, component, operation, message)
}

func NewConfigurationError(component, operation, message string) *EngineError {
	return NewEngineError(ErrorCategoryConfiguration, component, operation, message)
}

// NewStrategyError reports a malformed strategy; it always matches ErrInvalidStrategy
func NewStrategyError(component, operation, message string) *EngineError {
	e := NewEngineError(ErrorCategoryStrategy, component, operation, message)
	e.Underlying = ErrInvalidStrategy
	return e
}

func NewDataError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryData, component, operation)
}

func NewExchangeError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryExchange, component, operation)
}

func NewNetworkError(component, operation string, err error) *EngineError {
	return WrapError(err, ErrorCategoryNetwork, component, operation)
}

// IsRetryable reports whether err, or any error it wraps, is a retryable EngineError
func IsRetryable(err error) bool {
	var engineErr *EngineError
	if stderrors.As(err, &engineErr) {
		return engineErr.Retryable
	}
	return false
}
