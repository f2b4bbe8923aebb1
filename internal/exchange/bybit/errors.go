package bybit

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
)

// BybitError represents a Bybit API error with additional context
type BybitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *BybitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Bybit API error %d: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("Bybit API error %d: %s", e.Code, e.Message)
}

// Bybit error codes relevant to market data requests
const (
	ErrCodeInvalidParameter  = 10001
	ErrCodeInvalidAPIKey     = 10003
	ErrCodeInvalidSignature  = 10004
	ErrCodeInvalidTimestamp  = 10005
	ErrCodeRateLimitExceeded = 10006
	ErrCodeSymbolNotFound    = 110009
	ErrCodeServerTimeout     = 10016
)

// IsRetryableError reports whether a request failing with err may succeed
// when repeated: rate limits, 5xx responses, transport failures and network
// timeouts.
func IsRetryableError(err error) bool {
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		switch bybitErr.Code {
		case ErrCodeRateLimitExceeded, ErrCodeServerTimeout,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	if engerrors.IsRetryable(err) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// WrapTransportError marks connection-level failures of the HTTP call as
// network errors. Anything else is returned unchanged.
func WrapTransportError(operation string, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return engerrors.NewNetworkError("bybit", operation, err)
	}
	return err
}

// IsAuthenticationError checks if the error is related to authentication
func IsAuthenticationError(err error) bool {
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		switch bybitErr.Code {
		case ErrCodeInvalidAPIKey, ErrCodeInvalidSignature, ErrCodeInvalidTimestamp:
			return true
		}
	}
	return false
}

// IsRateLimitError checks if the error is due to rate limiting
func IsRateLimitError(err error) bool {
	var bybitErr *BybitError
	return errors.As(err, &bybitErr) && bybitErr.Code == ErrCodeRateLimitExceeded
}

// NewBybitError creates a new BybitError
func NewBybitError(code int, message string, details ...string) *BybitError {
	err := &BybitError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WrapAPIError annotates err with the failed operation. API errors keep
// their type so callers can still inspect the code.
func WrapAPIError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		return NewBybitError(bybitErr.Code, bybitErr.Message, "operation: "+operation)
	}

	return fmt.Errorf("%s failed: %w", operation, err)
}

// ParseAPIError converts a response's retCode/retMsg pair into an error
func ParseAPIError(retCode int, retMsg string) error {
	if retCode == 0 {
		return nil
	}
	if retMsg == "" {
		retMsg = GetErrorDescription(retCode)
	}
	return NewBybitError(retCode, retMsg)
}

// ErrorCodes maps common error codes to human-readable messages
var ErrorCodes = map[int]string{
	ErrCodeInvalidParameter:  "Invalid request parameter",
	ErrCodeInvalidAPIKey:     "Invalid API key",
	ErrCodeInvalidSignature:  "Invalid signature",
	ErrCodeInvalidTimestamp:  "Invalid timestamp",
	ErrCodeRateLimitExceeded: "Rate limit exceeded",
	ErrCodeSymbolNotFound:    "Symbol not found",
	ErrCodeServerTimeout:     "Server timeout",
}

// GetErrorDescription returns a human-readable description for an error code
func GetErrorDescription(code int) string {
	if desc, exists := ErrorCodes[code]; exists {
		return desc
	}
	return fmt.Sprintf("Unknown error code: %d", code)
}
