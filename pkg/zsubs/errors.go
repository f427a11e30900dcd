package zsubs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is an application-level failure reported by the service through a
// non-zero envelope code, possibly on a successful HTTP status.
type APIError struct {
	Code    int    `json:"code"    yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s (code: %d)", e.Message, e.Code)
}

// StatusError is returned for HTTP statuses outside the 2xx range. Code and
// Message are filled from the response envelope when the body carries one.
type StatusError struct {
	StatusCode int
	Code       int
	Message    string
	Body       []byte
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s (code: %d)", e.StatusCode, e.Message, e.Code)
	}

	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// TransportError wraps a failure to complete the HTTP exchange at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

// Unwrap returns the underlying network error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Service error codes worth matching on.
const (
	ErrorCodeSuccess           = 0
	ErrorCodeInvalidValue      = 2
	ErrorCodeNotAuthorized     = 57
	ErrorCodeInvalidOAuthToken = 14
	ErrorCodeRecordNotFound    = 1002
	ErrorCodeResourceNotFound  = 1004
	ErrorCodeTooManyRequests   = 44
)

// Static errors for err113 compliance.
var (
	ErrUnknownEntityKind     = errors.New("unknown entity kind")
	ErrMissingIdentifier     = errors.New("entity identifier is required")
	ErrRecordDeleted         = errors.New("record has been deleted")
	ErrMissingPayload        = errors.New("response carries no entity payload")
	ErrMissingPathParam      = errors.New("missing path parameter")
	ErrPageLimitExceeded     = errors.New("page limit exceeded")
	ErrOperationNotSupported = errors.New("operation not supported for this entity kind")
	ErrInvalidTemplate       = errors.New("invalid template")
	ErrInvalidTree           = errors.New("invalid attribute tree")
	ErrInvalidDefinition     = errors.New("invalid entity definition")
	ErrNotFound              = errors.New("no matching record found")
	ErrConfigRequired        = errors.New("config is required")
	ErrAPIEndpointRequired   = errors.New("API endpoint is required")
)

// ErrorCode returns the service code carried by err, or -1.
func ErrorCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}

	statusErr := &StatusError{}
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Code
	}

	return -1
}

// IsNotFound checks if the error reports a missing record.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}

	statusErr := &StatusError{}
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return true
	}

	code := ErrorCode(err)

	return code == ErrorCodeRecordNotFound || code == ErrorCodeResourceNotFound
}

// IsUnauthorized checks if the error is an authentication failure.
func IsUnauthorized(err error) bool {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
		return true
	}

	code := ErrorCode(err)

	return code == ErrorCodeInvalidOAuthToken || code == ErrorCodeNotAuthorized
}

// IsRateLimited checks if the service throttled the request.
func IsRateLimited(err error) bool {
	statusErr := &StatusError{}
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	return ErrorCode(err) == ErrorCodeTooManyRequests
}

// NewStatusError builds a StatusError, reading code and message from body when
// it is an envelope.
func NewStatusError(statusCode int, body []byte) *StatusError {
	statusErr := &StatusError{StatusCode: statusCode, Body: body}

	var env struct {
		Code    *int   `json:"code"`
		Message string `json:"message"`
	}

	if json.Unmarshal(body, &env) == nil && env.Code != nil {
		statusErr.Code = *env.Code
		statusErr.Message = env.Message
	}

	return statusErr
}
