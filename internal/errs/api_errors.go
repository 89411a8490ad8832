package errs

import (
	"encoding/json"
	"net/http"
)

// ErrorType classifies an APIError on the wire. Clients can branch on the
// type without parsing the human-readable message.
type ErrorType string

const (
	ErrorTypeValidation  ErrorType = "VALIDATION_ERROR"
	ErrorTypeAuth        ErrorType = "AUTH_ERROR"
	ErrorTypePermission  ErrorType = "PERMISSION_ERROR"
	ErrorTypeResource    ErrorType = "RESOURCE_ERROR"
	ErrorTypeInternal    ErrorType = "INTERNAL_ERROR"
	ErrorTypeUnavailable ErrorType = "UNAVAILABLE_ERROR"
	ErrorTypeRateLimit   ErrorType = "RATE_LIMIT_ERROR"
	ErrorTypeRender      ErrorType = "RENDER_ERROR"
)

// APIError is the uniform JSON error body produced by the entry point.
// Every failure that surfaces out of the dispatch chain is reported in this
// shape, regardless of which component raised it.
type APIError struct {
	Type    ErrorType `json:"type"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ToJSON serializes the error for the response body. Serialization of this
// struct cannot realistically fail, but the fallback keeps the response
// well-formed if it ever does.
func (e *APIError) ToJSON() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte(`{"type":"INTERNAL_ERROR","code":500,"message":"error serializing error response"}`)
	}
	return data
}

// WithDetails attaches structured detail to the error and returns it for
// chaining.
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func NewValidationError(message string) *APIError {
	return &APIError{Type: ErrorTypeValidation, Code: http.StatusBadRequest, Message: message}
}

func NewAuthError(message string) *APIError {
	return &APIError{Type: ErrorTypeAuth, Code: http.StatusUnauthorized, Message: message}
}

func NewPermissionError(message string) *APIError {
	return &APIError{Type: ErrorTypePermission, Code: http.StatusForbidden, Message: message}
}

func NewResourceError(message string) *APIError {
	return &APIError{Type: ErrorTypeResource, Code: http.StatusNotFound, Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Type: ErrorTypeInternal, Code: http.StatusInternalServerError, Message: message}
}

func NewUnavailableError(message string) *APIError {
	return &APIError{Type: ErrorTypeUnavailable, Code: http.StatusServiceUnavailable, Message: message}
}

func NewRateLimitError(message string) *APIError {
	return &APIError{Type: ErrorTypeRateLimit, Code: http.StatusTooManyRequests, Message: message}
}

func NewRenderError(message string) *APIError {
	return &APIError{Type: ErrorTypeRender, Code: http.StatusInternalServerError, Message: message}
}
