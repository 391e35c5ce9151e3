// internal/common/errors/errors.go

// Package errors provides standardized error handling for the report pipeline.
package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodePayloadNotFound  ErrorCode = "PAYLOAD_NOT_FOUND"
	ErrCodeRecipientMissing ErrorCode = "RECIPIENT_MISSING"

	ErrCodeChartRenderFailed ErrorCode = "CHART_RENDER_FAILED"
	ErrCodePDFRenderFailed   ErrorCode = "PDF_RENDER_FAILED"

	ErrCodeArtifactWriteFailed ErrorCode = "ARTIFACT_WRITE_FAILED"

	ErrCodeConfigurationInvalid ErrorCode = "CONFIGURATION_INVALID"

	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidPayloadError creates a non-retryable client input error.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Assessment payload could not be scored",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPayloadNotFoundError creates a non-retryable stored payload lookup error.
func NewPayloadNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodePayloadNotFound,
		Message:   "Stored payload not found",
		Details:   fmt.Sprintf("name: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecipientMissingError creates a non-retryable delivery precondition error.
func NewRecipientMissingError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecipientMissing,
		Message:   "No recipient email available for delivery",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewChartRenderError creates a chart stage error. The orchestrator degrades
// to a chart-less report on this code instead of failing the request.
func NewChartRenderError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeChartRenderFailed,
		Message:   "Chart rendering failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPDFRenderError creates a fatal PDF stage error.
func NewPDFRenderError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePDFRenderFailed,
		Message:   "PDF rendering failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactWriteError creates a retryable filesystem publish error.
func NewArtifactWriteError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactWriteFailed,
		Message:   "Failed to publish report artifact",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigurationError creates a startup-fatal configuration error.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigurationInvalid,
		Message:   "Invalid service configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeliveryFailedError creates a delivery error. Artifacts produced before
// the send remain valid.
func NewDeliveryFailedError(recipient string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeliveryFailed,
		Message:   "Report email delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Metadata:  map[string]interface{}{"recipient": recipient},
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

// HTTPStatusMapping maps internal error codes to HTTP response statuses.
var HTTPStatusMapping = map[ErrorCode]int{
	ErrCodeInvalidPayload:       http.StatusBadRequest,
	ErrCodePayloadNotFound:      http.StatusNotFound,
	ErrCodeRecipientMissing:     http.StatusBadRequest,
	ErrCodeChartRenderFailed:    http.StatusInternalServerError,
	ErrCodePDFRenderFailed:      http.StatusInternalServerError,
	ErrCodeArtifactWriteFailed:  http.StatusInternalServerError,
	ErrCodeConfigurationInvalid: http.StatusInternalServerError,
	ErrCodeDeliveryFailed:       http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status for an error code.
func GetHTTPStatus(code ErrorCode) int {
	if status, exists := HTTPStatusMapping[code]; exists {
		return status
	}
	return http.StatusInternalServerError
}

// ==========================
// 4. Utility Functions
// ==========================

// IsCode reports whether err is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := err.(*StandardError)
	return ok && stdErr.Code == code
}

// IsClientError reports whether the code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := GetHTTPStatus(code)
	return status >= 400 && status < 500
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PAYLOAD"):
		return "INPUT"
	case strings.Contains(codeStr, "RENDER"):
		return "RENDER"
	case strings.Contains(codeStr, "ARTIFACT"):
		return "STORAGE"
	case strings.Contains(codeStr, "DELIVERY") || strings.Contains(codeStr, "RECIPIENT"):
		return "DELIVERY"
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	default:
		return "OTHER"
	}
}
