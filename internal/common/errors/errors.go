// Package errors provides the standardized error taxonomy of the mock agents.
//
// None of these errors ever reach an HTTP client as a non-200 status: every
// failure path resolves to a normally-shaped chat completion. The structured
// form exists so failures can be logged and counted consistently.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeExtractionFailed    ErrorCode = "EXTRACTION_FAILED"
	ErrCodeMalformedRequest    ErrorCode = "MALFORMED_REQUEST"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeProviderTimeout     ErrorCode = "PROVIDER_TIMEOUT"
	ErrCodeLocationNotFound    ErrorCode = "LOCATION_NOT_FOUND"
	ErrCodeForecastUnavailable ErrorCode = "FORECAST_UNAVAILABLE"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata returns e after merging the given key/value pairs into its metadata.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// Fields flattens the error into logger fields.
func (e *StandardError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"errorCode":    string(e.Code),
		"errorMessage": e.Message,
	}
	if e.Details != "" {
		fields["errorDetails"] = e.Details
	}
	for k, v := range e.Metadata {
		fields[k] = v
	}
	return fields
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewExtractionFailedError reports that no domain key could be identified.
func NewExtractionFailedError(text string) *StandardError {
	e := newError(ErrCodeExtractionFailed, "No domain key identified in user message", nil)
	e.Details = fmt.Sprintf("text: %q", text)
	return e
}

// NewMalformedRequestError reports an undecodable chat-completion body.
func NewMalformedRequestError(err error) *StandardError {
	return newError(ErrCodeMalformedRequest, "Request body could not be decoded", err)
}

// NewProviderUnavailableError reports a live data source that failed or returned unusable data.
func NewProviderUnavailableError(service string, err error) *StandardError {
	return newError(ErrCodeProviderUnavailable, "Live data source unavailable", err).
		WithMetadata("service", service)
}

// NewProviderTimeoutError reports a live data source that exceeded its deadline.
func NewProviderTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeProviderTimeout, "Live data source timed out", err).
		WithMetadata("service", service)
}

// NewLocationNotFoundError reports a geocoding miss.
func NewLocationNotFoundError(city string, err error) *StandardError {
	return newError(ErrCodeLocationNotFound, "Location could not be geocoded", err).
		WithMetadata("city", city)
}

// NewForecastUnavailableError reports a forecast lookup failure after a successful geocode.
func NewForecastUnavailableError(city string, err error) *StandardError {
	return newError(ErrCodeForecastUnavailable, "Forecast could not be fetched", err).
		WithMetadata("city", city)
}

// CodeOf extracts the ErrorCode of err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

// IsProviderFailure reports whether err stems from an outbound data source.
func IsProviderFailure(err error) bool {
	switch CodeOf(err) {
	case ErrCodeProviderUnavailable, ErrCodeProviderTimeout,
		ErrCodeLocationNotFound, ErrCodeForecastUnavailable:
		return true
	}
	return false
}

// GetErrorCategory groups codes for metric labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeExtractionFailed, ErrCodeMalformedRequest:
		return "request"
	case ErrCodeProviderUnavailable, ErrCodeProviderTimeout:
		return "provider"
	case ErrCodeLocationNotFound, ErrCodeForecastUnavailable:
		return "location"
	default:
		return "unknown"
	}
}
