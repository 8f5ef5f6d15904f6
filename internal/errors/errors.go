package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed analysis or link request
type Kind string

const (
	KindNone             Kind = ""
	KindConfiguration    Kind = "configuration"
	KindProvider         Kind = "provider"
	KindQuotaExceeded    Kind = "quota_exceeded"
	KindExtractionFailed Kind = "extraction_failed"
	KindLinkConstruction Kind = "link_construction"
)

// Messages shown to users for the kinds that carry a fixed text.
const (
	QuotaExceededMessage    = "You've exceeded your API quota. Please check your plan and billing details with the provider, or try again later."
	ExtractionFailedMessage = "Could not extract a valid position from the response."
	ManualCopyMessage       = "Could not open lichess automatically. Copy the PGN and paste it at https://lichess.org/paste"
)

// AppError represents a classified failure
type AppError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates an error for missing credentials or unknown providers
func NewConfigurationError(message string, cause error) *AppError {
	return &AppError{Kind: KindConfiguration, Message: message, Cause: cause}
}

// NewProviderError creates an error for a non-quota provider failure
func NewProviderError(message string, cause error) *AppError {
	return &AppError{Kind: KindProvider, Message: message, Cause: cause}
}

// NewQuotaExceededError creates an error for provider rate or billing limits
func NewQuotaExceededError(cause error) *AppError {
	return &AppError{Kind: KindQuotaExceeded, Message: QuotaExceededMessage, Cause: cause}
}

// NewExtractionError creates an error for replies with no usable position
func NewExtractionError(cause error) *AppError {
	return &AppError{Kind: KindExtractionFailed, Message: ExtractionFailedMessage, Cause: cause}
}

// NewLinkConstructionError creates an error for PGN that cannot be turned into a link
func NewLinkConstructionError(message string, cause error) *AppError {
	return &AppError{Kind: KindLinkConstruction, Message: message, Cause: cause}
}

// KindOf returns the kind of the first AppError in err's chain
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindNone
}

// IsKind checks if the error is of a specific kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code returned by the API
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNone:
		return http.StatusOK
	case KindConfiguration:
		return http.StatusBadRequest
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindExtractionFailed, KindLinkConstruction:
		return http.StatusUnprocessableEntity
	case KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
