package identification

import (
	"errors"
	"fmt"

	"github.com/lehigh-university-libraries/plantcare/internal/catalog"
)

// Error kinds reported to clients
const (
	KindValidation = "validation"
	KindGateway    = "gateway"
	KindNotFound   = "not_found"
	KindUnknown    = "unknown"
)

// ValidationError rejects an upload before any network call is made
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GatewayError wraps a transport failure, a non-2xx answer or a malformed
// response from the classifier
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("classifier %s failed: %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NotFoundError means the classifier answered but the label has no care data
type NotFoundError struct {
	Label string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no care data for %q", e.Label)
}

func (e *NotFoundError) Unwrap() error {
	return catalog.ErrNotFound
}

// UnknownError is the catch-all for anything else
type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

// Kind classifies err into one of the Kind constants
func Kind(err error) string {
	var (
		validationErr *ValidationError
		gatewayErr    *GatewayError
		notFoundErr   *NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validationErr):
		return KindValidation
	case errors.As(err, &gatewayErr):
		return KindGateway
	case errors.As(err, &notFoundErr), errors.Is(err, catalog.ErrNotFound):
		return KindNotFound
	default:
		return KindUnknown
	}
}

// UserMessage returns the message shown to a user for err
func UserMessage(err error) string {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
	)
	switch Kind(err) {
	case "":
		return ""
	case KindValidation:
		errors.As(err, &validationErr)
		return validationErr.Message
	case KindGateway:
		return "We couldn't reach the plant identification service. Please try again."
	case KindNotFound:
		if errors.As(err, &notFoundErr) {
			return fmt.Sprintf("Care data for %s is coming soon.", notFoundErr.Label)
		}
		return "Care data for this plant is coming soon."
	default:
		return "Something went wrong. Please try again."
	}
}
