package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// FetchFailureMessage describes a rejected or unreachable catalog request.
	FetchFailureMessage = "catalog request failed"
	// NotFoundMessage describes a lookup for an id absent from the catalog cache.
	NotFoundMessage = "not found"
	// InvalidQuantityMessage describes a product with missing or non-numeric stock data.
	InvalidQuantityMessage = "invalid stock quantity"
	// UnauthorizedMessage describes a mutation attempted without a usable token.
	UnauthorizedMessage = "unauthorized"
	// InvalidInputMessage describes a request rejected before it reaches the remote API.
	InvalidInputMessage = "invalid input"
)

// Kind classifies an AppError for callers that branch on the failure category.
type Kind string

const (
	KindInternal        Kind = "internal"
	KindFetchFailure    Kind = "fetch_failure"
	KindNotFound        Kind = "not_found"
	KindInvalidQuantity Kind = "invalid_quantity"
	KindUnauthorized    Kind = "unauthorized"
	KindPersistence     Kind = "persistence"
	KindInvalidInput    Kind = "invalid_input"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// AppError wraps an underlying error with an HTTP status, a kind and a safe message.
type AppError struct {
	Err     error
	Status  int
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Kind:    KindInternal,
		Message: message,
	}
}

// FetchFailed marks err as a FetchFailure against the remote catalog service.
func FetchFailed(err error) *AppError {
	if err == nil {
		return nil
	}
	var app *AppError
	if errors.As(err, &app) && app.Kind == KindFetchFailure {
		return app
	}
	status := http.StatusBadGateway
	if errors.As(err, &app) && app.Status != 0 {
		status = app.Status
	}
	return &AppError{Err: err, Status: status, Kind: KindFetchFailure, Message: FetchFailureMessage}
}

// NotFound reports that what is not present in the local cache.
func NotFound(what string) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%s: %w", what, ErrNotFound),
		Status:  http.StatusNotFound,
		Kind:    KindNotFound,
		Message: NotFoundMessage,
	}
}

// InvalidQuantity reports that the product with the given id carries no usable stock level.
func InvalidQuantity(productID int64) *AppError {
	return &AppError{
		Err:     fmt.Errorf("product %d: %w", productID, ErrInvalidQuantity),
		Status:  http.StatusUnprocessableEntity,
		Kind:    KindInvalidQuantity,
		Message: InvalidQuantityMessage,
	}
}

// Unauthorized reports a missing or rejected admin token.
func Unauthorized(err error) *AppError {
	return &AppError{Err: err, Status: http.StatusUnauthorized, Kind: KindUnauthorized, Message: UnauthorizedMessage}
}

// InvalidInput reports a caller-side request error such as a missing required field.
func InvalidInput(err error) *AppError {
	return &AppError{Err: err, Status: http.StatusBadRequest, Kind: KindInvalidInput, Message: InvalidInputMessage}
}

// FromStatus converts a non-2xx response from the remote API into an AppError.
func FromStatus(status int, remoteMessage string) *AppError {
	if remoteMessage == "" {
		remoteMessage = http.StatusText(status)
	}
	err := fmt.Errorf("remote status %d: %s", status, remoteMessage)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AppError{Err: err, Status: status, Kind: KindUnauthorized, Message: UnauthorizedMessage}
	case status == http.StatusNotFound:
		return &AppError{Err: fmt.Errorf("%w: %w", err, ErrNotFound), Status: status, Kind: KindNotFound, Message: NotFoundMessage}
	default:
		return &AppError{Err: err, Status: status, Kind: KindFetchFailure, Message: FetchFailureMessage}
	}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	var app *AppError
	if errors.As(err, &app) {
		return app.Kind
	}
	if err == nil {
		return ""
	}
	return KindInternal
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return errors.As(e.Err, target)
}
