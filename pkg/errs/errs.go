package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies an error into one of the settlement pipeline's
// failure categories. Kinds are propagated as values and mapped to
// wire codes and HTTP statuses at the API boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindExpiredIntent
	KindAuthentication
	KindNoPathFound
	KindInsufficientFunds
	KindTransaction
	KindNotFound
)

// WireCode returns the stable error code exposed to callers.
func (k Kind) WireCode() string {
	switch k {
	case KindValidation:
		return "VALIDATION_ERROR"
	case KindExpiredIntent:
		return "EXPIRED_INTENT"
	case KindAuthentication:
		return "AUTHENTICATION_ERROR"
	case KindNoPathFound:
		return "NO_PATH_FOUND"
	case KindInsufficientFunds:
		return "INSUFFICIENT_FUNDS"
	case KindTransaction:
		return "TRANSACTION_ERROR"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL_ERROR"
	}
}

// HTTPStatus returns the status code used when an error of this kind
// reaches the API boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindExpiredIntent, KindNoPathFound,
		KindInsufficientFunds, KindTransaction:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// String returns a short label used in logs and metrics.
func (k Kind) String() string {
	return strings.ToLower(k.WireCode())
}

// Error is the tagged error type used throughout the gateway. Message
// is safe to show to callers; ResultCodes and the wrapped cause carry
// raw ledger diagnostics and must only be logged.
type Error struct {
	Kind        Kind
	Message     string
	ResultCodes []string
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind.WireCode(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind.WireCode(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a caller-visible message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf is New with formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and caller-visible message to an underlying
// error, keeping the cause available for logging.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from an error chain. Unclassified errors
// are internal by definition and never leak detail to callers.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the caller-visible message for an error chain.
// Unclassified errors collapse to a generic message.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
