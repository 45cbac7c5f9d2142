// Package apperr defines the error taxonomy shared by the providers, the
// aggregation core and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is the only fatal kind: the trip request itself is unusable.
	KindValidation
	// KindProviderUnavailable covers upstream HTTP failures, timeouts and malformed bodies.
	KindProviderUnavailable
	// KindIdentifierResolution means a place name could not be mapped to a provider id.
	KindIdentifierResolution
	// KindSynthesisParse means the text generator returned something we could not use.
	KindSynthesisParse
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindIdentifierResolution:
		return "identifier_resolution"
	case KindSynthesisParse:
		return "synthesis_parse"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind onto the status code returned to API callers.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindProviderUnavailable:
		return http.StatusBadGateway
	case KindIdentifierResolution:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Unavailable(op string, err error) *Error {
	return Wrap(KindProviderUnavailable, "upstream unavailable", err).WithOp(op)
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// StatusOf returns the HTTP status for err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
