// Package apperr defines the operational error taxonomy shared by the
// service layer. Every error a caller is expected to handle carries a
// Kind; anything without one is treated as an internal defect at the
// HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindUnauthenticated
	KindInvalidInput
	KindInvalidState
	KindInvalidSignature
	KindProviderError
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindInvalidInput:
		return "invalid_input"
	case KindInvalidState:
		return "invalid_state"
	case KindInvalidSignature:
		return "invalid_signature"
	case KindProviderError:
		return "provider_error"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the transport status used at the boundary.
// The core never encodes status codes directly.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindInvalidInput, KindInvalidSignature:
		return http.StatusBadRequest
	case KindInvalidState:
		return http.StatusConflict
	case KindConflict:
		return http.StatusConflict
	case KindProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(message string) *Error         { return New(KindNotFound, message) }
func Forbidden(message string) *Error        { return New(KindForbidden, message) }
func Unauthenticated(message string) *Error  { return New(KindUnauthenticated, message) }
func InvalidInput(message string) *Error     { return New(KindInvalidInput, message) }
func InvalidState(message string) *Error     { return New(KindInvalidState, message) }
func InvalidSignature(message string) *Error { return New(KindInvalidSignature, message) }
func Conflict(message string) *Error         { return New(KindConflict, message) }

func ProviderError(message string, err error) *Error {
	return Wrap(KindProviderError, message, err)
}

// KindOf extracts the kind from anywhere in the chain, defaulting to
// KindInternal for errors the taxonomy does not recognize.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsOperational reports whether err is safe to surface to the caller.
func IsOperational(err error) bool {
	var appErr *Error
	return errors.As(err, &appErr)
}
