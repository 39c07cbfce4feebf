package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies service errors so controllers can translate them to
// HTTP status codes once, at the boundary.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindConflict
	KindUnprocessable
	KindForbidden
	KindBadRequest
	KindNotImplemented
	KindInternal
)

// ServiceError is the error type returned by the service layer. Controllers
// must not branch on message text, only on Kind.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error { return e.Err }

// HTTPStatus maps the error kind to its response status code.
func (e *ServiceError) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnprocessable:
		return http.StatusUnprocessableEntity
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func NotFoundError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Message: message}
}

func ConflictError(message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Message: message}
}

func UnprocessableError(message string) *ServiceError {
	return &ServiceError{Kind: KindUnprocessable, Message: message}
}

func ForbiddenError(message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Message: message}
}

func BadRequestError(message string) *ServiceError {
	return &ServiceError{Kind: KindBadRequest, Message: message}
}

func NotImplementedError(message string) *ServiceError {
	return &ServiceError{Kind: KindNotImplemented, Message: message}
}

// InternalError wraps an unexpected error at the service boundary.
func InternalError(message string, err error) *ServiceError {
	return &ServiceError{Kind: KindInternal, Message: message, Err: err}
}

// AsServiceError extracts a *ServiceError from err, wrapping unknown errors
// as internal so every failure leaves the service layer typed.
func AsServiceError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return InternalError("unexpected error", err)
}

// IsKind reports whether err is a ServiceError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.Kind == kind
}
