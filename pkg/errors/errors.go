package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a domain error carrying the HTTP status it maps to. Code is the
// stable identifier clients switch on; Message is human readable.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares codes, so copies of a sentinel made by Clone or With match it.
func (e *Error) Is(target error) bool {
	var t *Error
	if e == nil || !errors.As(target, &t) || t == nil {
		return false
	}
	return e.Code == t.Code
}

// With returns a copy of e wrapping cause. An empty message keeps e's.
func (e *Error) With(cause error, message string) *Error {
	out := Clone(e, message)
	if out != nil {
		out.Err = cause
	}
	return out
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Generic failures.
var (
	ErrNotFound        = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized    = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation      = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal        = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrFeatureDisabled = New("FEATURE_DISABLED", http.StatusNotFound, "feature disabled")
	ErrCacheMiss       = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Catalog failures. Upstream problems surface as 502 so clients can tell
// them apart from bad input.
var (
	ErrCourseNotFound     = New("COURSE_NOT_FOUND", http.StatusNotFound, "course code not found")
	ErrProfessorNotFound  = New("PROFESSOR_NOT_FOUND", http.StatusNotFound, "professor not found")
	ErrCatalogUnavailable = New("CATALOG_UNAVAILABLE", http.StatusBadGateway, "course catalog unavailable")
	ErrInvalidMeetingTime = New("INVALID_MEETING_TIME", http.StatusBadGateway, "catalog returned a malformed meeting time")
)

// FromError returns err as an *Error, wrapping anything untyped as internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal.With(err, "")
}

// Clone copies err, replacing the message when one is given.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	out := *err
	if message != "" {
		out.Message = message
	}
	return &out
}
