package httperr

import (
	"errors"
	"net/http"
)

// Kind classifies a BusinessError for the HTTP boundary.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindBusy
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Extra   map[string]any
}

func (e BusinessError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	return e.Code
}

// Is matches on Code so sentinel errors work with errors.Is.
func (e BusinessError) Is(target error) bool {
	t, ok := target.(BusinessError)
	return ok && t.Code == e.Code
}

// Status maps the kind to its HTTP status. Conflicts are reported as 400.
func (e BusinessError) Status() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func ErrBusiness(code string) error {
	return BusinessError{Kind: KindConflict, Code: code}
}

func Validation(code, message string) error {
	return BusinessError{Kind: KindValidation, Code: code, Message: message}
}

func Missing(code, message string) error {
	return BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

func Conflict(code, message string) error {
	return BusinessError{Kind: KindConflict, Code: code, Message: message}
}

func Busy(cause error) error {
	return busyError{cause: cause}
}

type busyError struct {
	cause error
}

func (e busyError) Error() string {
	return "database_busy: " + e.cause.Error()
}

func (e busyError) Unwrap() error { return e.cause }

func (e busyError) As(target any) bool {
	if be, ok := target.(*BusinessError); ok {
		*be = BusinessError{
			Kind:    KindBusy,
			Code:    "database_busy",
			Message: "La base de datos está ocupada, reintente en unos segundos",
		}
		return true
	}
	return false
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) Kind {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return 0
}
