package service

import "errors"

var (
	ErrValidation        = errors.New("validation")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrLocked            = errors.New("locked")
	ErrConflict          = errors.New("conflict")
	ErrSearchUnavailable = errors.New("search unavailable")
)

// Error carries a caller-facing message next to one of the sentinels above.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Message returns the caller-facing text of err, or fallback for internal errors.
func Message(err error, fallback string) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Msg
	}
	return fallback
}
