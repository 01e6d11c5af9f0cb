package domain

import "errors"

// Error kinds. Every package-level sentinel in the service wraps exactly one of these,
// so callers can classify any error with errors.Is.
var (
	// ErrNotFound referenced entity is absent
	ErrNotFound = errors.New("not found")

	// ErrValidation business rule violation
	ErrValidation = errors.New("validation error")

	// ErrAlreadyExists duplicate booking, session or selection
	ErrAlreadyExists = errors.New("already exists")

	// ErrConflict lost a race for a resource lock or a serializable transaction
	ErrConflict = errors.New("conflict")

	// ErrDatabase backing store failure
	ErrDatabase = errors.New("database error")
)

// ErrorKind names an error kind in API responses
type ErrorKind string

const (
	KindNotFound      ErrorKind = "NotFound"
	KindValidation    ErrorKind = "ValidationError"
	KindAlreadyExists ErrorKind = "AlreadyExists"
	KindConflict      ErrorKind = "Conflict"
	KindDatabase      ErrorKind = "DatabaseError"
	KindInternal      ErrorKind = "InternalError"
)

// KindOf returns the kind of err; errors without a kind are reported as internal
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrDatabase):
		return KindDatabase
	default:
		return KindInternal
	}
}

// HasKind reports whether err already carries one of the kinds
func HasKind(err error) bool {
	return KindOf(err) != KindInternal && err != nil
}
