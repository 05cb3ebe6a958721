package store

import "fmt"

// Error is a storage-level error.
type Error struct {
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

// Is matches sentinels by message so wrapped copies still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == e.Message
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{Message: e.Message, Err: err}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{Message: "key not found"}

	// ErrCorruptValue is returned when a stored value is not valid JSON for its type.
	ErrCorruptValue = &Error{Message: "corrupt value"}

	// ErrCorruptLibrary is returned by LoadLibrary when the library blob cannot be parsed.
	// The blob is left in place; callers decide whether to quarantine it.
	ErrCorruptLibrary = &Error{Message: "corrupt library blob"}
)
