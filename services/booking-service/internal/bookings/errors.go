package bookings

import (
	"errors"
	"fmt"
)

var (
	// ErrConflict means the requested placement collides with another booking.
	ErrConflict = errors.New("booking conflict")
	ErrNotFound = errors.New("booking not found")
	// ErrInvalid wraps every validation failure; the wrapped text is user facing.
	ErrInvalid = errors.New("invalid booking")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...)
}
