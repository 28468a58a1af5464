package storage

import "errors"

// ErrNotFound is returned for expense and owner-profile lookups that match no row.
// Booking lookups return bookings.ErrNotFound instead.
var ErrNotFound = errors.New("not found")
