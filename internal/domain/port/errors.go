package port

import "errors"

var (
	// ErrCardNotFound is returned when no card exists for the requested ID.
	ErrCardNotFound = errors.New("card not found")

	// ErrConflict is returned when a compare-and-save finds the stored record
	// in a different status or version than the one read.
	ErrConflict = errors.New("card was modified concurrently")

	// ErrDuplicateCardNumber is returned when a generated card number already exists.
	ErrDuplicateCardNumber = errors.New("duplicate card number")

	// ErrDelivery wraps any failure to hand an event to the event channel.
	ErrDelivery = errors.New("event delivery failed")
)
