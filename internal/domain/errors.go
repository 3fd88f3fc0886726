package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the domain. Services return these (possibly
// wrapped); the delivery layer maps them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

// Ticket lifecycle errors.
var (
	ErrTicketNotFound       = errors.New("ticket not found")
	ErrTicketAlreadyScanned = errors.New("ticket already scanned")
	ErrTokenNotDetected     = errors.New("qr code not detected")
	ErrEventNotPurchasable  = errors.New("tickets cannot be purchased for past events")
	ErrReturnWindowClosed   = errors.New("tickets cannot be returned on or after the event date")

	// ErrInventoryCorrupt means a release would have driven tickets_sold
	// below zero. The transaction is rolled back and the condition is
	// surfaced rather than clamped.
	ErrInventoryCorrupt = errors.New("ticket inventory corrupt: sold count would go negative")
)

// InsufficientInventoryError is returned when a purchase asks for more
// tickets than the event has left. Remaining carries the exact count so the
// message can report it.
type InsufficientInventoryError struct {
	Remaining int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("Only %d tickets are available", e.Remaining)
}
