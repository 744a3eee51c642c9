package common

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors recovered at the handler boundary and mapped to stable
// response kinds. Infrastructure errors pass through untouched.
var (
	ErrSeatsUnavailable   = errors.New("not enough seats available")
	ErrInvalidSignature   = errors.New("invalid payment signature")
	ErrForgedTicket       = errors.New("ticket signature verification failed")
	ErrOrphanedTicket     = errors.New("ticket references a missing event")
	ErrNotAllowed         = errors.New("not allowed")
	ErrAlreadyCheckedIn   = errors.New("ticket already checked in")
	ErrAlreadyCancelled   = errors.New("ticket already cancelled")
	ErrPaymentNotCaptured = errors.New("payment not captured")
	ErrBookingClosed      = errors.New("booking is not awaiting payment")
	ErrNotFound           = errors.New("not found")
)

// AlreadyCheckedInError reports the original check-in so the gate staff
// can see when and by whom a duplicate ticket was first admitted.
type AlreadyCheckedInError struct {
	At time.Time
	By uint
}

func (e *AlreadyCheckedInError) Error() string {
	return fmt.Sprintf("already scanned at %s", e.At.Format(time.RFC3339))
}

func (e *AlreadyCheckedInError) Unwrap() error {
	return ErrAlreadyCheckedIn
}
