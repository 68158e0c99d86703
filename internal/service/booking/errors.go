package booking

import "errors"

var (
	ErrNoSeatsSelected = errors.New("no seats selected")
	ErrBookingNotFound = errors.New("booking not found")
)
