package showtimes

import (
	"errors"
	"fmt"
)

var (
	ErrMovieNotFound    = errors.New("movie not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrSeatsUnavailable = errors.New("some seats are unavailable")
	ErrInvalidSeats     = errors.New("some seats do not exist")
)

type SeatsUnavailableError struct {
	SeatIDs []int
}

func (e SeatsUnavailableError) Error() string {
	return fmt.Sprintf("some or all seats are unavailable: %v", e.SeatIDs)
}

func (e SeatsUnavailableError) Unwrap() error {
	return ErrSeatsUnavailable
}

type SeatsNotFoundError struct {
	SeatIDs []int
}

func (e SeatsNotFoundError) Error() string {
	return fmt.Sprintf("seats not found: %v", e.SeatIDs)
}

func (e SeatsNotFoundError) Unwrap() error {
	return ErrInvalidSeats
}
