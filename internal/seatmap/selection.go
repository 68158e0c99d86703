package seatmap

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/cinebook/internal/domain"
)

var ErrSeatBooked = errors.New("seat is already booked")

// Selection is the set of seats a user picked on a grid. Only available
// seats can be selected.
type Selection struct {
	grid     Grid
	selected []int
}

func NewSelection(g Grid) *Selection {
	return &Selection{grid: g}
}

// Toggle selects an available seat or deselects an already selected one.
// Booked seats and seats outside the grid are rejected and leave the
// selection unchanged.
func (s *Selection) Toggle(seatID int) error {
	if i := slices.Index(s.selected, seatID); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return nil
	}

	return s.Select(seatID)
}

// Select adds seatID to the selection. Selecting a seat twice is a no-op.
func (s *Selection) Select(seatID int) error {
	seat, err := s.grid.Seat(seatID)
	if err != nil {
		return err
	}

	if seat.Status == domain.SeatBooked {
		return fmt.Errorf("seat %d: %w", seatID, ErrSeatBooked)
	}

	if !slices.Contains(s.selected, seatID) {
		s.selected = append(s.selected, seatID)
	}

	return nil
}

// Seats returns the selected seat ids in selection order.
func (s *Selection) Seats() []int {
	return slices.Clone(s.selected)
}

func (s *Selection) Len() int {
	return len(s.selected)
}

// Total is pricePerSeat times the number of selected seats, computed from
// scratch on every call.
func (s *Selection) Total(pricePerSeat decimal.Decimal) decimal.Decimal {
	return Total(pricePerSeat, len(s.selected))
}

func Total(pricePerSeat decimal.Decimal, seats int) decimal.Decimal {
	return pricePerSeat.Mul(decimal.NewFromInt(int64(seats)))
}
