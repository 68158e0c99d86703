// Package seatmap computes the seat grid of a showtime from its layout and
// the two sources of occupied seats: the catalog's preseeded seats and the
// seats held by ledger bookings. Everything here is pure.
package seatmap

import (
	"errors"
	"fmt"

	"github.com/kirinyoku/cinebook/internal/domain"
)

var ErrSeatOutOfRange = errors.New("seat outside the layout")

// SeatID numbers seats row-major from 1. row and column are 1-based.
func SeatID(row, column, columns int) int {
	return (row-1)*columns + column
}

// Position is the inverse of SeatID.
func Position(seatID, columns int) (row, column int) {
	return (seatID-1)/columns + 1, (seatID-1)%columns + 1
}

// Grid is the full seat map of one showtime.
type Grid struct {
	Layout domain.SeatLayout
	Seats  []domain.Seat
}

// Build lays out every seat of layout and marks it booked when it appears
// in preseeded or in ledgerBooked. Neither input is modified.
func Build(layout domain.SeatLayout, preseeded, ledgerBooked []int) Grid {
	booked := make(map[int]struct{}, len(preseeded)+len(ledgerBooked))
	for _, id := range preseeded {
		booked[id] = struct{}{}
	}
	for _, id := range ledgerBooked {
		booked[id] = struct{}{}
	}

	seats := make([]domain.Seat, 0, layout.Capacity())
	for row := 1; row <= layout.Rows; row++ {
		for col := 1; col <= layout.Columns; col++ {
			id := SeatID(row, col, layout.Columns)

			status := domain.SeatAvailable
			if _, ok := booked[id]; ok {
				status = domain.SeatBooked
			}

			seats = append(seats, domain.Seat{ID: id, Row: row, Column: col, Status: status})
		}
	}

	return Grid{Layout: layout, Seats: seats}
}

func (g Grid) Seat(id int) (domain.Seat, error) {
	if id < 1 || id > len(g.Seats) {
		return domain.Seat{}, fmt.Errorf("seat %d: %w", id, ErrSeatOutOfRange)
	}
	return g.Seats[id-1], nil
}

// Rows splits the seats by row, top to bottom.
func (g Grid) Rows() [][]domain.Seat {
	if g.Layout.Columns <= 0 {
		return nil
	}

	rows := make([][]domain.Seat, 0, g.Layout.Rows)
	for start := 0; start < len(g.Seats); start += g.Layout.Columns {
		rows = append(rows, g.Seats[start:start+g.Layout.Columns])
	}
	return rows
}

// Matches reports whether the grid marks exactly the seats of preseeded and
// ledgerBooked that fall inside the layout as booked.
func (g Grid) Matches(preseeded, ledgerBooked []int) bool {
	if len(g.Seats) != g.Layout.Capacity() {
		return false
	}

	want := make(map[int]struct{}, len(preseeded)+len(ledgerBooked))
	for _, ids := range [][]int{preseeded, ledgerBooked} {
		for _, id := range ids {
			if id >= 1 && id <= len(g.Seats) {
				want[id] = struct{}{}
			}
		}
	}

	booked := 0
	for _, s := range g.Seats {
		if s.Status != domain.SeatBooked {
			continue
		}
		if _, ok := want[s.ID]; !ok {
			return false
		}
		booked++
	}

	return booked == len(want)
}

func (g Grid) Available() int {
	n := 0
	for _, s := range g.Seats {
		if s.Status == domain.SeatAvailable {
			n++
		}
	}
	return n
}
