package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatBooked    SeatStatus = "booked"
)

type Movie struct {
	ID          int64
	Title       string
	Genre       string
	Duration    string
	Rating      string
	Description string
	Poster      string
	Showtimes   []Showtime
}

type Showtime struct {
	ID     int64
	Time   string
	Price  decimal.Decimal
	Layout SeatLayout
	// Preseeded holds seats occupied by the catalog itself, independent of
	// any booking made through the ledger.
	Preseeded []int
}

type SeatLayout struct {
	Rows    int
	Columns int
}

func (l SeatLayout) Capacity() int {
	return l.Rows * l.Columns
}

// ShowtimeKey identifies one screening. It is the in-memory key of the
// availability index.
type ShowtimeKey struct {
	MovieID    int64
	ShowtimeID int64
}

func (k ShowtimeKey) String() string {
	return fmt.Sprintf("%d-%d", k.MovieID, k.ShowtimeID)
}

type Seat struct {
	ID     int
	Row    int
	Column int
	Status SeatStatus
}

type Booking struct {
	ID            string
	MovieID       int64
	ShowtimeID    int64
	MovieTitle    string
	Showtime      string
	SelectedSeats []int
	TotalPrice    decimal.Decimal
}

func (b Booking) Key() ShowtimeKey {
	return ShowtimeKey{MovieID: b.MovieID, ShowtimeID: b.ShowtimeID}
}

// Clone returns a copy that shares no mutable state with b.
func (b Booking) Clone() Booking {
	cp := b
	cp.SelectedSeats = append([]int(nil), b.SelectedSeats...)
	return cp
}
