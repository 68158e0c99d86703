package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
)

// bookingRecord is the persisted shape of a booking in the "bookings" entry.
type bookingRecord struct {
	BookingID     string      `json:"bookingId"`
	MovieTitle    string      `json:"movieTitle"`
	Showtime      string      `json:"showtime"`
	SelectedSeats []int       `json:"selectedSeats"`
	TotalPrice    json.Number `json:"totalPrice"`
	MovieID       int64       `json:"movieId"`
	ShowtimeID    int64       `json:"showtimeId"`
}

func encodeState(st *state) (repository.Snapshot, error) {
	records := make([]bookingRecord, 0, len(st.bookings))
	for _, b := range st.bookings {
		records = append(records, bookingRecord{
			BookingID:     b.ID,
			MovieTitle:    b.MovieTitle,
			Showtime:      b.Showtime,
			SelectedSeats: b.SelectedSeats,
			TotalPrice:    json.Number(b.TotalPrice.String()),
			MovieID:       b.MovieID,
			ShowtimeID:    b.ShowtimeID,
		})
	}

	bookings, err := json.Marshal(records)
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("encode %s: %w", repository.EntryBookings, err)
	}

	seats := make(map[string][]int, len(st.index))
	for key := range st.index {
		seats[formatKey(key)] = st.index.seats(key)
	}

	bookedSeats, err := json.Marshal(seats)
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("encode %s: %w", repository.EntryBookedSeats, err)
	}

	return repository.Snapshot{Bookings: bookings, BookedSeats: bookedSeats}, nil
}

func decodeBookings(raw []byte) ([]domain.Booking, error) {
	if isBlank(raw) {
		return nil, nil
	}

	var records []bookingRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &CorruptStateError{Entry: repository.EntryBookings, Err: err}
	}

	bookings := make([]domain.Booking, 0, len(records))
	for i, r := range records {
		total, err := decimal.NewFromString(r.TotalPrice.String())
		if err != nil {
			return nil, &CorruptStateError{
				Entry: repository.EntryBookings,
				Err:   fmt.Errorf("record %d: totalPrice: %w", i, err),
			}
		}

		bookings = append(bookings, domain.Booking{
			ID:            r.BookingID,
			MovieID:       r.MovieID,
			ShowtimeID:    r.ShowtimeID,
			MovieTitle:    r.MovieTitle,
			Showtime:      r.Showtime,
			SelectedSeats: r.SelectedSeats,
			TotalPrice:    total,
		})
	}

	return bookings, nil
}

func decodeBookedSeats(raw []byte) (seatIndex, error) {
	ix := make(seatIndex)
	if isBlank(raw) {
		return ix, nil
	}

	var seats map[string][]int
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, &CorruptStateError{Entry: repository.EntryBookedSeats, Err: err}
	}

	for k, ids := range seats {
		key, err := parseKey(k)
		if err != nil {
			return nil, &CorruptStateError{Entry: repository.EntryBookedSeats, Err: err}
		}

		set := make(seatSet, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		ix[key] = set
	}

	return ix, nil
}

func isBlank(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
