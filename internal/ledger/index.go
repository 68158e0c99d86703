package ledger

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/kirinyoku/cinebook/internal/domain"
)

type seatSet map[int]struct{}

// seatIndex maps a showtime to the seats held by live bookings. Values are
// never mutated once the index is published; with and without return
// modified copies.
type seatIndex map[domain.ShowtimeKey]seatSet

func buildIndex(bookings []domain.Booking) (seatIndex, error) {
	ix := make(seatIndex)

	for _, b := range bookings {
		key := b.Key()
		if clash := ix.conflicts(key, b.SelectedSeats); len(clash) > 0 {
			return nil, fmt.Errorf("booking %s claims seats %v already held for showtime %s", b.ID, clash, key)
		}

		set, ok := ix[key]
		if !ok {
			set = make(seatSet, len(b.SelectedSeats))
			ix[key] = set
		}
		for _, seat := range b.SelectedSeats {
			set[seat] = struct{}{}
		}
	}

	return ix, nil
}

func (ix seatIndex) has(key domain.ShowtimeKey, seat int) bool {
	_, ok := ix[key][seat]
	return ok
}

func (ix seatIndex) conflicts(key domain.ShowtimeKey, seats []int) []int {
	set := ix[key]
	if len(set) == 0 {
		return nil
	}

	var clash []int
	for _, seat := range seats {
		if _, ok := set[seat]; ok {
			clash = append(clash, seat)
		}
	}

	return clash
}

func (ix seatIndex) with(key domain.ShowtimeKey, seats []int) seatIndex {
	next := maps.Clone(ix)

	set := make(seatSet, len(ix[key])+len(seats))
	maps.Copy(set, ix[key])
	for _, seat := range seats {
		set[seat] = struct{}{}
	}
	next[key] = set

	return next
}

func (ix seatIndex) without(key domain.ShowtimeKey, seats []int) seatIndex {
	next := maps.Clone(ix)

	set := maps.Clone(ix[key])
	for _, seat := range seats {
		delete(set, seat)
	}

	if len(set) == 0 {
		delete(next, key)
	} else {
		next[key] = set
	}

	return next
}

func (ix seatIndex) seats(key domain.ShowtimeKey) []int {
	out := slices.Collect(maps.Keys(ix[key]))
	slices.Sort(out)
	return out
}

// equal compares two indexes, treating a missing key and an empty set as
// the same thing.
func (ix seatIndex) equal(other seatIndex) bool {
	for key, set := range ix {
		if !maps.Equal(set, other[key]) {
			return false
		}
	}
	for key, set := range other {
		if _, ok := ix[key]; !ok && len(set) > 0 {
			return false
		}
	}
	return true
}

func formatKey(key domain.ShowtimeKey) string {
	return key.String()
}

func parseKey(s string) (domain.ShowtimeKey, error) {
	movie, showtime, ok := strings.Cut(s, "-")
	if !ok {
		return domain.ShowtimeKey{}, fmt.Errorf("key %q is not of the form movieId-showtimeId", s)
	}

	movieID, err := strconv.ParseInt(movie, 10, 64)
	if err != nil {
		return domain.ShowtimeKey{}, fmt.Errorf("key %q: movie id: %w", s, err)
	}

	showtimeID, err := strconv.ParseInt(showtime, 10, 64)
	if err != nil {
		return domain.ShowtimeKey{}, fmt.Errorf("key %q: showtime id: %w", s, err)
	}

	if movieID < 0 || showtimeID < 0 {
		return domain.ShowtimeKey{}, fmt.Errorf("key %q: ids must not be negative", s)
	}

	return domain.ShowtimeKey{MovieID: movieID, ShowtimeID: showtimeID}, nil
}
