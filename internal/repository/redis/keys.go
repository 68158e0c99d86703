package redis

import (
	"fmt"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/repository"
)

const ns = "cinebook:v1"

func KeyBookings() string {
	return ns + ":" + repository.EntryBookings
}

func KeyBookedSeats() string {
	return ns + ":" + repository.EntryBookedSeats
}

func KeySeatMap(key domain.ShowtimeKey) string {
	return fmt.Sprintf("%s:showtime:%d:%d:seatmap", ns, key.MovieID, key.ShowtimeID)
}

func KeyIdemBooking(idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%s", ns, idemKey)
}

func ChannelShowtimesChanged() string {
	return ns + ":showtimes:changed"
}
