package httpgin

import (
	"github.com/shopspring/decimal"

	"github.com/kirinyoku/cinebook/internal/domain"
	"github.com/kirinyoku/cinebook/internal/seatmap"
	"github.com/kirinyoku/cinebook/internal/service/showtimes"
)

type QuoteRequest struct {
	Seats []int `json:"seats" binding:"omitempty,dive,gt=0"`
}

// CreateBookingRequest takes pointer ids so that a missing id is told apart
// from id 0.
type CreateBookingRequest struct {
	MovieID    *int64 `json:"movie_id" binding:"required,min=0" swaggertype:"integer"`
	ShowtimeID *int64 `json:"showtime_id" binding:"required,min=0" swaggertype:"integer"`
	Seats      []int `json:"seats" binding:"required,min=1,dive,gt=0"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	SeatIDs []int  `json:"seat_ids,omitempty"`
}

type LayoutResponse struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

type ShowtimeResponse struct {
	ID     int64           `json:"id"`
	Time   string          `json:"time"`
	Price  decimal.Decimal `json:"price" swaggertype:"string"`
	Layout LayoutResponse  `json:"layout"`
}

type MovieResponse struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Genre       string             `json:"genre"`
	Duration    string             `json:"duration"`
	Rating      string             `json:"rating"`
	Description string             `json:"description"`
	Poster      string             `json:"poster"`
	Showtimes   []ShowtimeResponse `json:"showtimes,omitempty"`
}

type SeatResponse struct {
	ID     int               `json:"id"`
	Row    int               `json:"row"`
	Column int               `json:"column"`
	Status domain.SeatStatus `json:"status"`
}

type SeatMapResponse struct {
	MovieID    int64            `json:"movie_id"`
	ShowtimeID int64            `json:"showtime_id"`
	MovieTitle string           `json:"movie_title"`
	Time       string           `json:"time"`
	Price      decimal.Decimal  `json:"price" swaggertype:"string"`
	Layout     LayoutResponse   `json:"layout"`
	Available  int              `json:"available"`
	Rows       [][]SeatResponse `json:"rows"`
}

type QuoteResponse struct {
	MovieID      int64           `json:"movie_id"`
	ShowtimeID   int64           `json:"showtime_id"`
	Seats        []int           `json:"seats"`
	PricePerSeat decimal.Decimal `json:"price_per_seat" swaggertype:"string"`
	Total        decimal.Decimal `json:"total" swaggertype:"string"`
}

type BookingResponse struct {
	BookingID     string          `json:"booking_id"`
	MovieID       int64           `json:"movie_id"`
	ShowtimeID    int64           `json:"showtime_id"`
	MovieTitle    string          `json:"movie_title"`
	Showtime      string          `json:"showtime"`
	SelectedSeats []int           `json:"selected_seats"`
	TotalPrice    decimal.Decimal `json:"total_price" swaggertype:"string"`
}

type CreateBookingResponse struct {
	Booking   BookingResponse `json:"booking"`
	Persisted bool            `json:"persisted"`
	Warning   string          `json:"warning,omitempty"`
}

type CancelBookingResponse struct {
	Cancelled bool   `json:"cancelled"`
	Persisted bool   `json:"persisted"`
	Warning   string `json:"warning,omitempty"`
}

const persistenceWarning = "saved for this session only; it may be lost on restart"

func toMovieResponse(m domain.Movie, withShowtimes bool) MovieResponse {
	resp := MovieResponse{
		ID:          m.ID,
		Title:       m.Title,
		Genre:       m.Genre,
		Duration:    m.Duration,
		Rating:      m.Rating,
		Description: m.Description,
		Poster:      m.Poster,
	}

	if withShowtimes {
		resp.Showtimes = make([]ShowtimeResponse, 0, len(m.Showtimes))
		for _, st := range m.Showtimes {
			resp.Showtimes = append(resp.Showtimes, ShowtimeResponse{
				ID:     st.ID,
				Time:   st.Time,
				Price:  st.Price,
				Layout: toLayoutResponse(st.Layout),
			})
		}
	}

	return resp
}

func toLayoutResponse(l domain.SeatLayout) LayoutResponse {
	return LayoutResponse{Rows: l.Rows, Columns: l.Columns}
}

func toSeatMapResponse(sm *showtimes.SeatMap) SeatMapResponse {
	grid := seatmap.Grid{Layout: sm.Layout, Seats: sm.Seats}

	rows := make([][]SeatResponse, 0, sm.Layout.Rows)
	for _, row := range grid.Rows() {
		out := make([]SeatResponse, 0, len(row))
		for _, s := range row {
			out = append(out, SeatResponse{
				ID:     s.ID,
				Row:    s.Row,
				Column: s.Column,
				Status: s.Status,
			})
		}
		rows = append(rows, out)
	}

	return SeatMapResponse{
		MovieID:    sm.MovieID,
		ShowtimeID: sm.ShowtimeID,
		MovieTitle: sm.MovieTitle,
		Time:       sm.Time,
		Price:      sm.Price,
		Layout:     toLayoutResponse(sm.Layout),
		Available:  sm.Available,
		Rows:       rows,
	}
}

func toQuoteResponse(q *showtimes.Quote) QuoteResponse {
	seats := q.Seats
	if seats == nil {
		seats = []int{}
	}

	return QuoteResponse{
		MovieID:      q.MovieID,
		ShowtimeID:   q.ShowtimeID,
		Seats:        seats,
		PricePerSeat: q.PricePerSeat,
		Total:        q.Total,
	}
}

func toBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		BookingID:     b.ID,
		MovieID:       b.MovieID,
		ShowtimeID:    b.ShowtimeID,
		MovieTitle:    b.MovieTitle,
		Showtime:      b.Showtime,
		SelectedSeats: b.SelectedSeats,
		TotalPrice:    b.TotalPrice,
	}
}
