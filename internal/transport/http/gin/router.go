package httpgin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kirinyoku/cinebook/internal/ledger"
	"github.com/kirinyoku/cinebook/internal/lib/logger/sl"
	redisrepo "github.com/kirinyoku/cinebook/internal/repository/redis"
	"github.com/kirinyoku/cinebook/internal/service"
	"github.com/kirinyoku/cinebook/internal/service/booking"
	"github.com/kirinyoku/cinebook/internal/service/showtimes"
)

const idemLockTTL = 60 * time.Second

// ChangeSubscriber streams showtime changes until ctx is done.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, handler func(ctx context.Context, change redisrepo.ShowtimeChange)) error
}

// NewRouter builds the HTTP API. idem and events may be nil; without idem
// the Idempotency-Key header is ignored, without events /events answers 503.
func NewRouter(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	events ChangeSubscriber,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), RequestIDMiddleware(), LoggingMiddleware(logger), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/movies", handleListMovies(svcs))
	r.GET("/movies/:id", handleGetMovie(svcs))
	r.GET("/movies/:id/showtimes/:showtimeId/seats", handleGetSeatMap(svcs))
	r.POST("/movies/:id/showtimes/:showtimeId/quote", handleQuote(svcs))

	r.POST("/bookings", handleCreateBooking(svcs, idem, logger))
	r.GET("/bookings", handleListBookings(svcs))
	r.GET("/bookings/:id", handleGetBooking(svcs))
	r.DELETE("/bookings/:id", handleCancelBooking(svcs))

	r.GET("/events", handleEvents(events, logger))

	return r
}

// @Summary  List movies
// @Success  200  {array}  MovieResponse
// @Router   /movies [get]
func handleListMovies(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movies := svcs.Showtimes.ListMovies(c.Request.Context())

		resp := make([]MovieResponse, 0, len(movies))
		for _, m := range movies {
			resp = append(resp, toMovieResponse(m, false))
		}
		// the catalog is static for the life of the process
		writeJSONWithCache(c, http.StatusOK, resp, "public, max-age=300", true)
	}
}

// @Summary  Get movie with showtimes
// @Param    id  path  int  true  "Movie ID"
// @Success  200  {object}  MovieResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /movies/{id} [get]
func handleGetMovie(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, ok := parseInt64Param(c, "id")
		if !ok {
			return
		}
		m, err := svcs.Showtimes.GetMovie(c.Request.Context(), movieID)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, toMovieResponse(m, true), "public, max-age=300", true)
	}
}

// @Summary  Get seat map of a showtime
// @Param    id          path  int  true  "Movie ID"
// @Param    showtimeId  path  int  true  "Showtime ID"
// @Success  200  {object}  SeatMapResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /movies/{id}/showtimes/{showtimeId}/seats [get]
func handleGetSeatMap(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, showtimeID, ok := parseShowtimeParams(c)
		if !ok {
			return
		}
		sm, err := svcs.Showtimes.SeatMap(c.Request.Context(), movieID, showtimeID)
		if err != nil {
			respondErr(c, err)
			return
		}
		// occupancy changes with every booking, so clients revalidate
		writeJSONWithCache(c, http.StatusOK, toSeatMapResponse(sm), "no-cache", true)
	}
}

// @Summary  Price a seat selection
// @Param    id          path  int           true  "Movie ID"
// @Param    showtimeId  path  int           true  "Showtime ID"
// @Param    req         body  QuoteRequest  true  "seat ids in tap order; a repeated id deselects"
// @Success  200  {object}  QuoteResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse
// @Router   /movies/{id}/showtimes/{showtimeId}/quote [post]
func handleQuote(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		movieID, showtimeID, ok := parseShowtimeParams(c)
		if !ok {
			return
		}
		var req QuoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		q, err := svcs.Showtimes.Quote(c.Request.Context(), movieID, showtimeID, req.Seats)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toQuoteResponse(q))
	}
}

// @Summary  Create booking (idempotent)
// @Param    req  body  CreateBookingRequest  true  "payload"
// @Header   201  {string}  Idempotency-Key  "echo"
// @Success  201  {object}  CreateBookingResponse
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse  "seats unavailable / idem in progress"
// @Router   /bookings [post]
func handleCreateBooking(
	svcs *service.Services,
	idem *redisrepo.IdempotencyStore,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		ctx := c.Request.Context()

		idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
		var idemStorageKey string
		if idem != nil && idemKey != "" {
			idemStorageKey = redisrepo.KeyIdemBooking(idemKey)

			if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
				replayCreated(c, idemKey, payload)
				return
			}

			locked, err := idem.AcquireLock(ctx, idemStorageKey, idemLockTTL)
			if err != nil {
				respondErr(c, err)
				return
			}
			if !locked {
				if payload, ok, _ := idem.GetResult(ctx, idemStorageKey); ok {
					replayCreated(c, idemKey, payload)
					return
				}
				c.Header("Retry-After", "1")
				c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
				return
			}
		}

		b, err := svcs.Booking.Book(ctx, *req.MovieID, *req.ShowtimeID, req.Seats)

		resp := CreateBookingResponse{Persisted: true}
		switch {
		case err == nil:
		case errors.Is(err, ledger.ErrPersistence):
			resp.Persisted = false
			resp.Warning = persistenceWarning
		default:
			if idemStorageKey != "" {
				_ = idem.Release(ctx, idemStorageKey)
			}
			respondErr(c, err)
			return
		}
		resp.Booking = toBookingResponse(b)

		if idemStorageKey != "" {
			payload, _ := json.Marshal(resp)
			if err := idem.SaveResult(ctx, idemStorageKey, string(payload)); err != nil {
				logger.Warn("failed to save idempotent result", sl.Err(err))
			}
			c.Header("Idempotency-Key", idemKey)
		}

		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary  List bookings, oldest first
// @Success  200  {array}  BookingResponse
// @Router   /bookings [get]
func handleListBookings(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		bookings := svcs.Booking.List(c.Request.Context())

		resp := make([]BookingResponse, 0, len(bookings))
		for _, b := range bookings {
			resp = append(resp, toBookingResponse(b))
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Get booking
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  BookingResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /bookings/{id} [get]
func handleGetBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		b, err := svcs.Booking.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, toBookingResponse(b))
	}
}

// @Summary  Cancel booking
// @Description  Cancelling an unknown id succeeds with cancelled=false.
// @Param    id  path  string  true  "Booking ID"
// @Success  200  {object}  CancelBookingResponse
// @Router   /bookings/{id} [delete]
func handleCancelBooking(svcs *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		cancelled, err := svcs.Booking.Cancel(c.Request.Context(), c.Param("id"))

		resp := CancelBookingResponse{Cancelled: cancelled, Persisted: true}
		if err != nil {
			if !errors.Is(err, ledger.ErrPersistence) {
				respondErr(c, err)
				return
			}
			resp.Persisted = false
			resp.Warning = persistenceWarning
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary  Stream showtime changes
// @Description  Server-sent events, one "showtime_changed" event per booking or cancellation.
// @Produce  text/event-stream
// @Success  200  {object}  redisrepo.ShowtimeChange
// @Failure  503  {object}  ErrorResponse
// @Router   /events [get]
func handleEvents(events ChangeSubscriber, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if events == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "change events require the redis store"})
			return
		}

		ctx := c.Request.Context()
		changes := make(chan redisrepo.ShowtimeChange, 16)

		go func() {
			defer close(changes)
			err := events.Subscribe(ctx, func(ctx context.Context, change redisrepo.ShowtimeChange) {
				select {
				case changes <- change:
				case <-ctx.Done():
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("event subscription ended", sl.Err(err))
			}
		}()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Status(http.StatusOK)
		c.Writer.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case change, ok := <-changes:
				if !ok {
					return
				}
				c.SSEvent(change.Type, change)
				c.Writer.Flush()
			}
		}
	}
}

// --- Helpers ---

func parseInt64Param(c *gin.Context, name string) (int64, bool) {
	s := c.Param(name)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}

func parseShowtimeParams(c *gin.Context) (int64, int64, bool) {
	movieID, ok := parseInt64Param(c, "id")
	if !ok {
		return 0, 0, false
	}
	showtimeID, ok := parseInt64Param(c, "showtimeId")
	if !ok {
		return 0, 0, false
	}
	return movieID, showtimeID, true
}

func replayCreated(c *gin.Context, idemKey, payload string) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	var (
		unavailable showtimes.SeatsUnavailableError
		notFound    showtimes.SeatsNotFoundError
		conflict    *ledger.SeatConflictError
		invalid     *ledger.InvalidBookingError
	)

	switch {
	// showtimes service
	case errors.Is(err, showtimes.ErrMovieNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "movie not found"})
	case errors.Is(err, showtimes.ErrShowtimeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "showtime not found"})
	case errors.As(err, &notFound):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "seats do not exist", SeatIDs: notFound.SeatIDs})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats unavailable", SeatIDs: unavailable.SeatIDs})
	// booking service
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "booking not found"})
	case errors.Is(err, booking.ErrNoSeatsSelected):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no seats selected"})
	// ledger
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "seats unavailable", SeatIDs: conflict.SeatIDs})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: invalid.Reason})
	case errors.Is(err, ledger.ErrClosed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "shutting down"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
