package ledger

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/kirinyoku/cinebook/internal/domain"
)

// candidate carries the validation rules for a booking entering the ledger.
type candidate struct {
	ID            string `validate:"required,max=128"`
	MovieID       int64  `validate:"gte=0"`
	ShowtimeID    int64  `validate:"gte=0"`
	SelectedSeats []int  `validate:"required,min=1,unique,dive,gt=0"`
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

func validateBooking(v *validator.Validate, b domain.Booking) error {
	err := v.Struct(candidate{
		ID:            b.ID,
		MovieID:       b.MovieID,
		ShowtimeID:    b.ShowtimeID,
		SelectedSeats: b.SelectedSeats,
	})
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &InvalidBookingError{BookingID: b.ID, Reason: validationMessage(verrs[0])}
		}
		return &InvalidBookingError{BookingID: b.ID, Reason: err.Error()}
	}

	if !b.TotalPrice.IsPositive() {
		return &InvalidBookingError{BookingID: b.ID, Reason: "total price must be positive"}
	}

	return nil
}

func validationMessage(fe validator.FieldError) string {
	field := fe.Namespace()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s element(s)", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", field, fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
