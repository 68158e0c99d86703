package seatmap

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirinyoku/cinebook/internal/domain"
)

func TestSelection_Toggle(t *testing.T) {
	g := Build(domain.SeatLayout{Rows: 2, Columns: 5}, []int{3}, []int{4})
	sel := NewSelection(g)
	price := decimal.RequireFromString("12.50")

	require.NoError(t, sel.Toggle(1))
	require.NoError(t, sel.Toggle(7))
	assert.Equal(t, []int{1, 7}, sel.Seats())
	assert.True(t, sel.Total(price).Equal(decimal.RequireFromString("25")))

	require.NoError(t, sel.Toggle(1))
	assert.Equal(t, []int{7}, sel.Seats())
	assert.Equal(t, 1, sel.Len())
	assert.True(t, sel.Total(price).Equal(price))

	assert.ErrorIs(t, sel.Toggle(3), ErrSeatBooked)
	assert.ErrorIs(t, sel.Toggle(4), ErrSeatBooked)
	assert.ErrorIs(t, sel.Toggle(11), ErrSeatOutOfRange)
	assert.Equal(t, []int{7}, sel.Seats())
}

func TestSelection_SelectIsIdempotent(t *testing.T) {
	sel := NewSelection(Build(domain.SeatLayout{Rows: 1, Columns: 3}, nil, nil))

	require.NoError(t, sel.Select(2))
	require.NoError(t, sel.Select(2))
	assert.Equal(t, []int{2}, sel.Seats())
}

func TestSelection_SeatsIsACopy(t *testing.T) {
	sel := NewSelection(Build(domain.SeatLayout{Rows: 1, Columns: 3}, nil, nil))
	require.NoError(t, sel.Select(1))

	seats := sel.Seats()
	seats[0] = 3
	assert.Equal(t, []int{1}, sel.Seats())
}

func TestTotal(t *testing.T) {
	price := decimal.RequireFromString("250.5")

	assert.True(t, Total(price, 0).IsZero())
	assert.True(t, Total(price, 3).Equal(decimal.RequireFromString("751.5")))
	assert.True(t, Total(decimal.RequireFromString("0.1"), 3).Equal(decimal.RequireFromString("0.3")))
}
