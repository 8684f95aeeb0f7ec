package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeatInfoParsing(t *testing.T) {
	seat := Seat{SeatInfo: "VIP-12"}
	assert.Equal(t, "VIP", seat.Section())
	assert.Equal(t, 12, seat.Number())

	malformed := Seat{SeatInfo: "balcony"}
	assert.Equal(t, "balcony", malformed.Section())
	assert.Equal(t, 0, malformed.Number())
}

func TestHeldByMe(t *testing.T) {
	assert.True(t, Seat{Status: SeatReserved, IsReservedByCurrentUser: true}.HeldByMe())
	assert.False(t, Seat{Status: SeatReserved}.HeldByMe())
	// a booked seat is never "held", even when it was ours
	assert.False(t, Seat{Status: SeatBooked, IsReservedByCurrentUser: true}.HeldByMe())
}
