package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

func TestOverlayOverridesServerSnapshot(t *testing.T) {
	b := newBoard()
	b.applySnapshot([]model.Seat{
		{SeatID: 1, SeatInfo: "A-1", Status: model.SeatReserved, IsReservedByCurrentUser: true, RemainingSeconds: 60},
	})
	b.markPaid([]int64{1})

	// a stale poll still reporting the seat as available must not un-book it
	b.applySnapshot([]model.Seat{
		{SeatID: 1, SeatInfo: "A-1", Status: model.SeatAvailable},
	})

	seat, ok := b.find(1)
	require.True(t, ok)
	assert.Equal(t, model.SeatBooked, seat.Status)
	assert.False(t, seat.IsReservedByCurrentUser)
	assert.Empty(t, b.held)
}

func TestOverlayDroppedOnceServerConfirms(t *testing.T) {
	b := newBoard()
	b.markPaid([]int64{7})

	b.applySnapshot([]model.Seat{{SeatID: 7, SeatInfo: "B-2", Status: model.SeatBooked}})
	assert.NotContains(t, b.overlay, int64(7))

	// once confirmed, the merge is a pass-through again
	b.applySnapshot([]model.Seat{{SeatID: 7, SeatInfo: "B-2", Status: model.SeatAvailable}})
	seat, ok := b.find(7)
	require.True(t, ok)
	assert.Equal(t, model.SeatAvailable, seat.Status)
}

func TestHeldListDerivedFromMergedView(t *testing.T) {
	b := newBoard()
	b.applySnapshot([]model.Seat{
		{SeatID: 1, Status: model.SeatReserved, IsReservedByCurrentUser: true, RemainingSeconds: 30},
		{SeatID: 2, Status: model.SeatReserved}, // someone else's hold
		{SeatID: 3, Status: model.SeatAvailable},
	})
	require.Len(t, b.held, 1)
	assert.Equal(t, int64(1), b.held[0].SeatID)
	assert.Equal(t, []int64{1}, b.heldIDs())
}
