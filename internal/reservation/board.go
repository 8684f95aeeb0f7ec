package reservation

import "github.com/uiseon98/ticketmongo-client/internal/model"

// board is the merged view of one concert's seats: the latest server
// snapshot overlaid with seats the user already paid for but the server has
// not yet confirmed as booked. The overlay keeps a stale poll from visually
// un-booking a seat right after checkout. Everything here is a pure function
// of (snapshot, overlay); the coordinator serializes access.
type board struct {
	seats   []model.Seat
	overlay map[int64]struct{}
	held    []model.Seat
}

func newBoard() *board {
	return &board{overlay: make(map[int64]struct{})}
}

// applySnapshot merges a fresh server snapshot with the paid overlay and
// recomputes the held-by-me selection. Overlay entries the raw snapshot
// already reports as BOOKED are dropped: confirmation received.
func (b *board) applySnapshot(server []model.Seat) {
	merged := make([]model.Seat, len(server))
	for i, s := range server {
		if _, paid := b.overlay[s.SeatID]; paid {
			s.Status = model.SeatBooked
			s.IsReservedByCurrentUser = false
		}
		merged[i] = s
	}
	b.seats = merged

	for _, s := range server {
		if s.Status == model.SeatBooked {
			delete(b.overlay, s.SeatID)
		}
	}

	b.recomputeHeld()
}

// markPaid records seats as paid ahead of server confirmation and rewrites
// the local entries so the next render shows them booked immediately.
func (b *board) markPaid(seatIDs []int64) {
	paid := make(map[int64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		b.overlay[id] = struct{}{}
		paid[id] = struct{}{}
	}
	for i, s := range b.seats {
		if _, ok := paid[s.SeatID]; ok {
			b.seats[i].Status = model.SeatBooked
			b.seats[i].IsReservedByCurrentUser = false
		}
	}
	b.recomputeHeld()
}

func (b *board) recomputeHeld() {
	held := b.held[:0]
	for _, s := range b.seats {
		if s.HeldByMe() {
			held = append(held, s)
		}
	}
	b.held = held
}

func (b *board) find(seatID int64) (model.Seat, bool) {
	for _, s := range b.seats {
		if s.SeatID == seatID {
			return s, true
		}
	}
	return model.Seat{}, false
}

func (b *board) heldIDs() []int64 {
	ids := make([]int64, 0, len(b.held))
	for _, s := range b.held {
		ids = append(ids, s.SeatID)
	}
	return ids
}
