package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

// ListSeats fetches the authoritative seat list for a concert.
func (c *Client) ListSeats(ctx context.Context, concertID int64) ([]model.Seat, error) {
	var seats []model.Seat
	path := fmt.Sprintf("/api/v1/concerts/%d/seats", concertID)
	if err := c.do(ctx, http.MethodGet, path, concertID, nil, &seats); err != nil {
		return nil, err
	}
	return seats, nil
}

// HoldSeat places a time-limited hold on a seat and returns its new state.
func (c *Client) HoldSeat(ctx context.Context, concertID, seatID int64) (*model.Seat, error) {
	var seat model.Seat
	path := fmt.Sprintf("/api/v1/concerts/%d/seats/%d/hold", concertID, seatID)
	if err := c.do(ctx, http.MethodPost, path, concertID, nil, &seat); err != nil {
		return nil, err
	}
	return &seat, nil
}

// ReleaseSeat drops a hold. The platform treats releasing an already-released
// seat as success, so racing release paths need no client-side dedup.
func (c *Client) ReleaseSeat(ctx context.Context, concertID, seatID int64) error {
	path := fmt.Sprintf("/api/v1/concerts/%d/seats/%d/hold", concertID, seatID)
	return c.do(ctx, http.MethodDelete, path, concertID, nil, nil)
}
