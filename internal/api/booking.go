package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

type createBookingRequest struct {
	SeatIDs []int64 `json:"seatIds"`
}

// CreateBooking creates a booking for the held seats and returns everything
// the checkout SDK needs to collect payment.
func (c *Client) CreateBooking(ctx context.Context, concertID int64, seatIDs []int64) (*model.PaymentInfo, error) {
	var info model.PaymentInfo
	path := fmt.Sprintf("/api/v1/concerts/%d/bookings", concertID)
	req := createBookingRequest{SeatIDs: seatIDs}
	if err := c.do(ctx, http.MethodPost, path, concertID, req, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
