package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

// ListConcerts returns the browseable concert summaries.
func (c *Client) ListConcerts(ctx context.Context) ([]model.Concert, error) {
	var concerts []model.Concert
	if err := c.do(ctx, http.MethodGet, "/api/v1/concerts", 0, nil, &concerts); err != nil {
		return nil, err
	}
	return concerts, nil
}

// GetConcert returns one concert's summary.
func (c *Client) GetConcert(ctx context.Context, concertID int64) (*model.Concert, error) {
	var concert model.Concert
	path := fmt.Sprintf("/api/v1/concerts/%d", concertID)
	if err := c.do(ctx, http.MethodGet, path, 0, nil, &concert); err != nil {
		return nil, err
	}
	return &concert, nil
}
