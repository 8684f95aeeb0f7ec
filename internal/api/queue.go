package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

// EnterQueue asks for admission to a concert's seat-selection session. The
// queue endpoint itself is not seat-protected; it is how the credential is
// obtained in the first place.
func (c *Client) EnterQueue(ctx context.Context, concertID int64) (*model.QueueEntry, error) {
	var entry model.QueueEntry
	path := fmt.Sprintf("/api/v1/concerts/%d/queue", concertID)
	if err := c.do(ctx, http.MethodPost, path, 0, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
