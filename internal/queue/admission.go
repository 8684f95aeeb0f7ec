package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uiseon98/ticketmongo-client/internal/model"
	"github.com/uiseon98/ticketmongo-client/internal/ui"
)

// EnterService is the slice of the platform API the admission client needs.
type EnterService interface {
	EnterQueue(ctx context.Context, concertID int64) (*model.QueueEntry, error)
}

// AdmissionClient runs the waiting-room protocol: request queue entry, hold
// a duplex channel open while waiting, store the one-time access credential
// when the admission signal arrives, and move the user into seat selection.
type AdmissionClient struct {
	svc      EnterService
	keys     *KeyStore
	wsURL    string
	header   http.Header
	notifier ui.Notifier
	nav      ui.Navigator
	logger   *slog.Logger

	// admitDelay keeps the confirmation visible before navigating on.
	admitDelay time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewAdmissionClient(svc EnterService, keys *KeyStore, wsURL, authToken string, notifier ui.Notifier, nav ui.Navigator) *AdmissionClient {
	header := http.Header{}
	if authToken != "" {
		header.Set("Authorization", "Bearer "+authToken)
	}
	return &AdmissionClient{
		svc:        svc,
		keys:       keys,
		wsURL:      wsURL,
		header:     header,
		notifier:   notifier,
		nav:        nav,
		logger:     slog.Default(),
		admitDelay: 3 * time.Second,
	}
}

// Enter requests admission for a concert. IMMEDIATE_ENTRY stores the key and
// goes straight to seat selection; WAITING hands the rank back so the caller
// can show the waiting view and Listen; ERROR surfaces the server's message.
// Unrecognized statuses are non-fatal: warn and show generic guidance.
func (c *AdmissionClient) Enter(ctx context.Context, concertID int64) (*model.QueueEntry, error) {
	entry, err := c.svc.EnterQueue(ctx, concertID)
	if err != nil {
		return nil, fmt.Errorf("enter queue for concert %d: %w", concertID, err)
	}

	switch entry.Status {
	case model.QueueImmediateEntry:
		c.keys.Put(concertID, entry.AccessKey)
		c.nav.ToSeatSelection(concertID)
	case model.QueueWaiting:
		c.logger.Info("queued for admission", "concertID", concertID, "rank", entry.Rank)
	case model.QueueError:
		c.notifier.Alert(entry.Message)
	default:
		c.logger.Warn("unknown queue entry status", "concertID", concertID, "status", entry.Status)
		c.notifier.Alert("Could not determine your queue status. Please try again later.")
	}
	return entry, nil
}

// wsEvent is one occurrence on the waiting-room channel, reduced by Listen's
// single loop so all admission state lives in one place.
type wsEvent struct {
	msg   *model.AdmissionMessage
	err   error
	clean bool
}

// Listen opens the user-scoped waiting-room channel and blocks until
// admission, a closed channel, or ctx cancellation. Exactly one message
// shape matters: {type:"ADMIT", accessKey}. Everything else is ignored so
// new server message types never crash old clients. There is no automatic
// reconnect; on a lost connection the user is told to reload.
func (c *AdmissionClient) Listen(ctx context.Context, concertID int64) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.wsURL, c.header)
	if err != nil {
		c.notifier.Alert("Could not connect to the waiting room. Please reload the page.")
		return fmt.Errorf("dial waiting room channel: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer c.Close()

	events := make(chan wsEvent, 4)
	go c.readLoop(conn, events)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch {
			case ev.err != nil:
				if ctx.Err() != nil {
					// teardown closed the connection underneath the reader
					return ctx.Err()
				}
				c.notifier.Alert("Connection to the waiting room was lost. Please reload the page.")
				return fmt.Errorf("waiting room channel: %w", ev.err)
			case ev.clean:
				c.logger.Info("waiting room channel closed", "concertID", concertID)
				return nil
			case ev.msg.Type == model.AdmissionAdmit:
				c.keys.Put(concertID, ev.msg.AccessKey)
				c.notifier.Info("It's your turn! Moving to seat selection.")
				select {
				case <-time.After(c.admitDelay):
				case <-ctx.Done():
					return ctx.Err()
				}
				c.Close()
				c.nav.ToSeatSelection(concertID)
				return nil
			default:
				c.logger.Debug("ignoring waiting room message", "type", ev.msg.Type)
			}
		}
	}
}

func (c *AdmissionClient) readLoop(conn *websocket.Conn, events chan<- wsEvent) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				events <- wsEvent{clean: true}
			} else {
				events <- wsEvent{err: err}
			}
			return
		}
		var msg model.AdmissionMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed waiting room message", "error", err)
			continue
		}
		events <- wsEvent{msg: &msg}
	}
}

// Close tears the channel down with a normal closure code so the server can
// free the connection, whether or not admission happened. Safe to call
// repeatedly and when nothing is open.
func (c *AdmissionClient) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn == nil {
		return
	}
	deadline := time.Now().Add(time.Second)
	closeFrame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeFrame, deadline); err != nil {
		c.logger.Debug("send close frame", "error", err)
	}
	conn.Close()
}
