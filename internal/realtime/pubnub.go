// Package realtime implements the sync manager's streaming collaborator on
// top of PubNub. The platform publishes full seat snapshots to a per-concert
// channel; this feed decodes them and hands them over. Correctness still
// belongs to reconciliation: a dropped message only means the next poll or
// snapshot catches up.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	pubnubgo "github.com/pubnub/go/v7"

	"github.com/uiseon98/ticketmongo-client/internal/model"
	"github.com/uiseon98/ticketmongo-client/internal/reservation"
)

var _ reservation.StreamFeed = (*Feed)(nil)

type Config struct {
	SubscribeKey string
	UserID       string
}

type Feed struct {
	pn     *pubnubgo.PubNub
	logger *slog.Logger

	mu       sync.Mutex
	channel  string
	listener *pubnubgo.Listener
	done     chan struct{}
}

func NewFeed(cfg *Config) (*Feed, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[NewFeed] cfg: must not be nil")
	}
	pnCfg := pubnubgo.NewConfigWithUserId(pubnubgo.UserId(cfg.UserID))
	pnCfg.SubscribeKey = cfg.SubscribeKey

	return &Feed{
		pn:     pubnubgo.NewPubNub(pnCfg),
		logger: slog.Default(),
	}, nil
}

// Start subscribes to the concert's seat channel and forwards updates to h
// until the context ends or Stop is called.
func (f *Feed) Start(ctx context.Context, concertID int64, h reservation.FeedHandler) error {
	f.mu.Lock()
	if f.listener != nil {
		f.mu.Unlock()
		return fmt.Errorf("seat feed already started")
	}
	f.channel = fmt.Sprintf("seats-%d", concertID)
	f.listener = pubnubgo.NewListener()
	f.done = make(chan struct{})
	listener, done, channel := f.listener, f.done, f.channel
	f.mu.Unlock()

	go f.dispatch(ctx, listener, done, h)

	f.pn.AddListener(listener)
	f.pn.Subscribe().Channels([]string{channel}).Execute()
	return nil
}

// Stop unsubscribes and releases the dispatch goroutine. Safe to call when
// Start never ran.
func (f *Feed) Stop() {
	f.mu.Lock()
	listener, done, channel := f.listener, f.done, f.channel
	f.listener = nil
	f.done = nil
	f.mu.Unlock()
	if listener == nil {
		return
	}
	f.pn.Unsubscribe().Channels([]string{channel}).Execute()
	f.pn.RemoveListener(listener)
	close(done)
}

func (f *Feed) dispatch(ctx context.Context, listener *pubnubgo.Listener, done chan struct{}, h reservation.FeedHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case status := <-listener.Status:
			if s, ok := statusFor(status.Category); ok {
				h.HandleStatus(s)
			} else {
				f.logger.Debug("seat feed status", "category", fmt.Sprintf("%v", status.Category))
			}
		case msg := <-listener.Message:
			seats, err := decodeSeats(msg.Message)
			if err != nil {
				h.HandleError(err)
				continue
			}
			h.HandleSeats(seats)
		case <-listener.Presence:
			// presence events carry nothing for the seat map
		}
	}
}

// statusFor maps a PubNub status category onto the sync manager's connection
// states. Categories with no bearing on the seat feed report false.
func statusFor(category pubnubgo.StatusCategory) (reservation.Status, bool) {
	switch category {
	case pubnubgo.PNConnectedCategory, pubnubgo.PNReconnectedCategory:
		return reservation.StatusConnected, true
	case pubnubgo.PNDisconnectedCategory:
		return reservation.StatusDisconnected, true
	case pubnubgo.PNReconnectionAttemptsExhausted, pubnubgo.PNTimeoutCategory, pubnubgo.PNAccessDeniedCategory:
		return reservation.StatusError, true
	}
	return "", false
}

// decodeSeats accepts either a JSON string payload (the platform publishes
// pre-encoded snapshots) or an already-decoded array.
func decodeSeats(payload any) ([]model.Seat, error) {
	var raw []byte
	switch v := payload.(type) {
	case string:
		raw = []byte(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("re-encode seat update: %w", err)
		}
		raw = b
	}
	var seats []model.Seat
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, fmt.Errorf("decode seat update: %w", err)
	}
	return seats, nil
}
