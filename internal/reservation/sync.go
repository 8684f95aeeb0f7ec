package reservation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

// Status is the user-feedback connection state of the background sync. It
// carries no correctness guarantee; seat truth comes from reconciliation.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
)

// StreamFeed is the managed live-update collaborator: it pushes seat
// snapshots, errors and connection-status changes to the handler until the
// context ends. Stop must be safe to call even when Start never ran.
type StreamFeed interface {
	Start(ctx context.Context, concertID int64, h FeedHandler) error
	Stop()
}

// FeedHandler receives feed callbacks. SyncManager implements it so every
// pushed snapshot flows through the coordinator's merge path.
type FeedHandler interface {
	HandleSeats(seats []model.Seat)
	HandleError(err error)
	HandleStatus(status Status)
}

// SyncManager keeps the seat board approximately fresh: a live streaming
// feed when one is available, otherwise a fixed-interval refresh loop. At
// most one strategy runs per coordinator.
type SyncManager struct {
	coord    *Coordinator
	feed     StreamFeed // nil when live streaming is unavailable
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	starting bool
	cancel   context.CancelFunc
	status   Status
	lastErr  string
}

// NewSyncManager builds a manager around the coordinator. feed may be nil;
// interval drives the fallback refresh loop.
func NewSyncManager(coord *Coordinator, feed StreamFeed, interval time.Duration) *SyncManager {
	return &SyncManager{
		coord:    coord,
		feed:     feed,
		interval: interval,
		logger:   slog.Default(),
		status:   StatusDisconnected,
	}
}

// Start begins background syncing. Idempotent: while a strategy is active or
// a start is in flight, further calls are no-ops, so rapid re-invocation
// cannot spawn duplicate loops. The start latch is released in a defer
// whether or not startup succeeds.
func (m *SyncManager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.starting || m.cancel != nil {
		m.mu.Unlock()
		return nil
	}
	m.starting = true
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.starting = false
		m.mu.Unlock()
	}()

	runCtx, cancel := context.WithCancel(ctx)
	m.setStatus(StatusConnecting, "")

	if m.feed != nil {
		if err := m.feed.Start(runCtx, m.coord.ConcertID(), m); err != nil {
			cancel()
			m.setStatus(StatusError, err.Error())
			return fmt.Errorf("start live seat feed: %w", err)
		}
		m.mu.Lock()
		m.cancel = cancel
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	m.cancel = cancel
	m.mu.Unlock()
	go m.pollLoop(runCtx)
	return nil
}

// Stop cancels whichever strategy is active and reports disconnected. Safe
// to call repeatedly and when never started.
func (m *SyncManager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if m.feed != nil {
		m.feed.Stop()
	}
	m.setStatus(StatusDisconnected, "")
}

// Status returns the current connection state for the live indicator.
func (m *SyncManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// LastError returns the most recent sync error message, empty when healthy.
func (m *SyncManager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// pollLoop is the fallback strategy: refresh immediately, then on every
// tick. A failed tick flips the status to error but never ends the loop;
// transient failures heal on the next tick.
func (m *SyncManager) pollLoop(ctx context.Context) {
	m.refreshOnce(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.refreshOnce(ctx)
		}
	}
}

func (m *SyncManager) refreshOnce(ctx context.Context) {
	if err := m.coord.reconcile(ctx, true); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("seat refresh failed", "concertID", m.coord.ConcertID(), "error", err)
		m.setStatus(StatusError, err.Error())
		return
	}
	m.setStatus(StatusConnected, "")
}

func (m *SyncManager) HandleSeats(seats []model.Seat) {
	m.coord.ApplySnapshot(seats)
}

func (m *SyncManager) HandleError(err error) {
	m.logger.Warn("live seat feed error", "concertID", m.coord.ConcertID(), "error", err)
	m.setStatus(StatusError, err.Error())
}

func (m *SyncManager) HandleStatus(status Status) {
	m.setStatus(status, "")
}

func (m *SyncManager) setStatus(status Status, errMsg string) {
	m.mu.Lock()
	m.status = status
	m.lastErr = errMsg
	m.mu.Unlock()
}
