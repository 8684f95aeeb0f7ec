package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/uiseon98/ticketmongo-client/internal/api"
	"github.com/uiseon98/ticketmongo-client/internal/model"
	"github.com/uiseon98/ticketmongo-client/internal/ui"
)

// MaxSeatsSelectable caps how many seats one session may hold at once.
const MaxSeatsSelectable = 2

var (
	ErrSelectionFull    = errors.New("maximum number of seats already selected")
	ErrSeatNotAvailable = errors.New("seat is not available")
	ErrSeatUnknown      = errors.New("seat not found in current seat map")
)

// SeatService is the slice of the platform API the coordinator mutates
// through.
type SeatService interface {
	ListSeats(ctx context.Context, concertID int64) ([]model.Seat, error)
	HoldSeat(ctx context.Context, concertID, seatID int64) (*model.Seat, error)
	ReleaseSeat(ctx context.Context, concertID, seatID int64) error
}

// KeyDiscarder drops the stored admission credential for a concert once the
// server has rejected it.
type KeyDiscarder interface {
	Discard(concertID int64)
}

// Coordinator is the single point of mutation for one concert's reservation
// session. It owns the seat board, the paid overlay and the hold-expiry
// timer; every state change, user-initiated or polled, funnels through its
// reconciliation path so the server snapshot always wins over stale local
// assumptions (paid overlay excepted).
type Coordinator struct {
	concertID int64
	svc       SeatService
	keys      KeyDiscarder
	notifier  ui.Notifier
	nav       ui.Navigator
	logger    *slog.Logger

	mu      sync.Mutex
	board   *board
	lastErr string

	timer *holdTimer

	// correctiveDelay spaces the repair fetch after a failed hold/release;
	// confirmDelay spaces the best-effort confirmation fetch after payment.
	correctiveDelay time.Duration
	confirmDelay    time.Duration
}

func NewCoordinator(concertID int64, svc SeatService, keys KeyDiscarder, notifier ui.Notifier, nav ui.Navigator) *Coordinator {
	c := &Coordinator{
		concertID:       concertID,
		svc:             svc,
		keys:            keys,
		notifier:        notifier,
		nav:             nav,
		logger:          slog.Default(),
		board:           newBoard(),
		correctiveDelay: 500 * time.Millisecond,
		confirmDelay:    time.Second,
	}
	c.timer = newHoldTimer(c.onHoldExpired)
	return c
}

func (c *Coordinator) ConcertID() int64 { return c.concertID }

// Seats returns the merged seat view for display.
func (c *Coordinator) Seats() []model.Seat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Seat, len(c.board.seats))
	copy(out, c.board.seats)
	return out
}

// Held returns the seats currently held by this session.
func (c *Coordinator) Held() []model.Seat {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Seat, len(c.board.held))
	copy(out, c.board.held)
	return out
}

// HoldRemaining returns whole seconds left on the hold countdown, 0 when
// nothing is held.
func (c *Coordinator) HoldRemaining() int { return c.timer.Remaining() }

// LastError returns the current dismissable user-facing error message.
func (c *Coordinator) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// ToggleSeat handles a seat click: a seat held by this session is released,
// an available seat is held. The selection cap is enforced here, before any
// network call goes out.
func (c *Coordinator) ToggleSeat(ctx context.Context, seatID int64) error {
	c.mu.Lock()
	seat, ok := c.board.find(seatID)
	heldCount := len(c.board.held)
	c.mu.Unlock()

	if !ok {
		return ErrSeatUnknown
	}
	if seat.HeldByMe() {
		return c.release(ctx, seatID)
	}
	if seat.Status != model.SeatAvailable {
		c.setError("That seat is no longer available.")
		return ErrSeatNotAvailable
	}
	if heldCount >= MaxSeatsSelectable {
		c.setError(fmt.Sprintf("You can select up to %d seats.", MaxSeatsSelectable))
		return ErrSelectionFull
	}
	return c.hold(ctx, seatID)
}

func (c *Coordinator) hold(ctx context.Context, seatID int64) error {
	if _, err := c.svc.HoldSeat(ctx, c.concertID, seatID); err != nil {
		return c.mutationFailed(err, "hold", seatID)
	}
	c.setError("")
	return c.reconcile(ctx, false)
}

func (c *Coordinator) release(ctx context.Context, seatID int64) error {
	if err := c.svc.ReleaseSeat(ctx, c.concertID, seatID); err != nil {
		return c.mutationFailed(err, "release", seatID)
	}
	c.setError("")
	return c.reconcile(ctx, false)
}

// mutationFailed is the shared failure path for hold/release. A rejected
// access credential ends the session; anything else
// is surfaced and repaired by a delayed reconcile, since the attempt may have
// partially succeeded or another client may have raced for the seat.
func (c *Coordinator) mutationFailed(err error, op string, seatID int64) error {
	if api.IsAccessDenied(err) {
		c.expireAccess()
		return err
	}
	c.logger.Error(fmt.Sprintf("svc.%sSeat(%d, %d)", op, c.concertID, seatID), "error", err)
	c.setError("Seat update failed. Please try again.")
	time.AfterFunc(c.correctiveDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if rerr := c.reconcile(ctx, true); rerr != nil {
			c.logger.Warn("corrective refresh failed", "concertID", c.concertID, "error", rerr)
		}
	})
	return err
}

// ClearSelection releases every held seat as a batch of concurrent release
// calls, then reconciles once. Release is idempotent server-side, so racing
// with the expiry path is harmless.
func (c *Coordinator) ClearSelection(ctx context.Context) error {
	return c.clear(ctx, false)
}

func (c *Coordinator) clear(ctx context.Context, background bool) error {
	c.mu.Lock()
	ids := c.board.heldIDs()
	c.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(seatID int64) {
			defer wg.Done()
			if err := c.svc.ReleaseSeat(ctx, c.concertID, seatID); err != nil {
				c.logger.Warn("release during clear failed",
					"concertID", c.concertID, "seatID", seatID, "error", err)
			}
		}(id)
	}
	wg.Wait()
	return c.reconcile(ctx, background)
}

// MarkPaid is invoked by the checkout flow on successful payment. The seats
// go into the paid overlay and the local view flips to booked right away; a
// delayed background fetch confirms against the server, and its errors never
// reach the user since the payment already succeeded.
func (c *Coordinator) MarkPaid(seatIDs []int64) {
	c.mu.Lock()
	c.board.markPaid(seatIDs)
	c.mu.Unlock()
	c.timer.Disarm()

	time.AfterFunc(c.confirmDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.reconcile(ctx, true); err != nil {
			c.logger.Warn("post-payment confirmation fetch failed",
				"concertID", c.concertID, "error", err)
		}
	})
}

// Reconcile fetches the server seat list and merges it into the board. The
// server is the authority; whichever reconcile completes last wins.
func (c *Coordinator) Reconcile(ctx context.Context) error {
	return c.reconcile(ctx, false)
}

func (c *Coordinator) reconcile(ctx context.Context, background bool) error {
	seats, err := c.svc.ListSeats(ctx, c.concertID)
	if err != nil {
		if api.IsAccessDenied(err) {
			// Foreground: the session is over, say so and leave. Background:
			// an expired key during polling is not necessarily fatal to the
			// foreground session, so let the loop retry.
			if !background {
				c.expireAccess()
			}
			return err
		}
		if !background {
			c.setError("Could not refresh seat status.")
		}
		return err
	}
	c.ApplySnapshot(seats)
	return nil
}

// ApplySnapshot pushes a server snapshot through the merge path and re-arms
// the hold timer when held-set membership changed. Membership change is the
// only trigger; remainingSeconds updates on an unchanged selection do not
// touch the countdown.
func (c *Coordinator) ApplySnapshot(seats []model.Seat) {
	c.mu.Lock()
	before := c.board.heldIDs()
	c.board.applySnapshot(seats)
	after := c.board.held
	changed := !sameIDSet(before, c.board.heldIDs())
	minRemaining := 0
	for i, s := range after {
		if i == 0 || s.RemainingSeconds < minRemaining {
			minRemaining = s.RemainingSeconds
		}
	}
	empty := len(after) == 0
	c.mu.Unlock()

	if !changed {
		return
	}
	if empty {
		c.timer.Disarm()
		return
	}
	c.timer.Arm(minRemaining)
}

// onHoldExpired runs when the courtesy countdown hits zero with seats still
// held. The release is forced: no further interaction can keep the hold.
func (c *Coordinator) onHoldExpired() {
	c.notifier.Alert("Your seat hold expired and the selection was released.")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.clear(ctx, true); err != nil {
		c.logger.Warn("release after hold expiry failed", "concertID", c.concertID, "error", err)
	}
}

func (c *Coordinator) expireAccess() {
	c.notifier.Alert("Your reservation window has expired. Returning to the concert page.")
	if c.keys != nil {
		c.keys.Discard(c.concertID)
	}
	c.nav.ToConcertDetail(c.concertID)
}

// Close tears the session down: the timer goroutine stops and held seats are
// released best-effort so server-side holds do not linger until their TTL.
func (c *Coordinator) Close() {
	c.timer.Stop()
	c.mu.Lock()
	ids := c.board.heldIDs()
	c.mu.Unlock()
	for _, id := range ids {
		go func(seatID int64) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.svc.ReleaseSeat(ctx, c.concertID, seatID); err != nil {
				c.logger.Warn("teardown release failed",
					"concertID", c.concertID, "seatID", seatID, "error", err)
			}
		}(id)
	}
}

func (c *Coordinator) setError(msg string) {
	c.mu.Lock()
	c.lastErr = msg
	c.mu.Unlock()
}

func sameIDSet(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[int64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
