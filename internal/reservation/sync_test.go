package reservation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uiseon98/ticketmongo-client/internal/model"
)

type fakeFeed struct {
	starts atomic.Int32
	stops  atomic.Int32
	failOn error
}

func (f *fakeFeed) Start(_ context.Context, _ int64, _ FeedHandler) error {
	f.starts.Add(1)
	return f.failOn
}

func (f *fakeFeed) Stop() { f.stops.Add(1) }

func TestStartIsIdempotent(t *testing.T) {
	svc := &fakeSeatService{}
	c, _, _, _ := newTestCoordinator(t, svc)
	feed := &fakeFeed{}
	m := NewSyncManager(c, feed, time.Hour)
	defer m.Stop()

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	require.NoError(t, m.Start(ctx))
	assert.Equal(t, int32(1), feed.starts.Load(), "second Start must be a no-op")
}

func TestStopWithoutStartIsSafe(t *testing.T) {
	svc := &fakeSeatService{}
	c, _, _, _ := newTestCoordinator(t, svc)
	m := NewSyncManager(c, nil, time.Hour)

	m.Stop()
	m.Stop()
	assert.Equal(t, StatusDisconnected, m.Status())
}

func TestRestartAfterStop(t *testing.T) {
	svc := &fakeSeatService{}
	c, _, _, _ := newTestCoordinator(t, svc)
	feed := &fakeFeed{}
	m := NewSyncManager(c, feed, time.Hour)

	ctx := context.Background()
	require.NoError(t, m.Start(ctx))
	m.Stop()
	require.NoError(t, m.Start(ctx))
	defer m.Stop()
	assert.Equal(t, int32(2), feed.starts.Load())
}

func TestFeedStartFailureReportsError(t *testing.T) {
	svc := &fakeSeatService{}
	c, _, _, _ := newTestCoordinator(t, svc)
	feed := &fakeFeed{failOn: errors.New("no transport")}
	m := NewSyncManager(c, feed, time.Hour)

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusError, m.Status())

	// the latch was released, so a retry is possible
	feed.failOn = nil
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()
}

func TestFallbackLoopSurvivesFetchErrors(t *testing.T) {
	svc := &fakeSeatService{seats: availableSeats(1), listErr: errors.New("flaky")}
	c, _, _, _ := newTestCoordinator(t, svc)
	m := NewSyncManager(c, nil, 10*time.Millisecond)
	defer m.Stop()

	require.NoError(t, m.Start(context.Background()))
	assert.Eventually(t, func() bool { return m.Status() == StatusError }, time.Second, 5*time.Millisecond)
	assert.NotEmpty(t, m.LastError())

	// transient failure heals on a later tick without restarting
	svc.mu.Lock()
	svc.listErr = nil
	svc.mu.Unlock()
	assert.Eventually(t, func() bool { return m.Status() == StatusConnected }, time.Second, 5*time.Millisecond)
	assert.Empty(t, m.LastError())
}

func TestFeedSnapshotsFlowThroughMerge(t *testing.T) {
	svc := &fakeSeatService{}
	c, _, _, _ := newTestCoordinator(t, svc)
	m := NewSyncManager(c, &fakeFeed{}, time.Hour)

	c.ApplySnapshot([]model.Seat{{SeatID: 1, Status: model.SeatReserved, IsReservedByCurrentUser: true, RemainingSeconds: 60}})
	c.MarkPaid([]int64{1})

	// a pushed snapshot is subject to the same overlay precedence as a poll
	m.HandleSeats([]model.Seat{{SeatID: 1, Status: model.SeatAvailable}})
	seats := c.Seats()
	require.Len(t, seats, 1)
	assert.Equal(t, model.SeatBooked, seats[0].Status)
}
