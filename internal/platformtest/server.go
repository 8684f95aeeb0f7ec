// Package platformtest is an in-memory stand-in for the ticketing platform:
// the seat, queue, and booking endpoints the client consumes, plus the
// waiting-room WebSocket channel. Package tests run it under httptest; the
// mockplatform command serves it standalone for local runs.
package platformtest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/uiseon98/ticketmongo-client/internal/api"
	"github.com/uiseon98/ticketmongo-client/internal/model"
)

const maxHoldsPerSession = 2

// Options tune the simulated platform.
type Options struct {
	Sections        []string
	SeatsPerSection int
	HoldTTL         time.Duration

	// RequireAccessKey enforces X-Access-Key on seat-protected endpoints.
	RequireAccessKey bool
	// ImmediateEntry makes the queue admit without waiting.
	ImmediateEntry bool
	// WaitingRank is the rank reported when entry has to wait.
	WaitingRank int
}

func (o *Options) applyDefaults() {
	if len(o.Sections) == 0 {
		o.Sections = []string{"A", "B"}
	}
	if o.SeatsPerSection == 0 {
		o.SeatsPerSection = 5
	}
	if o.HoldTTL == 0 {
		o.HoldTTL = 7 * time.Minute
	}
	if o.WaitingRank == 0 {
		o.WaitingRank = 5
	}
}

type seatRecord struct {
	id       int64
	info     string
	status   model.SeatStatus
	heldBy   string
	deadline time.Time
}

type Server struct {
	e        *echo.Echo
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	opts     Options
	seats    []*seatRecord
	keys     map[string]struct{}
	waiters  map[*websocket.Conn]struct{}
	bookings int
}

func NewServer(opts Options) *Server {
	opts.applyDefaults()
	s := &Server{
		e: echo.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		opts:    opts,
		keys:    make(map[string]struct{}),
		waiters: make(map[*websocket.Conn]struct{}),
		logger:  slog.Default(),
	}
	s.e.HideBanner = true

	var id int64
	for _, section := range opts.Sections {
		for n := 1; n <= opts.SeatsPerSection; n++ {
			id++
			s.seats = append(s.seats, &seatRecord{
				id:     id,
				info:   fmt.Sprintf("%s-%d", section, n),
				status: model.SeatAvailable,
			})
		}
	}

	apiGroup := s.e.Group("/api/v1")
	apiGroup.GET("/concerts", s.listConcerts)
	apiGroup.GET("/concerts/:concertId", s.getConcert)
	apiGroup.GET("/concerts/:concertId/seats", s.listSeats)
	apiGroup.POST("/concerts/:concertId/seats/:seatId/hold", s.holdSeat)
	apiGroup.DELETE("/concerts/:concertId/seats/:seatId/hold", s.releaseSeat)
	apiGroup.POST("/concerts/:concertId/queue", s.enterQueue)
	apiGroup.POST("/concerts/:concertId/bookings", s.createBooking)
	s.e.GET("/ws/queue", s.queueChannel)
	return s
}

// Handler exposes the echo mux for httptest.
func (s *Server) Handler() http.Handler { return s.e }

// Echo returns the underlying server for standalone runs.
func (s *Server) Echo() *echo.Echo { return s.e }

// IssueKey registers and returns a valid access key.
func (s *Server) IssueKey() string {
	key := uuid.NewString()
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
	return key
}

// RevokeAllKeys invalidates every issued key so protected calls 403.
func (s *Server) RevokeAllKeys() {
	s.mu.Lock()
	s.keys = make(map[string]struct{})
	s.mu.Unlock()
}

// Admit registers the key as valid and pushes the admission signal to every
// waiting connection.
func (s *Server) Admit(accessKey string) {
	s.mu.Lock()
	s.keys[accessKey] = struct{}{}
	s.mu.Unlock()
	s.Broadcast(model.AdmissionMessage{Type: model.AdmissionAdmit, AccessKey: accessKey})
}

// Broadcast sends an arbitrary JSON payload to every waiting connection.
func (s *Server) Broadcast(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("marshal broadcast payload", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.waiters {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Warn("write to waiter failed", "error", err)
		}
	}
}

// DropWaiters closes every waiting connection with the given code.
func (s *Server) DropWaiters(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.waiters {
		frame := websocket.FormatCloseMessage(code, "")
		_ = conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(time.Second))
		conn.Close()
		delete(s.waiters, conn)
	}
}

// HoldAs simulates another session holding a seat.
func (s *Server) HoldAs(session string, seatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec := s.findSeat(seatID); rec != nil {
		rec.status = model.SeatReserved
		rec.heldBy = session
		rec.deadline = time.Now().Add(s.opts.HoldTTL)
	}
}

// ExpireHolds backdates every active hold so the next request releases it.
func (s *Server) ExpireHolds() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.seats {
		if rec.status == model.SeatReserved {
			rec.deadline = time.Now().Add(-time.Second)
		}
	}
}

// SeatHeldBy reports which session holds the seat, empty when none.
func (s *Server) SeatHeldBy(seatID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec := s.findSeat(seatID); rec != nil {
		return rec.heldBy
	}
	return ""
}

func (s *Server) findSeat(seatID int64) *seatRecord {
	for _, rec := range s.seats {
		if rec.id == seatID {
			return rec
		}
	}
	return nil
}

// sweep releases expired holds. Called under mu.
func (s *Server) sweep() {
	now := time.Now()
	for _, rec := range s.seats {
		if rec.status == model.SeatReserved && now.After(rec.deadline) {
			rec.status = model.SeatAvailable
			rec.heldBy = ""
			rec.deadline = time.Time{}
		}
	}
}

func caller(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); auth != "" {
		return auth
	}
	return "anonymous"
}

// checkKey enforces access-key protection when enabled. Called under mu.
func (s *Server) checkKey(c echo.Context) error {
	if !s.opts.RequireAccessKey {
		return nil
	}
	key := c.Request().Header.Get(api.AccessKeyHeader)
	if _, ok := s.keys[key]; !ok {
		return echo.NewHTTPError(http.StatusForbidden, "access key required")
	}
	return nil
}

func seatID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("seatId"), 10, 64)
}

func (s *Server) listConcerts(c echo.Context) error {
	return c.JSON(http.StatusOK, []model.Concert{
		{ConcertID: 1, Title: "Mock Concert", Venue: "Test Hall", StartsAt: time.Now().Add(24 * time.Hour), Queued: true},
	})
}

func (s *Server) getConcert(c echo.Context) error {
	return c.JSON(http.StatusOK, model.Concert{
		ConcertID: 1, Title: "Mock Concert", Venue: "Test Hall", StartsAt: time.Now().Add(24 * time.Hour), Queued: true,
	})
}

func (s *Server) listSeats(c echo.Context) error {
	session := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkKey(c); err != nil {
		return err
	}
	s.sweep()

	seats := make([]model.Seat, 0, len(s.seats))
	for _, rec := range s.seats {
		seat := model.Seat{
			SeatID:   rec.id,
			SeatInfo: rec.info,
			Status:   rec.status,
		}
		if rec.status == model.SeatReserved && rec.heldBy == session {
			seat.IsReservedByCurrentUser = true
			seat.RemainingSeconds = int(time.Until(rec.deadline).Seconds())
		}
		seats = append(seats, seat)
	}
	return c.JSON(http.StatusOK, seats)
}

func (s *Server) holdSeat(c echo.Context) error {
	session := caller(c)
	id, err := seatID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid seat id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkKey(c); err != nil {
		return err
	}
	s.sweep()

	rec := s.findSeat(id)
	if rec == nil {
		return echo.NewHTTPError(http.StatusNotFound, "seat not found")
	}
	if rec.status != model.SeatAvailable {
		return echo.NewHTTPError(http.StatusConflict, "seat is not available")
	}

	held := 0
	for _, r := range s.seats {
		if r.status == model.SeatReserved && r.heldBy == session {
			held++
		}
	}
	if held >= maxHoldsPerSession {
		return echo.NewHTTPError(http.StatusBadRequest, "maximum seats already held")
	}

	rec.status = model.SeatReserved
	rec.heldBy = session
	rec.deadline = time.Now().Add(s.opts.HoldTTL)

	return c.JSON(http.StatusOK, model.Seat{
		SeatID:                  rec.id,
		SeatInfo:                rec.info,
		Status:                  rec.status,
		IsReservedByCurrentUser: true,
		RemainingSeconds:        int(s.opts.HoldTTL.Seconds()),
	})
}

func (s *Server) releaseSeat(c echo.Context) error {
	session := caller(c)
	id, err := seatID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid seat id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkKey(c); err != nil {
		return err
	}
	s.sweep()

	// release is idempotent: releasing a seat that is not held, or that
	// expired a moment ago, reports success
	if rec := s.findSeat(id); rec != nil && rec.status == model.SeatReserved && rec.heldBy == session {
		rec.status = model.SeatAvailable
		rec.heldBy = ""
		rec.deadline = time.Time{}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "released"})
}

func (s *Server) enterQueue(c echo.Context) error {
	s.mu.Lock()
	immediate := s.opts.ImmediateEntry
	rank := s.opts.WaitingRank
	s.mu.Unlock()

	if immediate {
		key := s.IssueKey()
		return c.JSON(http.StatusOK, model.QueueEntry{
			Status:    model.QueueImmediateEntry,
			AccessKey: key,
		})
	}
	return c.JSON(http.StatusOK, model.QueueEntry{
		Status: model.QueueWaiting,
		Rank:   rank,
	})
}

func (s *Server) queueChannel(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response().Writer, c.Request(), nil)
	if err != nil {
		return fmt.Errorf("upgrade queue channel: %w", err)
	}
	s.mu.Lock()
	s.waiters[conn] = struct{}{}
	s.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.mu.Lock()
				delete(s.waiters, conn)
				s.mu.Unlock()
				conn.Close()
				return
			}
		}
	}()
	return nil
}

func (s *Server) createBooking(c echo.Context) error {
	session := caller(c)
	var req struct {
		SeatIDs []int64 `json:"seatIds"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkKey(c); err != nil {
		return err
	}
	s.sweep()

	for _, id := range req.SeatIDs {
		rec := s.findSeat(id)
		if rec == nil || rec.status != model.SeatReserved || rec.heldBy != session {
			return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf("seat %d is not held by this session", id))
		}
	}
	for _, id := range req.SeatIDs {
		rec := s.findSeat(id)
		rec.status = model.SeatBooked
		rec.heldBy = ""
		rec.deadline = time.Time{}
	}

	s.bookings++
	return c.JSON(http.StatusOK, model.PaymentInfo{
		ClientKey:     "test_client_key",
		OrderID:       uuid.NewString(),
		OrderName:     fmt.Sprintf("Concert tickets x%d", len(req.SeatIDs)),
		Amount:        float64(len(req.SeatIDs)) * 50000,
		CustomerName:  session,
		SuccessURL:    "https://example.com/payment/success",
		FailURL:       "https://example.com/payment/fail",
		BookingNumber: fmt.Sprintf("BK-%06d", s.bookings),
	})
}
