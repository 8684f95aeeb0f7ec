// ticketcli drives a full reservation session against the platform: enter
// the admission queue, wait for the signal, hold seats, and check out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/uiseon98/ticketmongo-client/internal/api"
	"github.com/uiseon98/ticketmongo-client/internal/config"
	"github.com/uiseon98/ticketmongo-client/internal/model"
	"github.com/uiseon98/ticketmongo-client/internal/payment"
	"github.com/uiseon98/ticketmongo-client/internal/queue"
	"github.com/uiseon98/ticketmongo-client/internal/realtime"
	"github.com/uiseon98/ticketmongo-client/internal/reservation"
	"github.com/uiseon98/ticketmongo-client/internal/ui"
)

func main() {
	concertID := flag.Int64("concert", 1, "concert to book")
	seatList := flag.String("seats", "", "comma-separated seat IDs to hold and buy")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	seatIDs, err := parseSeatIDs(*seatList)
	if err != nil {
		slog.Error("parse -seats", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *concertID, seatIDs); err != nil {
		slog.Error("session failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, concertID int64, seatIDs []int64) error {
	console := ui.Console{}
	keys := queue.NewKeyStore()
	client := api.NewClient(cfg.BaseURL, cfg.AuthToken, keys)

	// Admission first: seat endpoints for a queued concert reject callers
	// without a credential.
	admission := queue.NewAdmissionClient(client, keys, cfg.QueueWSURL, cfg.AuthToken, console, console)
	defer admission.Close()

	entry, err := admission.Enter(ctx, concertID)
	if err != nil {
		return err
	}
	if entry.Status == model.QueueWaiting {
		slog.Info("waiting for admission", "rank", entry.Rank)
		if err := admission.Listen(ctx, concertID); err != nil {
			return err
		}
	}

	coord := reservation.NewCoordinator(concertID, client, keys, console, console)
	defer coord.Close()

	var feed reservation.StreamFeed
	if cfg.LiveFeedEnabled() {
		feed, err = realtime.NewFeed(&realtime.Config{
			SubscribeKey: cfg.PubNubSubscribeKey,
			UserID:       cfg.PubNubUserID,
		})
		if err != nil {
			return err
		}
	}
	syncer := reservation.NewSyncManager(coord, feed, cfg.PollInterval())
	if err := syncer.Start(ctx); err != nil {
		return err
	}
	defer syncer.Stop()

	if err := coord.Reconcile(ctx); err != nil {
		return err
	}
	printBoard(coord)

	for _, id := range seatIDs {
		if err := coord.ToggleSeat(ctx, id); err != nil {
			slog.Warn("seat selection failed", "seatID", id, "error", err)
		}
	}
	held := coord.Held()
	if len(held) == 0 {
		slog.Info("nothing selected, done")
		return nil
	}
	slog.Info("selection held", "seats", len(held), "secondsLeft", coord.HoldRemaining())

	flow := payment.NewFlow(client, payment.ConsoleProvider{}, coord, keys, console, console)
	heldIDs := make([]int64, 0, len(held))
	for _, s := range held {
		heldIDs = append(heldIDs, s.SeatID)
	}
	if err := flow.Purchase(ctx, concertID, heldIDs); err != nil {
		return err
	}
	printBoard(coord)
	return nil
}

func printBoard(coord *reservation.Coordinator) {
	var b strings.Builder
	for _, seat := range coord.Seats() {
		marker := "."
		switch {
		case seat.HeldByMe():
			marker = "H"
		case seat.Status == model.SeatReserved:
			marker = "r"
		case seat.Status == model.SeatBooked:
			marker = "B"
		case seat.Status == model.SeatUnavailable:
			marker = "x"
		}
		fmt.Fprintf(&b, "%s%s ", seat.SeatInfo, marker)
	}
	slog.Info("seat map", "board", strings.TrimSpace(b.String()))
}

func parseSeatIDs(list string) ([]int64, error) {
	if list == "" {
		return nil, nil
	}
	parts := strings.Split(list, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seat id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
