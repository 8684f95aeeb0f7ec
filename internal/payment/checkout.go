package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uiseon98/ticketmongo-client/internal/api"
	"github.com/uiseon98/ticketmongo-client/internal/model"
	"github.com/uiseon98/ticketmongo-client/internal/ui"
)

// Provider is the external checkout SDK boundary. Checkout blocks until the
// payment resolves: nil on success, an error on cancellation or failure.
type Provider interface {
	Checkout(ctx context.Context, info model.PaymentInfo) error
}

// BookingService creates the booking and hands back payment parameters.
type BookingService interface {
	CreateBooking(ctx context.Context, concertID int64, seatIDs []int64) (*model.PaymentInfo, error)
}

// PaidMarker flips seats to booked locally after a successful payment. The
// reservation coordinator implements it.
type PaidMarker interface {
	MarkPaid(seatIDs []int64)
}

// KeyDiscarder drops a rejected admission credential.
type KeyDiscarder interface {
	Discard(concertID int64)
}

// Flow drives checkout for the held seats: create booking, hand off to the
// payment provider, mark seats paid on success. Payment failure leaves seat
// state untouched; the holds stay until their own expiry.
type Flow struct {
	svc      BookingService
	provider Provider
	marker   PaidMarker
	keys     KeyDiscarder
	notifier ui.Notifier
	nav      ui.Navigator
	logger   *slog.Logger
}

func NewFlow(svc BookingService, provider Provider, marker PaidMarker, keys KeyDiscarder, notifier ui.Notifier, nav ui.Navigator) *Flow {
	return &Flow{
		svc:      svc,
		provider: provider,
		marker:   marker,
		keys:     keys,
		notifier: notifier,
		nav:      nav,
		logger:   slog.Default(),
	}
}

func (f *Flow) Purchase(ctx context.Context, concertID int64, seatIDs []int64) error {
	if len(seatIDs) == 0 {
		return errors.New("no seats selected")
	}

	info, err := f.svc.CreateBooking(ctx, concertID, seatIDs)
	if err != nil {
		// Booking is a user-initiated protected call, so a rejected
		// credential ends the session here, unlike the background poll.
		if api.IsAccessDenied(err) {
			f.notifier.Alert("Your reservation window has expired. Returning to the concert page.")
			f.keys.Discard(concertID)
			f.nav.ToConcertDetail(concertID)
			return err
		}
		f.logger.Error(fmt.Sprintf("svc.CreateBooking(%d)", concertID), "error", err)
		f.notifier.Alert("Could not start checkout. Please try again.")
		return err
	}

	if err := f.provider.Checkout(ctx, *info); err != nil {
		f.notifier.Alert("Payment was not completed: " + err.Error())
		return fmt.Errorf("checkout for booking %s: %w", info.BookingNumber, err)
	}

	f.marker.MarkPaid(seatIDs)
	f.notifier.Info(fmt.Sprintf("Booking %s confirmed.", info.BookingNumber))
	return nil
}

// ConsoleProvider approves every payment after printing the order. Used by
// the CLI driver in place of the real checkout SDK.
type ConsoleProvider struct{}

func (ConsoleProvider) Checkout(_ context.Context, info model.PaymentInfo) error {
	slog.Info("checkout approved",
		"orderId", info.OrderID,
		"orderName", info.OrderName,
		"amount", info.Amount,
		"customer", info.CustomerName,
	)
	return nil
}
