// Package ui holds the boundaries toward whatever is presenting the client:
// user-facing notifications and navigation between views. The reservation and
// queue packages talk to these interfaces only, never to a terminal or a
// rendering layer directly.
package ui

import "log/slog"

// Notifier surfaces user-facing messages. Alert is for conditions the user
// must act on, Info for confirmations.
type Notifier interface {
	Info(msg string)
	Alert(msg string)
}

// Navigator moves the user between views.
type Navigator interface {
	ToSeatSelection(concertID int64)
	ToConcertDetail(concertID int64)
}

// Console is a Notifier/Navigator for headless runs: messages and navigation
// become log lines.
type Console struct{}

func (Console) Info(msg string)  { slog.Info(msg) }
func (Console) Alert(msg string) { slog.Warn(msg) }

func (Console) ToSeatSelection(concertID int64) {
	slog.Info("navigate to seat selection", "concertID", concertID)
}

func (Console) ToConcertDetail(concertID int64) {
	slog.Info("navigate to concert detail", "concertID", concertID)
}
