package model

import (
	"strconv"
	"strings"
)

// SeatStatus is the server-authoritative state of a seat.
type SeatStatus string

const (
	SeatAvailable   SeatStatus = "AVAILABLE"
	SeatReserved    SeatStatus = "RESERVED"
	SeatBooked      SeatStatus = "BOOKED"
	SeatUnavailable SeatStatus = "UNAVAILABLE"
)

// Seat is one bookable seat for one concert, as reported by the platform.
// RemainingSeconds is meaningful only while Status is RESERVED and the seat
// is held by the current session.
type Seat struct {
	SeatID                  int64      `json:"seatId"`
	SeatInfo                string     `json:"seatInfo"` // "<section>-<number>"
	Status                  SeatStatus `json:"status"`
	IsReservedByCurrentUser bool       `json:"isReservedByCurrentUser"`
	RemainingSeconds        int        `json:"remainingSeconds"`
}

// HeldByMe reports whether this session currently holds the seat.
func (s Seat) HeldByMe() bool {
	return s.Status == SeatReserved && s.IsReservedByCurrentUser
}

// Section returns the section part of SeatInfo, or the whole string when it
// does not follow the "<section>-<number>" encoding.
func (s Seat) Section() string {
	section, _, _ := strings.Cut(s.SeatInfo, "-")
	return section
}

// Number returns the seat number part of SeatInfo, 0 when absent.
func (s Seat) Number() int {
	_, num, ok := strings.Cut(s.SeatInfo, "-")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n
}
