package model

import "time"

// Concert is the browse-level summary of a concert.
type Concert struct {
	ConcertID int64     `json:"concertId"`
	Title     string    `json:"title"`
	Venue     string    `json:"venue"`
	StartsAt  time.Time `json:"startsAt"`
	// Queued concerts gate seat selection behind the admission queue.
	Queued bool `json:"queued"`
}
