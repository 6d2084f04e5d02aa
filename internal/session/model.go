package session

import "time"

type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED" // terminal; a new visit opens a new session
)

type TableSession struct {
	ID           string     `json:"id"`
	VenueID      string     `json:"venueId"`
	TableID      string     `json:"tableId"`
	Status       Status     `json:"status"`
	PeopleCount  *int       `json:"peopleCount,omitempty"`
	Version      int64      `json:"version"`
	OpenedAt     time.Time  `json:"openedAt"`
	LastActiveAt time.Time  `json:"lastActiveAt"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
}
