package training

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	default:
		return false
	}
}

// Session is a single coached training appointment.
// Day is the calendar day (YYYY-MM-DD) of StartsAt in the service timezone.
type Session struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customerId"`
	StartsAt   time.Time `json:"startsAt"`
	Day        string    `json:"day"`
	Status     Status    `json:"status"`
	Notes      *string   `json:"notes,omitempty"`
}
