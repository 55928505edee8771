package models

import (
	"time"

	"github.com/google/uuid"
)

// Race is a scheduled event on the season calendar.
type Race struct {
	ID        uuid.UUID `json:"id"`
	Season    int       `json:"season"`
	Round     int       `json:"round"`
	Name      string    `json:"name"`
	FP1Time   time.Time `json:"fp1_time"`
	StartTime time.Time `json:"start_time"`
}

// HasStarted reports whether the race is live or finished at now.
func (r *Race) HasStarted(now time.Time) bool {
	return !now.Before(r.StartTime)
}

// Driver is a draftable item in a season catalog.
type Driver struct {
	ID          int    `json:"id"`
	Season      int    `json:"season"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Constructor string `json:"constructor"`
}
