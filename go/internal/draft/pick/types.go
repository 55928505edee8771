package pick

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/draft/deadline"
)

// MakePickRequest selects DriverID for the draft's current turn.
type MakePickRequest struct {
	DraftID     uuid.UUID `json:"-"`
	RequesterID uuid.UUID `json:"-"`
	DriverID    int       `json:"driver_id"`
}

// BanPickRequest voids TargetUserID's active pick of DriverID.
type BanPickRequest struct {
	DraftID      uuid.UUID `json:"-"`
	RequesterID  uuid.UUID `json:"-"`
	TargetUserID uuid.UUID `json:"target_user_id"`
	DriverID     int       `json:"driver_id"`
}

// UpsertAutopickRequest replaces a member's fallback driver order.
type UpsertAutopickRequest struct {
	LeagueID  uuid.UUID `json:"-"`
	UserID    uuid.UUID `json:"-"`
	DriverIDs []int     `json:"driver_ids"`
}

// DraftState is the view of a draft returned after every pick and ban.
type DraftState struct {
	DraftID          uuid.UUID  `json:"draft_id"`
	CurrentPickIndex int        `json:"current_pick_index"`
	Complete         bool       `json:"complete"`
	NextUserID       *uuid.UUID `json:"next_user_id,omitempty"`
	NextDeadline     *time.Time `json:"next_deadline,omitempty"`
	PickedDrivers    []int      `json:"picked_drivers"`
	BannedDrivers    []int      `json:"banned_drivers"`
}

// Config holds the timing rules for turns.
type Config struct {
	FirstHalfLead time.Duration
	StandInWindow time.Duration
}

func DefaultConfig() Config {
	return Config{
		FirstHalfLead: deadline.DefaultFirstHalfLead,
		StandInWindow: deadline.DefaultStandInWindow,
	}
}
