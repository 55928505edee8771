package models

import (
	"time"

	"github.com/google/uuid"
)

type LeagueStatus string

const (
	LeagueStatusPending LeagueStatus = "pending"
	LeagueStatusActive  LeagueStatus = "active"
)

// League groups members who draft drivers against each other for a season.
type League struct {
	ID               uuid.UUID    `json:"id"`
	Name             string       `json:"name"`
	OwnerID          uuid.UUID    `json:"owner_id"`
	Season           int          `json:"season"`
	Status           LeagueStatus `json:"status"`
	TeamsEnabled     bool         `json:"teams_enabled"`
	BansEnabled      bool         `json:"bans_enabled"`
	MirrorEnabled    bool         `json:"mirror_enabled"`
	MaxPlayers       int          `json:"max_players"`
	InitialRaceRound int          `json:"initial_race_round"`
	CreatedAt        time.Time    `json:"created_at"`
}

func (l *League) IsPending() bool {
	return l.Status == LeagueStatusPending
}

// Member is a user's seat in a league. PickOrder is the owner-assigned rank,
// nil until set.
type Member struct {
	LeagueID  uuid.UUID `json:"league_id"`
	UserID    uuid.UUID `json:"user_id"`
	PickOrder *int      `json:"pick_order,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Team is an optional grouping of members that share bans and stand-in turns.
// Size is the declared seat count the team fills before the draft starts.
type Team struct {
	ID        uuid.UUID `json:"id"`
	LeagueID  uuid.UUID `json:"league_id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamRoster is a team together with its member user ids.
type TeamRoster struct {
	TeamID  uuid.UUID   `json:"team_id"`
	Members []uuid.UUID `json:"members"`
}
