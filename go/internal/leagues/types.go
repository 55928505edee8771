package leagues

import (
	"github.com/google/uuid"
)

// CreateLeagueRequest represents the data needed to create a new league
type CreateLeagueRequest struct {
	OwnerID          uuid.UUID `json:"-"`
	Name             string    `json:"name"`
	Season           int       `json:"season"`
	TeamsEnabled     bool      `json:"teams_enabled"`
	BansEnabled      bool      `json:"bans_enabled"`
	MirrorEnabled    bool      `json:"mirror_enabled"`
	MaxPlayers       int       `json:"max_players"`
	InitialRaceRound int       `json:"initial_race_round"`
}

// CreateTeamRequest declares a team and the number of seats it will fill
type CreateTeamRequest struct {
	LeagueID    uuid.UUID `json:"league_id"`
	RequesterID uuid.UUID `json:"-"`
	Name        string    `json:"name"`
	Size        int       `json:"size"`
}

// TeamChangeResult echoes the sizes a team change was validated against
type TeamChangeResult struct {
	TotalPlayers     int   `json:"total_players"`
	MaxTeams         int   `json:"max_teams"`
	ProspectiveSizes []int `json:"prospective_sizes"`
}
