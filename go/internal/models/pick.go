package models

import (
	"time"

	"github.com/google/uuid"
)

// Pick is one driver selection in a draft. A banned pick stays on record with
// BannedBy/BannedAt set and no longer counts as active.
type Pick struct {
	ID           uuid.UUID  `json:"id"`
	DraftID      uuid.UUID  `json:"draft_id"`
	UserID       uuid.UUID  `json:"user_id"`
	DriverID     int        `json:"driver_id"`
	IsMirrorPick bool       `json:"is_mirror_pick"`
	IsBanned     bool       `json:"is_banned"`
	BannedBy     *uuid.UUID `json:"banned_by,omitempty"`
	BannedAt     *time.Time `json:"banned_at,omitempty"`
	IsAutopick   bool       `json:"is_autopick"`
	PickedAt     time.Time  `json:"picked_at"`
}

func (p *Pick) IsActive() bool {
	return !p.IsBanned
}

// BanCredit is the remaining ban pool for a user or team within one draft.
type BanCredit struct {
	DraftID       uuid.UUID `json:"draft_id"`
	ScopeID       uuid.UUID `json:"scope_id"`
	IsTeamScope   bool      `json:"is_team_scope"`
	BansRemaining int       `json:"bans_remaining"`
}

// AutopickPreference is a user's fallback driver order within a league.
type AutopickPreference struct {
	LeagueID  uuid.UUID `json:"league_id"`
	UserID    uuid.UUID `json:"user_id"`
	DriverIDs []int     `json:"driver_ids"`
	UpdatedAt time.Time `json:"updated_at"`
}
