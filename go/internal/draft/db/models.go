package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type AutopickPreference struct {
	LeagueID  uuid.UUID
	UserID    uuid.UUID
	DriverIds []int32
	UpdatedAt time.Time
}

type BanCredit struct {
	DraftID       uuid.UUID
	ScopeID       uuid.UUID
	IsTeamScope   bool
	BansRemaining int32
}

type Draft struct {
	ID               uuid.UUID
	LeagueID         uuid.UUID
	RaceID           uuid.UUID
	PickOrder        []uuid.UUID
	CurrentPickIndex int32
	MirrorPicks      bool
	Status           string
	CreatedAt        time.Time
}

type Pick struct {
	ID           uuid.UUID
	DraftID      uuid.UUID
	UserID       uuid.UUID
	DriverID     int32
	IsMirrorPick bool
	IsBanned     bool
	BannedBy     uuid.NullUUID
	BannedAt     sql.NullTime
	IsAutopick   bool
	PickedAt     time.Time
}
