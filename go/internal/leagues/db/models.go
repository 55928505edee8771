package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type League struct {
	ID               uuid.UUID
	Name             string
	OwnerID          uuid.UUID
	Season           int32
	Status           string
	TeamsEnabled     bool
	BansEnabled      bool
	MirrorEnabled    bool
	MaxPlayers       int32
	InitialRaceRound int32
	CreatedAt        time.Time
}

type LeagueMember struct {
	LeagueID  uuid.UUID
	UserID    uuid.UUID
	PickOrder sql.NullInt32
	JoinedAt  time.Time
}

type Team struct {
	ID        uuid.UUID
	LeagueID  uuid.UUID
	Name      string
	Size      int32
	CreatedAt time.Time
}

type TeamMember struct {
	TeamID   uuid.UUID
	LeagueID uuid.UUID
	UserID   uuid.UUID
}
