package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const createLeague = `-- name: CreateLeague :one
INSERT INTO leagues (id, name, owner_id, season, status, teams_enabled, bans_enabled, mirror_enabled, max_players, initial_race_round, created_at)
VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8, $9, $10)
RETURNING id, name, owner_id, season, status, teams_enabled, bans_enabled, mirror_enabled, max_players, initial_race_round, created_at
`

type CreateLeagueParams struct {
	ID               uuid.UUID
	Name             string
	OwnerID          uuid.UUID
	Season           int32
	TeamsEnabled     bool
	BansEnabled      bool
	MirrorEnabled    bool
	MaxPlayers       int32
	InitialRaceRound int32
	CreatedAt        time.Time
}

func (q *Queries) CreateLeague(ctx context.Context, arg CreateLeagueParams) (League, error) {
	row := q.db.QueryRowContext(ctx, createLeague,
		arg.ID,
		arg.Name,
		arg.OwnerID,
		arg.Season,
		arg.TeamsEnabled,
		arg.BansEnabled,
		arg.MirrorEnabled,
		arg.MaxPlayers,
		arg.InitialRaceRound,
		arg.CreatedAt,
	)
	var i League
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.OwnerID,
		&i.Season,
		&i.Status,
		&i.TeamsEnabled,
		&i.BansEnabled,
		&i.MirrorEnabled,
		&i.MaxPlayers,
		&i.InitialRaceRound,
		&i.CreatedAt,
	)
	return i, err
}

const getLeague = `-- name: GetLeague :one
SELECT id, name, owner_id, season, status, teams_enabled, bans_enabled, mirror_enabled, max_players, initial_race_round, created_at
FROM leagues
WHERE id = $1
`

func (q *Queries) GetLeague(ctx context.Context, id uuid.UUID) (League, error) {
	row := q.db.QueryRowContext(ctx, getLeague, id)
	var i League
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.OwnerID,
		&i.Season,
		&i.Status,
		&i.TeamsEnabled,
		&i.BansEnabled,
		&i.MirrorEnabled,
		&i.MaxPlayers,
		&i.InitialRaceRound,
		&i.CreatedAt,
	)
	return i, err
}

const addLeagueMember = `-- name: AddLeagueMember :one
INSERT INTO league_members (league_id, user_id, joined_at)
VALUES ($1, $2, $3)
RETURNING league_id, user_id, pick_order, joined_at
`

type AddLeagueMemberParams struct {
	LeagueID uuid.UUID
	UserID   uuid.UUID
	JoinedAt time.Time
}

func (q *Queries) AddLeagueMember(ctx context.Context, arg AddLeagueMemberParams) (LeagueMember, error) {
	row := q.db.QueryRowContext(ctx, addLeagueMember, arg.LeagueID, arg.UserID, arg.JoinedAt)
	var i LeagueMember
	err := row.Scan(
		&i.LeagueID,
		&i.UserID,
		&i.PickOrder,
		&i.JoinedAt,
	)
	return i, err
}

const getLeagueMember = `-- name: GetLeagueMember :one
SELECT league_id, user_id, pick_order, joined_at
FROM league_members
WHERE league_id = $1 AND user_id = $2
`

type GetLeagueMemberParams struct {
	LeagueID uuid.UUID
	UserID   uuid.UUID
}

func (q *Queries) GetLeagueMember(ctx context.Context, arg GetLeagueMemberParams) (LeagueMember, error) {
	row := q.db.QueryRowContext(ctx, getLeagueMember, arg.LeagueID, arg.UserID)
	var i LeagueMember
	err := row.Scan(
		&i.LeagueID,
		&i.UserID,
		&i.PickOrder,
		&i.JoinedAt,
	)
	return i, err
}

const listLeagueMembers = `-- name: ListLeagueMembers :many
SELECT league_id, user_id, pick_order, joined_at
FROM league_members
WHERE league_id = $1
ORDER BY joined_at, user_id
`

func (q *Queries) ListLeagueMembers(ctx context.Context, leagueID uuid.UUID) ([]LeagueMember, error) {
	rows, err := q.db.QueryContext(ctx, listLeagueMembers, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LeagueMember
	for rows.Next() {
		var i LeagueMember
		if err := rows.Scan(
			&i.LeagueID,
			&i.UserID,
			&i.PickOrder,
			&i.JoinedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setMemberPickOrder = `-- name: SetMemberPickOrder :execrows
UPDATE league_members
SET pick_order = $3
WHERE league_id = $1 AND user_id = $2
`

type SetMemberPickOrderParams struct {
	LeagueID  uuid.UUID
	UserID    uuid.UUID
	PickOrder sql.NullInt32
}

func (q *Queries) SetMemberPickOrder(ctx context.Context, arg SetMemberPickOrderParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, setMemberPickOrder, arg.LeagueID, arg.UserID, arg.PickOrder)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createTeam = `-- name: CreateTeam :one
INSERT INTO teams (id, league_id, name, size, created_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, league_id, name, size, created_at
`

type CreateTeamParams struct {
	ID        uuid.UUID
	LeagueID  uuid.UUID
	Name      string
	Size      int32
	CreatedAt time.Time
}

func (q *Queries) CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, createTeam,
		arg.ID,
		arg.LeagueID,
		arg.Name,
		arg.Size,
		arg.CreatedAt,
	)
	var i Team
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.Name,
		&i.Size,
		&i.CreatedAt,
	)
	return i, err
}

const getTeam = `-- name: GetTeam :one
SELECT id, league_id, name, size, created_at
FROM teams
WHERE id = $1
`

func (q *Queries) GetTeam(ctx context.Context, id uuid.UUID) (Team, error) {
	row := q.db.QueryRowContext(ctx, getTeam, id)
	var i Team
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.Name,
		&i.Size,
		&i.CreatedAt,
	)
	return i, err
}

const listTeamsByLeague = `-- name: ListTeamsByLeague :many
SELECT id, league_id, name, size, created_at
FROM teams
WHERE league_id = $1
ORDER BY created_at, id
`

func (q *Queries) ListTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]Team, error) {
	rows, err := q.db.QueryContext(ctx, listTeamsByLeague, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Team
	for rows.Next() {
		var i Team
		if err := rows.Scan(
			&i.ID,
			&i.LeagueID,
			&i.Name,
			&i.Size,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateTeamSize = `-- name: UpdateTeamSize :one
UPDATE teams
SET size = $2
WHERE id = $1
RETURNING id, league_id, name, size, created_at
`

type UpdateTeamSizeParams struct {
	ID   uuid.UUID
	Size int32
}

func (q *Queries) UpdateTeamSize(ctx context.Context, arg UpdateTeamSizeParams) (Team, error) {
	row := q.db.QueryRowContext(ctx, updateTeamSize, arg.ID, arg.Size)
	var i Team
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.Name,
		&i.Size,
		&i.CreatedAt,
	)
	return i, err
}

const addTeamMember = `-- name: AddTeamMember :exec
INSERT INTO team_members (team_id, league_id, user_id)
VALUES ($1, $2, $3)
`

type AddTeamMemberParams struct {
	TeamID   uuid.UUID
	LeagueID uuid.UUID
	UserID   uuid.UUID
}

func (q *Queries) AddTeamMember(ctx context.Context, arg AddTeamMemberParams) error {
	_, err := q.db.ExecContext(ctx, addTeamMember, arg.TeamID, arg.LeagueID, arg.UserID)
	return err
}

const removeTeamMember = `-- name: RemoveTeamMember :execrows
DELETE FROM team_members
WHERE team_id = $1 AND user_id = $2
`

type RemoveTeamMemberParams struct {
	TeamID uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) RemoveTeamMember(ctx context.Context, arg RemoveTeamMemberParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, removeTeamMember, arg.TeamID, arg.UserID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listTeamMembersByLeague = `-- name: ListTeamMembersByLeague :many
SELECT team_id, user_id
FROM team_members
WHERE league_id = $1
ORDER BY team_id, user_id
`

type ListTeamMembersByLeagueRow struct {
	TeamID uuid.UUID
	UserID uuid.UUID
}

func (q *Queries) ListTeamMembersByLeague(ctx context.Context, leagueID uuid.UUID) ([]ListTeamMembersByLeagueRow, error) {
	rows, err := q.db.QueryContext(ctx, listTeamMembersByLeague, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListTeamMembersByLeagueRow
	for rows.Next() {
		var i ListTeamMembersByLeagueRow
		if err := rows.Scan(&i.TeamID, &i.UserID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTeamIDForMember = `-- name: GetTeamIDForMember :one
SELECT team_id
FROM team_members
WHERE league_id = $1 AND user_id = $2
`

type GetTeamIDForMemberParams struct {
	LeagueID uuid.UUID
	UserID   uuid.UUID
}

func (q *Queries) GetTeamIDForMember(ctx context.Context, arg GetTeamIDForMemberParams) (uuid.UUID, error) {
	row := q.db.QueryRowContext(ctx, getTeamIDForMember, arg.LeagueID, arg.UserID)
	var team_id uuid.UUID
	err := row.Scan(&team_id)
	return team_id, err
}
