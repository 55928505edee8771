package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const createPick = `-- name: CreatePick :one
INSERT INTO picks (id, draft_id, user_id, driver_id, is_mirror_pick, is_banned, is_autopick, picked_at)
VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)
RETURNING id, draft_id, user_id, driver_id, is_mirror_pick, is_banned, banned_by, banned_at, is_autopick, picked_at
`

type CreatePickParams struct {
	ID           uuid.UUID
	DraftID      uuid.UUID
	UserID       uuid.UUID
	DriverID     int32
	IsMirrorPick bool
	IsAutopick   bool
	PickedAt     time.Time
}

func (q *Queries) CreatePick(ctx context.Context, arg CreatePickParams) (Pick, error) {
	row := q.db.QueryRowContext(ctx, createPick,
		arg.ID,
		arg.DraftID,
		arg.UserID,
		arg.DriverID,
		arg.IsMirrorPick,
		arg.IsAutopick,
		arg.PickedAt,
	)
	var i Pick
	err := row.Scan(
		&i.ID,
		&i.DraftID,
		&i.UserID,
		&i.DriverID,
		&i.IsMirrorPick,
		&i.IsBanned,
		&i.BannedBy,
		&i.BannedAt,
		&i.IsAutopick,
		&i.PickedAt,
	)
	return i, err
}

const getActivePickByDriver = `-- name: GetActivePickByDriver :one
SELECT id, draft_id, user_id, driver_id, is_mirror_pick, is_banned, banned_by, banned_at, is_autopick, picked_at
FROM picks
WHERE draft_id = $1 AND driver_id = $2 AND NOT is_banned
`

type GetActivePickByDriverParams struct {
	DraftID  uuid.UUID
	DriverID int32
}

func (q *Queries) GetActivePickByDriver(ctx context.Context, arg GetActivePickByDriverParams) (Pick, error) {
	row := q.db.QueryRowContext(ctx, getActivePickByDriver, arg.DraftID, arg.DriverID)
	var i Pick
	err := row.Scan(
		&i.ID,
		&i.DraftID,
		&i.UserID,
		&i.DriverID,
		&i.IsMirrorPick,
		&i.IsBanned,
		&i.BannedBy,
		&i.BannedAt,
		&i.IsAutopick,
		&i.PickedAt,
	)
	return i, err
}

const hasActivePick = `-- name: HasActivePick :one
SELECT EXISTS (
    SELECT 1 FROM picks
    WHERE draft_id = $1 AND user_id = $2 AND is_mirror_pick = $3 AND NOT is_banned
)
`

type HasActivePickParams struct {
	DraftID      uuid.UUID
	UserID       uuid.UUID
	IsMirrorPick bool
}

func (q *Queries) HasActivePick(ctx context.Context, arg HasActivePickParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, hasActivePick, arg.DraftID, arg.UserID, arg.IsMirrorPick)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const listPicksByDraft = `-- name: ListPicksByDraft :many
SELECT id, draft_id, user_id, driver_id, is_mirror_pick, is_banned, banned_by, banned_at, is_autopick, picked_at
FROM picks
WHERE draft_id = $1
ORDER BY picked_at, id
`

func (q *Queries) ListPicksByDraft(ctx context.Context, draftID uuid.UUID) ([]Pick, error) {
	return q.listPicks(ctx, listPicksByDraft, draftID)
}

const listActivePicks = `-- name: ListActivePicks :many
SELECT id, draft_id, user_id, driver_id, is_mirror_pick, is_banned, banned_by, banned_at, is_autopick, picked_at
FROM picks
WHERE draft_id = $1 AND NOT is_banned
ORDER BY picked_at, id
`

func (q *Queries) ListActivePicks(ctx context.Context, draftID uuid.UUID) ([]Pick, error) {
	return q.listPicks(ctx, listActivePicks, draftID)
}

func (q *Queries) listPicks(ctx context.Context, query string, draftID uuid.UUID) ([]Pick, error) {
	rows, err := q.db.QueryContext(ctx, query, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Pick
	for rows.Next() {
		var i Pick
		if err := rows.Scan(
			&i.ID,
			&i.DraftID,
			&i.UserID,
			&i.DriverID,
			&i.IsMirrorPick,
			&i.IsBanned,
			&i.BannedBy,
			&i.BannedAt,
			&i.IsAutopick,
			&i.PickedAt,
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

const listBannedDriversForUser = `-- name: ListBannedDriversForUser :many
SELECT DISTINCT driver_id
FROM picks
WHERE draft_id = $1 AND user_id = $2 AND is_banned
ORDER BY driver_id
`

type ListBannedDriversForUserParams struct {
	DraftID uuid.UUID
	UserID  uuid.UUID
}

func (q *Queries) ListBannedDriversForUser(ctx context.Context, arg ListBannedDriversForUserParams) ([]int32, error) {
	rows, err := q.db.QueryContext(ctx, listBannedDriversForUser, arg.DraftID, arg.UserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int32
	for rows.Next() {
		var driver_id int32
		if err := rows.Scan(&driver_id); err != nil {
			return nil, err
		}
		items = append(items, driver_id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const hasBanAgainst = `-- name: HasBanAgainst :one
SELECT EXISTS (
    SELECT 1 FROM picks
    WHERE draft_id = $1 AND user_id = $2 AND banned_by = $3 AND is_banned
)
`

type HasBanAgainstParams struct {
	DraftID  uuid.UUID
	UserID   uuid.UUID
	BannedBy uuid.NullUUID
}

func (q *Queries) HasBanAgainst(ctx context.Context, arg HasBanAgainstParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, hasBanAgainst, arg.DraftID, arg.UserID, arg.BannedBy)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const banPick = `-- name: BanPick :execrows
UPDATE picks
SET is_banned = TRUE,
    banned_by = $2,
    banned_at = $3
WHERE id = $1 AND NOT is_banned
`

type BanPickParams struct {
	ID       uuid.UUID
	BannedBy uuid.NullUUID
	BannedAt time.Time
}

func (q *Queries) BanPick(ctx context.Context, arg BanPickParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, banPick, arg.ID, arg.BannedBy, arg.BannedAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const consumeBanCredit = `-- name: ConsumeBanCredit :one
INSERT INTO ban_credits (draft_id, scope_id, is_team_scope, bans_remaining)
VALUES ($1, $2, $3, $4::int - 1)
ON CONFLICT (draft_id, scope_id) DO UPDATE
SET bans_remaining = ban_credits.bans_remaining - 1
WHERE ban_credits.bans_remaining > 0
RETURNING bans_remaining
`

type ConsumeBanCreditParams struct {
	DraftID        uuid.UUID
	ScopeID        uuid.UUID
	IsTeamScope    bool
	InitialCredits int32
}

// ConsumeBanCredit returns sql.ErrNoRows when the scope has no bans left.
func (q *Queries) ConsumeBanCredit(ctx context.Context, arg ConsumeBanCreditParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, consumeBanCredit,
		arg.DraftID,
		arg.ScopeID,
		arg.IsTeamScope,
		arg.InitialCredits,
	)
	var bans_remaining int32
	err := row.Scan(&bans_remaining)
	return bans_remaining, err
}

const getBanCredit = `-- name: GetBanCredit :one
SELECT draft_id, scope_id, is_team_scope, bans_remaining
FROM ban_credits
WHERE draft_id = $1 AND scope_id = $2
`

type GetBanCreditParams struct {
	DraftID uuid.UUID
	ScopeID uuid.UUID
}

func (q *Queries) GetBanCredit(ctx context.Context, arg GetBanCreditParams) (BanCredit, error) {
	row := q.db.QueryRowContext(ctx, getBanCredit, arg.DraftID, arg.ScopeID)
	var i BanCredit
	err := row.Scan(
		&i.DraftID,
		&i.ScopeID,
		&i.IsTeamScope,
		&i.BansRemaining,
	)
	return i, err
}

const upsertAutopickPreference = `-- name: UpsertAutopickPreference :one
INSERT INTO autopick_preferences (league_id, user_id, driver_ids, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (league_id, user_id) DO UPDATE
SET driver_ids = EXCLUDED.driver_ids,
    updated_at = EXCLUDED.updated_at
RETURNING league_id, user_id, driver_ids, updated_at
`

type UpsertAutopickPreferenceParams struct {
	LeagueID  uuid.UUID
	UserID    uuid.UUID
	DriverIds []int32
	UpdatedAt time.Time
}

func (q *Queries) UpsertAutopickPreference(ctx context.Context, arg UpsertAutopickPreferenceParams) (AutopickPreference, error) {
	row := q.db.QueryRowContext(ctx, upsertAutopickPreference,
		arg.LeagueID,
		arg.UserID,
		pq.Array(arg.DriverIds),
		arg.UpdatedAt,
	)
	var i AutopickPreference
	err := row.Scan(
		&i.LeagueID,
		&i.UserID,
		pq.Array(&i.DriverIds),
		&i.UpdatedAt,
	)
	return i, err
}

const getAutopickPreference = `-- name: GetAutopickPreference :one
SELECT league_id, user_id, driver_ids, updated_at
FROM autopick_preferences
WHERE league_id = $1 AND user_id = $2
`

type GetAutopickPreferenceParams struct {
	LeagueID uuid.UUID
	UserID   uuid.UUID
}

func (q *Queries) GetAutopickPreference(ctx context.Context, arg GetAutopickPreferenceParams) (AutopickPreference, error) {
	row := q.db.QueryRowContext(ctx, getAutopickPreference, arg.LeagueID, arg.UserID)
	var i AutopickPreference
	err := row.Scan(
		&i.LeagueID,
		&i.UserID,
		pq.Array(&i.DriverIds),
		&i.UpdatedAt,
	)
	return i, err
}
