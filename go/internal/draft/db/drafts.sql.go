package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const activateLeague = `-- name: ActivateLeague :execrows
UPDATE leagues
SET status = 'active'
WHERE id = $1 AND status = 'pending'
`

func (q *Queries) ActivateLeague(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.ExecContext(ctx, activateLeague, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const createDraft = `-- name: CreateDraft :one
INSERT INTO drafts (id, league_id, race_id, pick_order, current_pick_index, mirror_picks, status, created_at)
VALUES ($1, $2, $3, $4, 0, $5, 'in_progress', $6)
RETURNING id, league_id, race_id, pick_order, current_pick_index, mirror_picks, status, created_at
`

type CreateDraftParams struct {
	ID          uuid.UUID
	LeagueID    uuid.UUID
	RaceID      uuid.UUID
	PickOrder   []uuid.UUID
	MirrorPicks bool
	CreatedAt   time.Time
}

func (q *Queries) CreateDraft(ctx context.Context, arg CreateDraftParams) (Draft, error) {
	row := q.db.QueryRowContext(ctx, createDraft,
		arg.ID,
		arg.LeagueID,
		arg.RaceID,
		pq.Array(arg.PickOrder),
		arg.MirrorPicks,
		arg.CreatedAt,
	)
	var i Draft
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.RaceID,
		pq.Array(&i.PickOrder),
		&i.CurrentPickIndex,
		&i.MirrorPicks,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const getDraft = `-- name: GetDraft :one
SELECT id, league_id, race_id, pick_order, current_pick_index, mirror_picks, status, created_at
FROM drafts
WHERE id = $1
`

func (q *Queries) GetDraft(ctx context.Context, id uuid.UUID) (Draft, error) {
	row := q.db.QueryRowContext(ctx, getDraft, id)
	var i Draft
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.RaceID,
		pq.Array(&i.PickOrder),
		&i.CurrentPickIndex,
		&i.MirrorPicks,
		&i.Status,
		&i.CreatedAt,
	)
	return i, err
}

const listDraftsByLeague = `-- name: ListDraftsByLeague :many
SELECT d.id, d.league_id, d.race_id, d.pick_order, d.current_pick_index, d.mirror_picks, d.status, d.created_at
FROM drafts d
JOIN races r ON r.id = d.race_id
WHERE d.league_id = $1
ORDER BY r.round
`

func (q *Queries) ListDraftsByLeague(ctx context.Context, leagueID uuid.UUID) ([]Draft, error) {
	rows, err := q.db.QueryContext(ctx, listDraftsByLeague, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Draft
	for rows.Next() {
		var i Draft
		if err := rows.Scan(
			&i.ID,
			&i.LeagueID,
			&i.RaceID,
			pq.Array(&i.PickOrder),
			&i.CurrentPickIndex,
			&i.MirrorPicks,
			&i.Status,
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

const listOpenDraftsBefore = `-- name: ListOpenDraftsBefore :many
SELECT d.id, d.league_id, d.race_id, d.pick_order, d.current_pick_index, d.mirror_picks, d.status, d.created_at,
       r.fp1_time, r.start_time
FROM drafts d
JOIN races r ON r.id = d.race_id
WHERE d.current_pick_index < cardinality(d.pick_order)
  AND r.start_time > $1
ORDER BY r.fp1_time, d.id
`

type ListOpenDraftsBeforeRow struct {
	ID               uuid.UUID
	LeagueID         uuid.UUID
	RaceID           uuid.UUID
	PickOrder        []uuid.UUID
	CurrentPickIndex int32
	MirrorPicks      bool
	Status           string
	CreatedAt        time.Time
	Fp1Time          time.Time
	StartTime        time.Time
}

func (q *Queries) ListOpenDraftsBefore(ctx context.Context, startTime time.Time) ([]ListOpenDraftsBeforeRow, error) {
	rows, err := q.db.QueryContext(ctx, listOpenDraftsBefore, startTime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListOpenDraftsBeforeRow
	for rows.Next() {
		var i ListOpenDraftsBeforeRow
		if err := rows.Scan(
			&i.ID,
			&i.LeagueID,
			&i.RaceID,
			pq.Array(&i.PickOrder),
			&i.CurrentPickIndex,
			&i.MirrorPicks,
			&i.Status,
			&i.CreatedAt,
			&i.Fp1Time,
			&i.StartTime,
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

const advancePickIndex = `-- name: AdvancePickIndex :one
UPDATE drafts
SET current_pick_index = GREATEST(current_pick_index, $1::int),
    status = CASE
        WHEN GREATEST(current_pick_index, $1::int) >= cardinality(pick_order) THEN 'complete'
        ELSE 'in_progress'
    END
WHERE id = $2
RETURNING current_pick_index
`

type AdvancePickIndexParams struct {
	Proposed int32
	ID       uuid.UUID
}

func (q *Queries) AdvancePickIndex(ctx context.Context, arg AdvancePickIndexParams) (int32, error) {
	row := q.db.QueryRowContext(ctx, advancePickIndex, arg.Proposed, arg.ID)
	var current_pick_index int32
	err := row.Scan(&current_pick_index)
	return current_pick_index, err
}

const rewindPickIndex = `-- name: RewindPickIndex :exec
UPDATE drafts
SET current_pick_index = $2,
    status = 'in_progress'
WHERE id = $1
`

type RewindPickIndexParams struct {
	ID               uuid.UUID
	CurrentPickIndex int32
}

func (q *Queries) RewindPickIndex(ctx context.Context, arg RewindPickIndexParams) error {
	_, err := q.db.ExecContext(ctx, rewindPickIndex, arg.ID, arg.CurrentPickIndex)
	return err
}
