package db

import (
	"context"

	"github.com/google/uuid"
)

const getRace = `-- name: GetRace :one
SELECT id, season, round, name, fp1_time, start_time
FROM races
WHERE id = $1
`

func (q *Queries) GetRace(ctx context.Context, id uuid.UUID) (Race, error) {
	row := q.db.QueryRowContext(ctx, getRace, id)
	var i Race
	err := row.Scan(
		&i.ID,
		&i.Season,
		&i.Round,
		&i.Name,
		&i.Fp1Time,
		&i.StartTime,
	)
	return i, err
}

const listRacesBySeason = `-- name: ListRacesBySeason :many
SELECT id, season, round, name, fp1_time, start_time
FROM races
WHERE season = $1
ORDER BY round
`

func (q *Queries) ListRacesBySeason(ctx context.Context, season int32) ([]Race, error) {
	rows, err := q.db.QueryContext(ctx, listRacesBySeason, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Race
	for rows.Next() {
		var i Race
		if err := rows.Scan(
			&i.ID,
			&i.Season,
			&i.Round,
			&i.Name,
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

const listDriversBySeason = `-- name: ListDriversBySeason :many
SELECT id, season, code, name, constructor
FROM drivers
WHERE season = $1
ORDER BY id
`

func (q *Queries) ListDriversBySeason(ctx context.Context, season int32) ([]Driver, error) {
	rows, err := q.db.QueryContext(ctx, listDriversBySeason, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Driver
	for rows.Next() {
		var i Driver
		if err := rows.Scan(
			&i.ID,
			&i.Season,
			&i.Code,
			&i.Name,
			&i.Constructor,
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

const driverExists = `-- name: DriverExists :one
SELECT EXISTS (
    SELECT 1 FROM drivers WHERE season = $1 AND id = $2
)
`

type DriverExistsParams struct {
	Season int32
	ID     int32
}

func (q *Queries) DriverExists(ctx context.Context, arg DriverExistsParams) (bool, error) {
	row := q.db.QueryRowContext(ctx, driverExists, arg.Season, arg.ID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const countConstructors = `-- name: CountConstructors :one
SELECT COUNT(DISTINCT constructor)
FROM drivers
WHERE season = $1
`

func (q *Queries) CountConstructors(ctx context.Context, season int32) (int64, error) {
	row := q.db.QueryRowContext(ctx, countConstructors, season)
	var count int64
	err := row.Scan(&count)
	return count, err
}
