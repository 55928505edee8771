package races

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/mcdev12/gridpick/go/internal/races/db"
	"github.com/mcdev12/gridpick/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	GetRace(ctx context.Context, id uuid.UUID) (db.Race, error)
	ListRacesBySeason(ctx context.Context, season int32) ([]db.Race, error)
	ListDriversBySeason(ctx context.Context, season int32) ([]db.Driver, error)
	DriverExists(ctx context.Context, arg db.DriverExistsParams) (bool, error)
	CountConstructors(ctx context.Context, season int32) (int64, error)
}

// Repository implements calendar data access over Postgres
type Repository struct {
	queries Querier
}

func NewRepository(querier Querier) *Repository {
	return &Repository{queries: querier}
}

func (r *Repository) GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	race, err := r.queries.GetRace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get race: %w", sqlutil.Classify(err))
	}
	return dbRaceToModel(race), nil
}

func (r *Repository) ListRacesBySeason(ctx context.Context, season int) ([]models.Race, error) {
	rows, err := r.queries.ListRacesBySeason(ctx, int32(season))
	if err != nil {
		return nil, fmt.Errorf("failed to list races: %w", err)
	}
	out := make([]models.Race, len(rows))
	for i, row := range rows {
		out[i] = *dbRaceToModel(row)
	}
	return out, nil
}

func (r *Repository) ListDriversBySeason(ctx context.Context, season int) ([]models.Driver, error) {
	rows, err := r.queries.ListDriversBySeason(ctx, int32(season))
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	out := make([]models.Driver, len(rows))
	for i, row := range rows {
		out[i] = models.Driver{
			ID:          int(row.ID),
			Season:      int(row.Season),
			Code:        row.Code,
			Name:        row.Name,
			Constructor: row.Constructor,
		}
	}
	return out, nil
}

func (r *Repository) DriverExists(ctx context.Context, season, driverID int) (bool, error) {
	ok, err := r.queries.DriverExists(ctx, db.DriverExistsParams{Season: int32(season), ID: int32(driverID)})
	if err != nil {
		return false, fmt.Errorf("failed to check driver: %w", err)
	}
	return ok, nil
}

func (r *Repository) CountConstructors(ctx context.Context, season int) (int, error) {
	n, err := r.queries.CountConstructors(ctx, int32(season))
	if err != nil {
		return 0, fmt.Errorf("failed to count constructors: %w", err)
	}
	return int(n), nil
}

func dbRaceToModel(r db.Race) *models.Race {
	return &models.Race{
		ID:        r.ID,
		Season:    int(r.Season),
		Round:     int(r.Round),
		Name:      r.Name,
		FP1Time:   r.Fp1Time,
		StartTime: r.StartTime,
	}
}
