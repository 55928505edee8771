// Package races is the season calendar: race times that anchor draft
// deadlines and the driver catalog drafted from.
package races

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// RacesRepository defines what the app layer needs from the repository
type RacesRepository interface {
	GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error)
	ListRacesBySeason(ctx context.Context, season int) ([]models.Race, error)
	ListDriversBySeason(ctx context.Context, season int) ([]models.Driver, error)
	DriverExists(ctx context.Context, season, driverID int) (bool, error)
	CountConstructors(ctx context.Context, season int) (int, error)
}

type App struct {
	repo RacesRepository
}

func NewApp(repo RacesRepository) *App {
	return &App{repo: repo}
}

func (a *App) GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: race_id is required", apperr.ErrBadRequest)
	}
	return a.repo.GetRace(ctx, id)
}

func (a *App) SeasonRaces(ctx context.Context, season int) ([]models.Race, error) {
	return a.repo.ListRacesBySeason(ctx, season)
}

// UpcomingRaces returns the races from fromRound on that start after now, in
// round order.
func (a *App) UpcomingRaces(ctx context.Context, season, fromRound int, now time.Time) ([]models.Race, error) {
	all, err := a.repo.ListRacesBySeason(ctx, season)
	if err != nil {
		return nil, err
	}
	var upcoming []models.Race
	for _, race := range all {
		if race.Round >= fromRound && race.StartTime.After(now) {
			upcoming = append(upcoming, race)
		}
	}
	return upcoming, nil
}

func (a *App) SeasonDrivers(ctx context.Context, season int) ([]models.Driver, error) {
	return a.repo.ListDriversBySeason(ctx, season)
}

func (a *App) DriverInSeason(ctx context.Context, season, driverID int) (bool, error) {
	return a.repo.DriverExists(ctx, season, driverID)
}

func (a *App) ConstructorCount(ctx context.Context, season int) (int, error) {
	return a.repo.CountConstructors(ctx, season)
}
