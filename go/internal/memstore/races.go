package memstore

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// PutRace adds or replaces a calendar entry.
func (s *Store) PutRace(race models.Race) {
	defer s.lock()()
	s.data.races[race.ID] = race
}

// PutDrivers replaces a season's driver catalog.
func (s *Store) PutDrivers(season int, drivers []models.Driver) {
	defer s.lock()()
	catalog := slices.Clone(drivers)
	for i := range catalog {
		catalog[i].Season = season
	}
	slices.SortFunc(catalog, func(a, b models.Driver) int { return a.ID - b.ID })
	s.data.drivers[season] = catalog
}

func (s *Store) GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	race, ok := s.data.races[id]
	if !ok {
		return nil, notFound("race")
	}
	return &race, nil
}

func (s *Store) ListRacesBySeason(ctx context.Context, season int) ([]models.Race, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var races []models.Race
	for _, r := range s.data.races {
		if r.Season == season {
			races = append(races, r)
		}
	}
	slices.SortFunc(races, func(a, b models.Race) int { return a.Round - b.Round })
	return races, nil
}

func (s *Store) ListDriversBySeason(ctx context.Context, season int) ([]models.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.drivers[season]), nil
}

func (s *Store) DriverExists(ctx context.Context, season, driverID int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.data.drivers[season] {
		if d.ID == driverID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountConstructors(ctx context.Context, season int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, d := range s.data.drivers[season] {
		seen[d.Constructor] = struct{}{}
	}
	return len(seen), nil
}
