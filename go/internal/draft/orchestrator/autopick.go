package orchestrator

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/models"
)

type AutoPickStrategy interface {
	// Autopick fills the (user, mirror) turn of draft and returns the pick,
	// or nil when nothing could be picked.
	Autopick(ctx context.Context, store repository.Store, draft *models.Draft, userID uuid.UUID, mirror bool) (*models.Pick, error)
}

// PreferenceStrategy picks the first available driver from the user's
// autopick preference list.
type PreferenceStrategy struct {
	clock clockwork.Clock
}

func NewPreferenceStrategy(clock clockwork.Clock) *PreferenceStrategy {
	return &PreferenceStrategy{clock: clock}
}

func (s *PreferenceStrategy) Autopick(ctx context.Context, store repository.Store, draft *models.Draft, userID uuid.UUID, mirror bool) (*models.Pick, error) {
	pref, err := store.GetAutopickPreference(ctx, draft.LeagueID, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(pref.DriverIDs) == 0 {
		return nil, nil
	}

	banned, err := store.ListBannedDrivers(ctx, draft.ID, userID)
	if err != nil {
		return nil, err
	}
	active, err := store.ListActivePicks(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	taken := make(map[int]bool, len(active))
	for _, p := range active {
		taken[p.DriverID] = true
	}

	for _, driverID := range pref.DriverIDs {
		if taken[driverID] || slices.Contains(banned, driverID) {
			continue
		}

		picked, err := store.CreatePick(ctx, models.Pick{
			ID:           uuid.New(),
			DraftID:      draft.ID,
			UserID:       userID,
			DriverID:     driverID,
			IsMirrorPick: mirror,
			IsAutopick:   true,
			PickedAt:     s.clock.Now(),
		})
		if err == nil {
			return picked, nil
		}
		if !errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}

		// lost a race: either the slot was filled or the driver was taken
		filled, err := store.HasActivePick(ctx, draft.ID, userID, mirror)
		if err != nil {
			return nil, err
		}
		if filled {
			return nil, nil
		}
	}
	return nil, nil
}
