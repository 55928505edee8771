package pick

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/rs/zerolog/log"
)

// UpsertAutopickPreference replaces a member's fallback driver order for the
// league. An empty list clears it.
func (a *App) UpsertAutopickPreference(ctx context.Context, req UpsertAutopickRequest) (*models.AutopickPreference, error) {
	if req.LeagueID == uuid.Nil || req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: league_id and user are required", apperr.ErrBadRequest)
	}

	league, err := a.members.GetLeague(ctx, req.LeagueID)
	if err != nil {
		return nil, err
	}
	member, err := a.members.IsMember(ctx, req.LeagueID, req.UserID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, fmt.Errorf("%w: not a member of this league", apperr.ErrForbidden)
	}

	seen := make(map[int]struct{}, len(req.DriverIDs))
	for _, id := range req.DriverIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: driver %d listed twice", apperr.ErrBadRequest, id)
		}
		seen[id] = struct{}{}
		ok, err := a.calendar.DriverInSeason(ctx, league.Season, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: driver %d is not in the %d season", apperr.ErrBadRequest, id, league.Season)
		}
	}

	pref, err := a.store.UpsertAutopickPreference(ctx, models.AutopickPreference{
		LeagueID:  req.LeagueID,
		UserID:    req.UserID,
		DriverIDs: req.DriverIDs,
		UpdatedAt: a.clock.Now(),
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("user_id", req.UserID.String()).
		Int("drivers", len(req.DriverIDs)).
		Msg("autopick preference updated")
	return pref, nil
}

// GetAutopickPreference returns the member's driver order, empty if never set.
func (a *App) GetAutopickPreference(ctx context.Context, leagueID, userID uuid.UUID) (*models.AutopickPreference, error) {
	pref, err := a.store.GetAutopickPreference(ctx, leagueID, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.AutopickPreference{LeagueID: leagueID, UserID: userID, DriverIDs: []int{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return pref, nil
}
