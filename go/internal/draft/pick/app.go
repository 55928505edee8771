// Package pick is the pick and ban state machine for a race draft.
package pick

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/deadline"
	"github.com/mcdev12/gridpick/go/internal/draft/notify"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Membership is the league data the state machine reads
type Membership interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	TeamOf(ctx context.Context, leagueID, userID uuid.UUID) (uuid.UUID, bool, error)
	IsMember(ctx context.Context, leagueID, userID uuid.UUID) (bool, error)
}

// Calendar is the race and driver data the state machine reads
type Calendar interface {
	GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error)
	DriverInSeason(ctx context.Context, season, driverID int) (bool, error)
}

// App handles pick and ban business logic
type App struct {
	store    repository.Store
	members  Membership
	calendar Calendar
	notifier notify.Notifier
	clock    clockwork.Clock
	config   Config
}

// NewApp creates a new pick App
func NewApp(store repository.Store, members Membership, calendar Calendar, notifier notify.Notifier, clock clockwork.Clock, config Config) *App {
	return &App{
		store:    store,
		members:  members,
		calendar: calendar,
		notifier: notifier,
		clock:    clock,
		config:   config,
	}
}

// MakePick records the driver for the draft's current turn and advances it.
func (a *App) MakePick(ctx context.Context, req MakePickRequest) (*DraftState, error) {
	if err := validateMakePickRequest(req); err != nil {
		return nil, err
	}

	draft, league, race, err := a.load(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}

	var (
		picked   *models.Pick
		turnUser uuid.UUID
	)
	err = a.store.WithTx(ctx, func(tx repository.Store) error {
		d, err := tx.GetDraft(ctx, req.DraftID)
		if err != nil {
			return err
		}
		if d.IsComplete() {
			return fmt.Errorf("%w: draft is complete", apperr.ErrBadRequest)
		}

		idx := d.CurrentPickIndex
		turnUser = d.TurnUser(idx)
		mirror := d.IsMirrorSlot(idx)

		if err := a.authorizePick(ctx, league, race, d, req.RequesterID, turnUser); err != nil {
			return err
		}
		if err := a.checkDriverAvailable(ctx, tx, league, d.ID, turnUser, req.DriverID); err != nil {
			return err
		}

		has, err := tx.HasActivePick(ctx, d.ID, turnUser, mirror)
		if err != nil {
			return err
		}
		if has {
			return fmt.Errorf("%w: turn already picked", apperr.ErrConflict)
		}

		picked, err = tx.CreatePick(ctx, models.Pick{
			ID:           uuid.New(),
			DraftID:      d.ID,
			UserID:       turnUser,
			DriverID:     req.DriverID,
			IsMirrorPick: mirror,
			PickedAt:     a.clock.Now(),
		})
		if err != nil {
			return err
		}

		// After a ban rewinds the cursor, the slots past the refilled one
		// still hold their picks and are skipped.
		next, err := nextOpenSlot(ctx, tx, d, idx+1)
		if err != nil {
			return err
		}
		d.CurrentPickIndex, err = tx.AdvancePickIndex(ctx, d.ID, next)
		if err != nil {
			return err
		}
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("user_id", turnUser.String()).
		Str("requester_id", req.RequesterID.String()).
		Int("driver_id", req.DriverID).
		Int("pick_index", draft.CurrentPickIndex).
		Msg("pick made")

	if next := draft.TurnUser(draft.CurrentPickIndex); next != uuid.Nil && next != turnUser {
		a.notifyTurn(ctx, draft, race, picked.ID)
	}
	return a.state(ctx, draft, race)
}

// BanPick voids the target's active pick of a driver and hands the turn back
// to the banned slot.
func (a *App) BanPick(ctx context.Context, req BanPickRequest) (*DraftState, error) {
	if err := validateBanPickRequest(req); err != nil {
		return nil, err
	}

	draft, league, race, err := a.load(ctx, req.DraftID)
	if err != nil {
		return nil, err
	}
	if !league.BansEnabled {
		return nil, fmt.Errorf("%w: bans are disabled for this league", apperr.ErrBadRequest)
	}

	var (
		banned    *models.Pick
		remaining int
	)
	err = a.store.WithTx(ctx, func(tx repository.Store) error {
		d, err := tx.GetDraft(ctx, req.DraftID)
		if err != nil {
			return err
		}
		if d.IsComplete() {
			return fmt.Errorf("%w: draft is complete", apperr.ErrBadRequest)
		}

		requesterSlots := d.SlotsOf(req.RequesterID)
		if len(requesterSlots) == 0 || len(d.SlotsOf(req.TargetUserID)) == 0 {
			return fmt.Errorf("%w: requester and target must both be in the pick order", apperr.ErrBadRequest)
		}
		if lastSlotProtected(d, req.TargetUserID) {
			return fmt.Errorf("%w: the last pick of the order cannot be banned", apperr.ErrForbidden)
		}

		already, err := tx.HasBanAgainst(ctx, d.ID, req.RequesterID, req.TargetUserID)
		if err != nil {
			return err
		}
		if already {
			return fmt.Errorf("%w: already banned this user in this draft", apperr.ErrForbidden)
		}

		pick, err := tx.GetActivePickByDriver(ctx, d.ID, req.DriverID)
		if err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		if pick == nil || pick.UserID != req.TargetUserID {
			return fmt.Errorf("%w: target has no active pick of driver %d", apperr.ErrNotFound, req.DriverID)
		}

		targetIndex := d.SlotOf(req.TargetUserID, pick.IsMirrorPick)
		teammates, err := a.sameTeam(ctx, league, req.RequesterID, req.TargetUserID)
		if err != nil {
			return err
		}
		if !canBan(requesterSlots, targetIndex, teammates) {
			return fmt.Errorf("%w: only the pick directly before yours can be banned", apperr.ErrForbidden)
		}

		scope, err := a.resolveScope(ctx, league, req.RequesterID)
		if err != nil {
			return err
		}
		remaining, err = tx.ConsumeBanCredit(ctx, d.ID, scope.id, scope.team, scope.initial)
		if errors.Is(err, repository.ErrNoBanCredit) {
			return fmt.Errorf("%w: no bans remaining", apperr.ErrBadRequest)
		}
		if err != nil {
			return err
		}

		if err := tx.BanPick(ctx, pick.ID, req.RequesterID, a.clock.Now()); err != nil {
			return err
		}
		if err := tx.RewindPickIndex(ctx, d.ID, targetIndex); err != nil {
			return err
		}
		d.CurrentPickIndex = targetIndex
		banned = pick
		draft = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("draft_id", draft.ID.String()).
		Str("requester_id", req.RequesterID.String()).
		Str("target_user_id", req.TargetUserID.String()).
		Int("driver_id", req.DriverID).
		Int("pick_index", draft.CurrentPickIndex).
		Int("bans_remaining", remaining).
		Msg("pick banned")

	a.notifyTurn(ctx, draft, race, banned.ID)
	return a.state(ctx, draft, race)
}

// GetDraftState returns the current view of a draft.
func (a *App) GetDraftState(ctx context.Context, draftID uuid.UUID) (*DraftState, error) {
	if draftID == uuid.Nil {
		return nil, fmt.Errorf("%w: draft_id is required", apperr.ErrBadRequest)
	}
	draft, _, race, err := a.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return a.state(ctx, draft, race)
}

// ListPicks returns every pick of a draft, banned ones included.
func (a *App) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	if _, err := a.store.GetDraft(ctx, draftID); err != nil {
		return nil, err
	}
	return a.store.ListPicks(ctx, draftID)
}

// BanCredit returns the pool a requester's bans are charged to. A pool that
// has not been touched yet reports its starting credit.
func (a *App) BanCredit(ctx context.Context, draftID, requesterID uuid.UUID) (*models.BanCredit, error) {
	_, league, _, err := a.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	scope, err := a.resolveScope(ctx, league, requesterID)
	if err != nil {
		return nil, err
	}
	credit, err := a.store.GetBanCredit(ctx, draftID, scope.id)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.BanCredit{
			DraftID:       draftID,
			ScopeID:       scope.id,
			IsTeamScope:   scope.team,
			BansRemaining: scope.initial,
		}, nil
	}
	return credit, err
}

func (a *App) load(ctx context.Context, draftID uuid.UUID) (*models.Draft, *models.League, *models.Race, error) {
	draft, err := a.store.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, nil, err
	}
	league, err := a.members.GetLeague(ctx, draft.LeagueID)
	if err != nil {
		return nil, nil, nil, err
	}
	race, err := a.calendar.GetRace(ctx, draft.RaceID)
	if err != nil {
		return nil, nil, nil, err
	}
	return draft, league, race, nil
}

// authorizePick lets the turn holder pick, or a teammate once the second-half
// deadline is within the stand-in window.
func (a *App) authorizePick(ctx context.Context, league *models.League, race *models.Race, draft *models.Draft, requesterID, turnUser uuid.UUID) error {
	if requesterID == turnUser {
		return nil
	}
	deadlines := deadline.Compute(race.FP1Time, len(draft.PickOrder), a.config.FirstHalfLead)
	if league.TeamsEnabled && deadlines.InStandInWindow(a.clock.Now(), a.config.StandInWindow) {
		teammates, err := a.sameTeam(ctx, league, requesterID, turnUser)
		if err != nil {
			return err
		}
		if teammates {
			return nil
		}
	}
	return fmt.Errorf("%w: not your turn", apperr.ErrForbidden)
}

func (a *App) checkDriverAvailable(ctx context.Context, tx repository.Store, league *models.League, draftID, turnUser uuid.UUID, driverID int) error {
	ok, err := a.calendar.DriverInSeason(ctx, league.Season, driverID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: driver %d is not in the %d season", apperr.ErrBadRequest, driverID, league.Season)
	}

	banned, err := tx.ListBannedDrivers(ctx, draftID, turnUser)
	if err != nil {
		return err
	}
	if slices.Contains(banned, driverID) {
		return fmt.Errorf("%w: driver %d is banned for this turn", apperr.ErrBadRequest, driverID)
	}

	_, err = tx.GetActivePickByDriver(ctx, draftID, driverID)
	if err == nil {
		return fmt.Errorf("%w: driver %d already picked", apperr.ErrConflict, driverID)
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}

// nextOpenSlot returns the first index at or after from whose turn has no
// active pick. Slots after a rewound ban are usually still filled.
func nextOpenSlot(ctx context.Context, tx repository.Store, draft *models.Draft, from int) (int, error) {
	for i := from; i < len(draft.PickOrder); i++ {
		has, err := tx.HasActivePick(ctx, draft.ID, draft.PickOrder[i], draft.IsMirrorSlot(i))
		if err != nil {
			return 0, err
		}
		if !has {
			return i, nil
		}
	}
	return len(draft.PickOrder), nil
}

func (a *App) state(ctx context.Context, draft *models.Draft, race *models.Race) (*DraftState, error) {
	picks, err := a.store.ListPicks(ctx, draft.ID)
	if err != nil {
		return nil, err
	}
	return buildState(draft, race, picks, a.config.FirstHalfLead), nil
}

func buildState(draft *models.Draft, race *models.Race, picks []models.Pick, lead time.Duration) *DraftState {
	state := &DraftState{
		DraftID:          draft.ID,
		CurrentPickIndex: draft.CurrentPickIndex,
		Complete:         draft.IsComplete(),
		PickedDrivers:    []int{},
		BannedDrivers:    []int{},
	}
	for _, p := range picks {
		if p.IsActive() {
			state.PickedDrivers = append(state.PickedDrivers, p.DriverID)
		} else if !slices.Contains(state.BannedDrivers, p.DriverID) {
			state.BannedDrivers = append(state.BannedDrivers, p.DriverID)
		}
	}
	slices.Sort(state.BannedDrivers)

	if !state.Complete {
		next := draft.TurnUser(draft.CurrentPickIndex)
		due := deadline.Compute(race.FP1Time, len(draft.PickOrder), lead).For(draft.CurrentPickIndex)
		state.NextUserID = &next
		state.NextDeadline = &due
	}
	return state
}

func (a *App) notifyTurn(ctx context.Context, draft *models.Draft, race *models.Race, cause uuid.UUID) {
	idx := draft.CurrentPickIndex
	notify.Send(ctx, a.notifier, notify.Turn{
		DraftID:   draft.ID,
		LeagueID:  draft.LeagueID,
		RaceID:    draft.RaceID,
		UserID:    draft.TurnUser(idx),
		PickIndex: idx,
		Deadline:  deadline.Compute(race.FP1Time, len(draft.PickOrder), a.config.FirstHalfLead).For(idx),
		Cause:     cause,
	})
}

func validateMakePickRequest(req MakePickRequest) error {
	if req.DraftID == uuid.Nil {
		return fmt.Errorf("%w: draft_id is required", apperr.ErrBadRequest)
	}
	if req.RequesterID == uuid.Nil {
		return fmt.Errorf("%w: requester is required", apperr.ErrBadRequest)
	}
	if req.DriverID <= 0 {
		return fmt.Errorf("%w: driver_id must be positive", apperr.ErrBadRequest)
	}
	return nil
}

func validateBanPickRequest(req BanPickRequest) error {
	if req.DraftID == uuid.Nil {
		return fmt.Errorf("%w: draft_id is required", apperr.ErrBadRequest)
	}
	if req.RequesterID == uuid.Nil || req.TargetUserID == uuid.Nil {
		return fmt.Errorf("%w: requester and target_user_id are required", apperr.ErrBadRequest)
	}
	if req.DriverID <= 0 {
		return fmt.Errorf("%w: driver_id must be positive", apperr.ErrBadRequest)
	}
	return nil
}
