// Package draft activates a league's season drafts and answers read queries
// about their order and deadlines.
package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/deadline"
	"github.com/mcdev12/gridpick/go/internal/draft/notify"
	"github.com/mcdev12/gridpick/go/internal/draft/order"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/draft/teambalance"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/rs/zerolog/log"
)

// Membership is the league data activation reads
type Membership interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	MembersOf(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error)
	TeamsOf(ctx context.Context, leagueID uuid.UUID) ([]models.TeamRoster, error)
}

// Calendar is the season data activation reads
type Calendar interface {
	GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error)
	UpcomingRaces(ctx context.Context, season, fromRound int, now time.Time) ([]models.Race, error)
	ConstructorCount(ctx context.Context, season int) (int, error)
}

// App handles draft business logic
type App struct {
	store         repository.Store
	members       Membership
	calendar      Calendar
	builder       *order.Builder
	notifier      notify.Notifier
	clock         clockwork.Clock
	firstHalfLead time.Duration
}

// NewApp creates a new draft App
func NewApp(store repository.Store, members Membership, calendar Calendar, builder *order.Builder, notifier notify.Notifier, clock clockwork.Clock, firstHalfLead time.Duration) *App {
	return &App{
		store:         store,
		members:       members,
		calendar:      calendar,
		builder:       builder,
		notifier:      notifier,
		clock:         clock,
		firstHalfLead: firstHalfLead,
	}
}

// ActivateDraft freezes the league's pick order and creates a draft for every
// remaining race of the season from the league's initial round on. The
// league moves to active exactly once.
func (a *App) ActivateDraft(ctx context.Context, leagueID, requesterID uuid.UUID) (*ActivateResult, error) {
	league, err := a.members.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if league.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the league owner can activate the draft", apperr.ErrForbidden)
	}
	if !league.IsPending() {
		return nil, fmt.Errorf("%w: league draft has already been activated", apperr.ErrBadRequest)
	}

	members, err := a.members.MembersOf(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if len(members) < 2 {
		return nil, fmt.Errorf("%w: a draft needs at least 2 members", apperr.ErrBadRequest)
	}

	var rosters []models.TeamRoster
	if league.TeamsEnabled {
		rosters, err = a.members.TeamsOf(ctx, leagueID)
		if err != nil {
			return nil, err
		}
		if err := a.checkTeams(ctx, league, members, rosters); err != nil {
			return nil, err
		}
	}

	races, err := a.calendar.UpcomingRaces(ctx, league.Season, league.InitialRaceRound, a.clock.Now())
	if err != nil {
		return nil, err
	}
	if len(races) == 0 {
		return nil, fmt.Errorf("%w: no upcoming races from round %d", apperr.ErrBadRequest, league.InitialRaceRound)
	}

	base := a.builder.Build(members, rosters)
	now := a.clock.Now()
	drafts := make([]models.Draft, 0, len(races))
	err = a.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.ActivateLeague(ctx, leagueID); err != nil {
			return err
		}
		for k, race := range races {
			d, err := tx.CreateDraft(ctx, models.Draft{
				ID:          uuid.New(),
				LeagueID:    leagueID,
				RaceID:      race.ID,
				PickOrder:   order.ForRace(base, k, league.MirrorEnabled),
				MirrorPicks: league.MirrorEnabled,
				CreatedAt:   now,
			})
			if err != nil {
				return err
			}
			drafts = append(drafts, *d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	league.Status = models.LeagueStatusActive

	log.Info().
		Str("league_id", leagueID.String()).
		Int("members", len(members)).
		Int("drafts", len(drafts)).
		Bool("mirror", league.MirrorEnabled).
		Msg("league draft activated")

	for i := range drafts {
		d := &drafts[i]
		deadlines := deadline.Compute(races[i].FP1Time, len(d.PickOrder), a.firstHalfLead)
		notify.Send(ctx, a.notifier, notify.Turn{
			DraftID:   d.ID,
			LeagueID:  d.LeagueID,
			RaceID:    d.RaceID,
			UserID:    d.TurnUser(0),
			PickIndex: 0,
			Deadline:  deadlines.For(0),
		})
	}

	return &ActivateResult{League: league, Drafts: drafts}, nil
}

// checkTeams requires every member on a team and the resulting team sizes to
// form a balanced split.
func (a *App) checkTeams(ctx context.Context, league *models.League, members []models.Member, rosters []models.TeamRoster) error {
	assigned := make(map[uuid.UUID]bool, len(members))
	sizes := make([]int, 0, len(rosters))
	for _, roster := range rosters {
		for _, userID := range roster.Members {
			assigned[userID] = true
		}
		sizes = append(sizes, len(roster.Members))
	}
	for _, m := range members {
		if !assigned[m.UserID] {
			return fmt.Errorf("%w: member %s is not on a team", apperr.ErrBadRequest, m.UserID)
		}
	}

	constructors, err := a.calendar.ConstructorCount(ctx, league.Season)
	if err != nil {
		return err
	}
	return teambalance.Validate(len(members), constructors, sizes)
}

// GetDraft retrieves a draft by ID
func (a *App) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("%w: draft_id is required", apperr.ErrBadRequest)
	}
	return a.store.GetDraft(ctx, id)
}

// ListLeagueDrafts returns a league's drafts in race order
func (a *App) ListLeagueDrafts(ctx context.Context, leagueID uuid.UUID) ([]models.Draft, error) {
	return a.store.ListDraftsByLeague(ctx, leagueID)
}

// GetPickOrder returns the frozen order of a draft with each slot's deadline.
func (a *App) GetPickOrder(ctx context.Context, draftID uuid.UUID) (*PickOrder, error) {
	d, race, err := a.draftWithRace(ctx, draftID)
	if err != nil {
		return nil, err
	}
	deadlines := deadline.Compute(race.FP1Time, len(d.PickOrder), a.firstHalfLead)
	slots := make([]Slot, len(d.PickOrder))
	for i, userID := range d.PickOrder {
		slots[i] = Slot{
			Index:    i,
			UserID:   userID,
			IsMirror: d.IsMirrorSlot(i),
			Deadline: deadlines.For(i),
		}
	}
	return &PickOrder{
		DraftID:          d.ID,
		Order:            d.PickOrder,
		Slots:            slots,
		CurrentPickIndex: d.CurrentPickIndex,
		MirrorPicks:      d.MirrorPicks,
	}, nil
}

// GetDeadlines returns a draft's deadlines and the one the current turn is
// held to, if any turn is left.
func (a *App) GetDeadlines(ctx context.Context, draftID uuid.UUID) (*Deadlines, error) {
	d, race, err := a.draftWithRace(ctx, draftID)
	if err != nil {
		return nil, err
	}
	deadlines := deadline.Compute(race.FP1Time, len(d.PickOrder), a.firstHalfLead)
	out := &Deadlines{
		DraftID:    d.ID,
		FirstHalf:  deadlines.FirstHalf,
		SecondHalf: deadlines.SecondHalf,
		Threshold:  deadlines.Threshold,
	}
	if !d.IsComplete() {
		current := deadlines.For(d.CurrentPickIndex)
		out.Current = &current
	}
	return out, nil
}

func (a *App) draftWithRace(ctx context.Context, draftID uuid.UUID) (*models.Draft, *models.Race, error) {
	d, err := a.GetDraft(ctx, draftID)
	if err != nil {
		return nil, nil, err
	}
	race, err := a.calendar.GetRace(ctx, d.RaceID)
	if err != nil {
		return nil, nil, err
	}
	return d, race, nil
}
