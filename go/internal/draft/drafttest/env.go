// Package drafttest builds in-memory leagues, calendars and drafts for tests.
package drafttest

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/draft/deadline"
	"github.com/mcdev12/gridpick/go/internal/draft/draft"
	"github.com/mcdev12/gridpick/go/internal/draft/notify"
	"github.com/mcdev12/gridpick/go/internal/draft/order"
	"github.com/mcdev12/gridpick/go/internal/leagues"
	"github.com/mcdev12/gridpick/go/internal/memstore"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/mcdev12/gridpick/go/internal/races"
	"github.com/stretchr/testify/require"
)

const Season = 2026

// Start is the fake clock's initial time, well before the first race.
var Start = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// Recorder is a Notifier that keeps every turn it is sent.
type Recorder struct {
	mu    sync.Mutex
	turns []notify.Turn
}

func (r *Recorder) NotifyTurn(ctx context.Context, turn notify.Turn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = append(r.turns, turn)
	return nil
}

func (r *Recorder) Turns() []notify.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Turn(nil), r.turns...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.turns = nil
}

// Env is a wired set of apps over one memstore.
type Env struct {
	Store    *memstore.Store
	Clock    *clockwork.FakeClock
	Leagues  *leagues.App
	Races    *races.App
	Drafts   *draft.App
	Notifier *Recorder
	Calendar []models.Race
}

// NewEnv seeds a three-race calendar and a ten-driver, five-constructor
// catalog for Season.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	store := memstore.New()
	clock := clockwork.NewFakeClockAt(Start)
	recorder := &Recorder{}

	var calendar []models.Race
	for round := 1; round <= 3; round++ {
		fp1 := time.Date(2026, time.March, 6+7*round, 11, 30, 0, 0, time.UTC)
		race := models.Race{
			ID:        uuid.New(),
			Season:    Season,
			Round:     round,
			Name:      fmt.Sprintf("Round %d", round),
			FP1Time:   fp1,
			StartTime: fp1.Add(50 * time.Hour),
		}
		store.PutRace(race)
		calendar = append(calendar, race)
	}

	drivers := make([]models.Driver, 0, 10)
	for id := 1; id <= 10; id++ {
		drivers = append(drivers, models.Driver{
			ID:          id,
			Code:        fmt.Sprintf("D%02d", id),
			Name:        fmt.Sprintf("Driver %d", id),
			Constructor: fmt.Sprintf("Constructor %d", (id+1)/2),
		})
	}
	store.PutDrivers(Season, drivers)

	raceApp := races.NewApp(store)
	leagueApp := leagues.NewApp(store, raceApp, clock)
	builder := order.NewBuilderWithSource(rand.NewSource(1))
	draftApp := draft.NewApp(store, leagueApp, raceApp, builder, recorder, clock, deadline.DefaultFirstHalfLead)

	return &Env{
		Store:    store,
		Clock:    clock,
		Leagues:  leagueApp,
		Races:    raceApp,
		Drafts:   draftApp,
		Notifier: recorder,
		Calendar: calendar,
	}
}

// LeagueOptions toggles league features.
type LeagueOptions struct {
	Teams  bool
	Bans   bool
	Mirror bool
}

// League creates a pending league owned by the first of n fresh users and
// seats the rest. The returned ids are in join order.
func (e *Env) League(t *testing.T, n int, opts LeagueOptions) (*models.League, []uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	users := make([]uuid.UUID, n)
	for i := range users {
		users[i] = uuid.New()
	}
	league, err := e.Leagues.CreateLeague(ctx, leagues.CreateLeagueRequest{
		OwnerID:          users[0],
		Name:             "Test League",
		Season:           Season,
		TeamsEnabled:     opts.Teams,
		BansEnabled:      opts.Bans,
		MirrorEnabled:    opts.Mirror,
		MaxPlayers:       max(n, 2),
		InitialRaceRound: 1,
	})
	require.NoError(t, err)
	for _, userID := range users[1:] {
		_, err := e.Leagues.AddMember(ctx, league.ID, userID)
		require.NoError(t, err)
	}
	return league, users
}

// FixOrder pins the pick order to users as given.
func (e *Env) FixOrder(t *testing.T, league *models.League, users []uuid.UUID) {
	t.Helper()
	for i, userID := range users {
		rank := i + 1
		require.NoError(t, e.Leagues.SetPickOrderRank(context.Background(), league.ID, league.OwnerID, userID, &rank))
	}
}

// Team creates a team and assigns members to it.
func (e *Env) Team(t *testing.T, league *models.League, name string, members ...uuid.UUID) *models.Team {
	t.Helper()
	ctx := context.Background()
	team, err := e.Leagues.CreateTeam(ctx, leagues.CreateTeamRequest{
		LeagueID:    league.ID,
		RequesterID: league.OwnerID,
		Name:        name,
		Size:        len(members),
	})
	require.NoError(t, err)
	for _, userID := range members {
		require.NoError(t, e.Leagues.AssignTeamMember(ctx, team.ID, league.OwnerID, userID))
	}
	return team
}

// Activate activates the league and returns the first race's draft.
func (e *Env) Activate(t *testing.T, league *models.League) *models.Draft {
	t.Helper()
	result, err := e.Drafts.ActivateDraft(context.Background(), league.ID, league.OwnerID)
	require.NoError(t, err)
	require.NotEmpty(t, result.Drafts)
	return &result.Drafts[0]
}

// FirstRace is the race the first draft belongs to.
func (e *Env) FirstRace() models.Race {
	return e.Calendar[0]
}
