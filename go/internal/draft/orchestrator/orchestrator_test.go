package orchestrator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/drafttest"
	"github.com/mcdev12/gridpick/go/internal/draft/orchestrator"
	"github.com/mcdev12/gridpick/go/internal/draft/pick"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSweeper(env *drafttest.Env, metrics orchestrator.MetricsCollector) *orchestrator.Orchestrator {
	return orchestrator.NewOrchestrator(
		env.Store,
		orchestrator.NewPreferenceStrategy(env.Clock),
		env.Notifier,
		env.Clock,
		metrics,
		orchestrator.DefaultConfig(),
	)
}

// advanceTo moves the fake clock forward to at.
func advanceTo(env *drafttest.Env, at time.Time) {
	env.Clock.Advance(at.Sub(env.Clock.Now()))
}

func setPreference(t *testing.T, env *drafttest.Env, leagueID, userID uuid.UUID, driverIDs ...int) {
	t.Helper()
	_, err := env.Store.UpsertAutopickPreference(context.Background(), models.AutopickPreference{
		LeagueID:  leagueID,
		UserID:    userID,
		DriverIDs: driverIDs,
		UpdatedAt: env.Clock.Now(),
	})
	require.NoError(t, err)
}

func TestThreePlayerDraft(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	a, b, c := users[0], users[1], users[2]
	picks := pick.NewApp(env.Store, env.Leagues, env.Races, env.Notifier, env.Clock, pick.DefaultConfig())
	sweeper := newSweeper(env, nil)
	race := env.FirstRace()
	ctx := context.Background()

	setPreference(t, env, league.ID, c)

	state, err := picks.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: a, DriverID: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, state.CurrentPickIndex)

	_, err = picks.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: b, DriverID: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	state, err = picks.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: b, DriverID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentPickIndex)

	// c's turn belongs to the second half, which is still open
	advanceTo(env, race.FP1Time.Add(-time.Hour))
	result, err := sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Advanced)

	got, err := env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentPickIndex)

	advanceTo(env, race.FP1Time.Add(time.Minute))
	env.Notifier.Reset()
	result, err = sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	assert.Zero(t, result.Autopicks)

	got, err = env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CurrentPickIndex)
	assert.True(t, got.IsComplete())
	assert.Equal(t, models.DraftStatusComplete, got.Status)

	active, err := env.Store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, p := range active {
		assert.NotEqual(t, c, p.UserID)
	}
	assert.Empty(t, env.Notifier.Turns(), "a completed draft has no next turn")
}

func TestSweep_AutopicksFirstHalf(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	a, b, c := users[0], users[1], users[2]
	sweeper := newSweeper(env, nil)
	race := env.FirstRace()
	ctx := context.Background()

	setPreference(t, env, league.ID, a, 1, 2)
	setPreference(t, env, league.ID, b, 1, 3)

	result, err := sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Drafts)
	assert.Zero(t, result.Advanced, "no deadline has passed yet")

	advanceTo(env, race.FP1Time.Add(-36*time.Hour).Add(time.Minute))
	env.Notifier.Reset()

	result, err = sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 2, result.Autopicks)
	assert.Zero(t, result.Failures)

	got, err := env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentPickIndex)

	active, err := env.Store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	byUser := map[uuid.UUID]models.Pick{}
	for _, p := range active {
		byUser[p.UserID] = p
	}
	assert.Equal(t, 1, byUser[a].DriverID)
	assert.Equal(t, 3, byUser[b].DriverID, "taken driver is skipped")
	assert.True(t, byUser[b].IsAutopick)

	turns := env.Notifier.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, c, turns[0].UserID)
	assert.Equal(t, 2, turns[0].PickIndex)
	assert.Equal(t, byUser[b].ID, turns[0].Cause)
	assert.Equal(t, race.FP1Time, turns[0].Deadline)

	// sweeping again without new expiries changes nothing
	result, err = sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Advanced)
	assert.Zero(t, result.Autopicks)

	active, err = env.Store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSweep_SkipsBannedDriver(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{Bans: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	a, b := users[0], users[1]
	picks := pick.NewApp(env.Store, env.Leagues, env.Races, env.Notifier, env.Clock, pick.DefaultConfig())
	sweeper := newSweeper(env, nil)
	ctx := context.Background()

	_, err := picks.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: a, DriverID: 1})
	require.NoError(t, err)
	_, err = picks.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: b, DriverID: 2})
	require.NoError(t, err)
	_, err = picks.BanPick(ctx, pick.BanPickRequest{DraftID: d.ID, RequesterID: b, TargetUserID: a, DriverID: 1})
	require.NoError(t, err)

	setPreference(t, env, league.ID, a, 1, 2, 4)

	advanceTo(env, env.FirstRace().FP1Time.Add(-36*time.Hour).Add(time.Second))
	result, err := sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Autopicks)

	got, err := env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentPickIndex, "b's filled slot is walked past")

	active, err := env.Store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	var aPicks []int
	for _, p := range active {
		if p.UserID == a {
			aPicks = append(aPicks, p.DriverID)
		}
	}
	assert.Equal(t, []int{4}, aPicks)
}

func TestSweep_FillsMirrorSlots(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{Bans: true, Mirror: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	a, b := users[0], users[1]
	picks := pick.NewApp(env.Store, env.Leagues, env.Races, env.Notifier, env.Clock, pick.DefaultConfig())
	sweeper := newSweeper(env, nil)
	ctx := context.Background()

	require.Equal(t, []uuid.UUID{a, b, b, a}, d.PickOrder)
	for _, p := range []struct {
		user   uuid.UUID
		driver int
	}{{a, 1}, {b, 2}, {b, 3}} {
		_, err := picks.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: p.user, DriverID: p.driver})
		require.NoError(t, err)
	}
	state, err := picks.BanPick(ctx, pick.BanPickRequest{DraftID: d.ID, RequesterID: a, TargetUserID: b, DriverID: 3})
	require.NoError(t, err)
	require.Equal(t, 2, state.CurrentPickIndex)

	setPreference(t, env, league.ID, b, 3, 4)
	setPreference(t, env, league.ID, a, 4, 5)

	advanceTo(env, env.FirstRace().FP1Time.Add(time.Minute))
	result, err := sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 2, result.Autopicks)

	active, err := env.Store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, active, 4)
	byDriver := map[int]models.Pick{}
	for _, p := range active {
		byDriver[p.DriverID] = p
	}
	assert.Equal(t, b, byDriver[4].UserID, "banned driver is skipped")
	assert.True(t, byDriver[4].IsMirrorPick)
	assert.True(t, byDriver[4].IsAutopick)
	assert.Equal(t, a, byDriver[5].UserID, "taken driver is skipped")
	assert.True(t, byDriver[5].IsMirrorPick)
	assert.True(t, byDriver[5].IsAutopick)
	assert.False(t, byDriver[1].IsMirrorPick)

	got, err := env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, len(active), got.CurrentPickIndex)
	assert.True(t, got.IsComplete())
}

func TestSweep_IgnoresStartedRaces(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	sweeper := newSweeper(env, nil)
	ctx := context.Background()

	advanceTo(env, env.FirstRace().StartTime.Add(time.Minute))
	result, err := sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Drafts)

	got, err := env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentPickIndex)
}

// failingStrategy errors for every draft of one league.
type failingStrategy struct {
	orchestrator.AutoPickStrategy
	league uuid.UUID
}

func (s failingStrategy) Autopick(ctx context.Context, store repository.Store, draft *models.Draft, userID uuid.UUID, mirror bool) (*models.Pick, error) {
	if draft.LeagueID == s.league {
		return nil, errors.New("preference lookup failed")
	}
	return s.AutoPickStrategy.Autopick(ctx, store, draft, userID, mirror)
}

func TestSweep_IsolatesFailures(t *testing.T) {
	env := drafttest.NewEnv(t)
	good, goodUsers := env.League(t, 2, drafttest.LeagueOptions{})
	env.FixOrder(t, good, goodUsers)
	goodDraft := env.Activate(t, good)
	bad, badUsers := env.League(t, 2, drafttest.LeagueOptions{})
	env.FixOrder(t, bad, badUsers)
	badDraft := env.Activate(t, bad)
	ctx := context.Background()

	reg := prometheus.NewRegistry()
	metrics := orchestrator.NewPrometheusMetrics(reg)
	sweeper := orchestrator.NewOrchestrator(
		env.Store,
		failingStrategy{AutoPickStrategy: orchestrator.NewPreferenceStrategy(env.Clock), league: bad.ID},
		env.Notifier,
		env.Clock,
		metrics,
		orchestrator.DefaultConfig(),
	)

	advanceTo(env, env.FirstRace().FP1Time.Add(time.Minute))
	result, err := sweeper.SweepExpiredTurns(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, result.Drafts)
	assert.Equal(t, 1, result.Advanced)
	assert.Equal(t, 1, result.Failures)

	got, err := env.Store.GetDraft(ctx, goodDraft.ID)
	require.NoError(t, err)
	assert.True(t, got.IsComplete())

	got, err = env.Store.GetDraft(ctx, badDraft.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentPickIndex)

	count, err := testutil.GatherAndCount(reg, "gridpick_sweeps_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, float64(1), counterValue(t, reg, "gridpick_sweep_draft_failures_total"))
	assert.Equal(t, float64(1), counterValue(t, reg, "gridpick_sweep_drafts_advanced_total"))
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

// sweepCounter signals every finished sweep.
type sweepCounter struct {
	done chan orchestrator.SweepResult
}

func (c *sweepCounter) RecordSweep(result orchestrator.SweepResult, _ time.Duration) {
	c.done <- result
}

func (c *sweepCounter) RecordSweepError() {}

func TestRun_SweepsOnEveryTick(t *testing.T) {
	env := drafttest.NewEnv(t)
	counter := &sweepCounter{done: make(chan orchestrator.SweepResult, 4)}
	sweeper := newSweeper(env, counter)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- sweeper.Run(ctx)
	}()

	waitSweep := func() {
		t.Helper()
		select {
		case <-counter.done:
		case <-time.After(5 * time.Second):
			t.Fatal("sweep did not run")
		}
	}

	waitSweep()
	require.NoError(t, env.Clock.BlockUntilContext(ctx, 1))
	env.Clock.Advance(orchestrator.DefaultConfig().Interval)
	waitSweep()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
