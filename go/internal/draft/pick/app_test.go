package pick_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/drafttest"
	"github.com/mcdev12/gridpick/go/internal/draft/pick"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPickApp(env *drafttest.Env) *pick.App {
	return pick.NewApp(env.Store, env.Leagues, env.Races, env.Notifier, env.Clock, pick.DefaultConfig())
}

func makePick(t *testing.T, app *pick.App, draftID, userID uuid.UUID, driverID int) *pick.DraftState {
	t.Helper()
	state, err := app.MakePick(context.Background(), pick.MakePickRequest{
		DraftID:     draftID,
		RequesterID: userID,
		DriverID:    driverID,
	})
	require.NoError(t, err)
	return state
}

func ban(app *pick.App, draftID, requester, target uuid.UUID, driverID int) (*pick.DraftState, error) {
	return app.BanPick(context.Background(), pick.BanPickRequest{
		DraftID:      draftID,
		RequesterID:  requester,
		TargetUserID: target,
		DriverID:     driverID,
	})
}

func TestMakePick_AdvancesTurn(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)
	a, b, c := users[0], users[1], users[2]
	ctx := context.Background()

	require.Equal(t, []uuid.UUID{a, b, c}, d.PickOrder)
	env.Notifier.Reset()

	state := makePick(t, app, d.ID, a, 1)
	assert.Equal(t, 1, state.CurrentPickIndex)
	require.NotNil(t, state.NextUserID)
	assert.Equal(t, b, *state.NextUserID)
	assert.Equal(t, []int{1}, state.PickedDrivers)
	require.NotNil(t, state.NextDeadline)
	assert.Equal(t, env.FirstRace().FP1Time.Add(-36*time.Hour), *state.NextDeadline)

	turns := env.Notifier.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, b, turns[0].UserID)
	assert.Equal(t, 1, turns[0].PickIndex)

	_, err := app.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: b, DriverID: 1})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	state = makePick(t, app, d.ID, b, 2)
	assert.Equal(t, 2, state.CurrentPickIndex)
	assert.Equal(t, c, *state.NextUserID)
	assert.Equal(t, env.FirstRace().FP1Time, *state.NextDeadline)

	state = makePick(t, app, d.ID, c, 3)
	assert.Equal(t, 3, state.CurrentPickIndex)
	assert.True(t, state.Complete)
	assert.Nil(t, state.NextUserID)
	assert.Nil(t, state.NextDeadline)

	_, err = app.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: a, DriverID: 4})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	stored, err := env.Store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusComplete, stored.Status)
}

func TestMakePick_Rejections(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)
	ctx := context.Background()

	tests := map[string]struct {
		req  pick.MakePickRequest
		kind error
	}{
		"not your turn": {
			req:  pick.MakePickRequest{DraftID: d.ID, RequesterID: users[1], DriverID: 1},
			kind: apperr.ErrForbidden,
		},
		"driver outside catalog": {
			req:  pick.MakePickRequest{DraftID: d.ID, RequesterID: users[0], DriverID: 99},
			kind: apperr.ErrBadRequest,
		},
		"missing driver": {
			req:  pick.MakePickRequest{DraftID: d.ID, RequesterID: users[0]},
			kind: apperr.ErrBadRequest,
		},
		"unknown draft": {
			req:  pick.MakePickRequest{DraftID: uuid.New(), RequesterID: users[0], DriverID: 1},
			kind: apperr.ErrNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := app.MakePick(ctx, tc.req)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	picks, err := env.Store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, picks)
}

func TestMakePick_IndexMatchesPickCount(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{Mirror: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)
	a, b := users[0], users[1]

	require.Equal(t, []uuid.UUID{a, b, b, a}, d.PickOrder)
	env.Notifier.Reset()

	for m, step := range []struct {
		user   uuid.UUID
		driver int
	}{{a, 1}, {b, 2}, {b, 3}, {a, 4}} {
		state := makePick(t, app, d.ID, step.user, step.driver)
		assert.Equal(t, m+1, state.CurrentPickIndex)
	}

	picks, err := env.Store.ListPicks(context.Background(), d.ID)
	require.NoError(t, err)
	require.Len(t, picks, 4)
	assert.Equal(t, []bool{false, false, true, true}, []bool{
		picks[0].IsMirrorPick, picks[1].IsMirrorPick, picks[2].IsMirrorPick, picks[3].IsMirrorPick,
	})

	// b holds two turns in a row, so only the handoffs notify
	var notified []uuid.UUID
	for _, turn := range env.Notifier.Turns() {
		notified = append(notified, turn.UserID)
	}
	assert.Equal(t, []uuid.UUID{b, a}, notified)
}

func TestMakePick_TeammateStandIn(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 4, drafttest.LeagueOptions{Teams: true})
	a, b, c, dd := users[0], users[1], users[2], users[3]
	env.Team(t, league, "Red", a, b)
	env.Team(t, league, "Blue", c, dd)
	env.FixOrder(t, league, []uuid.UUID{a, c, b, dd})
	d := env.Activate(t, league)
	app := newPickApp(env)
	ctx := context.Background()

	_, err := app.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: b, DriverID: 1})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	env.Clock.Advance(env.FirstRace().FP1Time.Add(-30 * time.Minute).Sub(env.Clock.Now()))

	_, err = app.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: c, DriverID: 1})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	state := makePick(t, app, d.ID, b, 1)
	assert.Equal(t, 1, state.CurrentPickIndex)

	picks, err := env.Store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, a, picks[0].UserID)
}

func TestBanPick_RewindsAndCharges(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{Bans: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)
	a, b, c := users[0], users[1], users[2]
	ctx := context.Background()

	makePick(t, app, d.ID, a, 1)
	makePick(t, app, d.ID, b, 2)
	env.Notifier.Reset()

	state, err := ban(app, d.ID, b, a, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentPickIndex)
	assert.Equal(t, a, *state.NextUserID)
	assert.Equal(t, []int{2}, state.PickedDrivers)
	assert.Equal(t, []int{1}, state.BannedDrivers)

	credit, err := app.BanCredit(ctx, d.ID, b)
	require.NoError(t, err)
	assert.Equal(t, pick.UserBanCredits-1, credit.BansRemaining)
	assert.False(t, credit.IsTeamScope)

	turns := env.Notifier.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, a, turns[0].UserID)
	assert.Equal(t, 0, turns[0].PickIndex)

	_, err = app.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: a, DriverID: 1})
	assert.ErrorIs(t, err, apperr.ErrBadRequest, "banned driver cannot be re-picked by its owner")

	// b's slot is still filled, so the cursor returns to c
	state = makePick(t, app, d.ID, a, 3)
	assert.Equal(t, 2, state.CurrentPickIndex)
	assert.Equal(t, c, *state.NextUserID)

	_, err = ban(app, d.ID, b, a, 3)
	assert.ErrorIs(t, err, apperr.ErrForbidden, "second ban of the same user")

	picks, err := env.Store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, picks, 3)
	assert.True(t, picks[0].IsBanned)
	require.NotNil(t, picks[0].BannedBy)
	assert.Equal(t, b, *picks[0].BannedBy)
}

func TestBanPick_Rules(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{Bans: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)
	a, b, c := users[0], users[1], users[2]

	makePick(t, app, d.ID, a, 1)
	makePick(t, app, d.ID, b, 2)

	tests := map[string]struct {
		requester uuid.UUID
		target    uuid.UUID
		driver    int
		kind      error
	}{
		"not the preceding slot": {requester: c, target: a, driver: 1, kind: apperr.ErrForbidden},
		"last slot":              {requester: a, target: c, driver: 3, kind: apperr.ErrForbidden},
		"target did not pick it": {requester: b, target: a, driver: 2, kind: apperr.ErrNotFound},
		"target outside order":   {requester: b, target: uuid.New(), driver: 1, kind: apperr.ErrBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ban(app, d.ID, tc.requester, tc.target, tc.driver)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	stored, err := env.Store.GetDraft(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentPickIndex)
}

func TestBanPick_MirrorSlot(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{Bans: true, Mirror: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)
	a, b := users[0], users[1]
	ctx := context.Background()

	require.Equal(t, []uuid.UUID{a, b, b, a}, d.PickOrder)

	makePick(t, app, d.ID, a, 1)
	makePick(t, app, d.ID, b, 2)
	state := makePick(t, app, d.ID, b, 3)
	assert.Equal(t, 3, state.CurrentPickIndex)
	env.Notifier.Reset()

	state, err := ban(app, d.ID, a, b, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentPickIndex, "rewinds to b's mirror slot")
	assert.Equal(t, b, *state.NextUserID)
	assert.Equal(t, []int{1, 2}, state.PickedDrivers)
	assert.Equal(t, []int{3}, state.BannedDrivers)

	turns := env.Notifier.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, b, turns[0].UserID)
	assert.Equal(t, 2, turns[0].PickIndex)

	_, err = app.MakePick(ctx, pick.MakePickRequest{DraftID: d.ID, RequesterID: b, DriverID: 3})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	state = makePick(t, app, d.ID, b, 4)
	assert.Equal(t, 3, state.CurrentPickIndex)
	assert.Equal(t, a, *state.NextUserID)

	active, err := env.Store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, active, 3)
	byDriver := map[int]models.Pick{}
	for _, p := range active {
		byDriver[p.DriverID] = p
	}
	assert.False(t, byDriver[2].IsMirrorPick)
	assert.True(t, byDriver[4].IsMirrorPick)
	assert.Equal(t, b, byDriver[4].UserID)
}

func TestBanPick_Disabled(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	app := newPickApp(env)

	makePick(t, app, d.ID, users[0], 1)
	_, err := ban(app, d.ID, users[1], users[0], 1)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestBanPick_TeamPool(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 4, drafttest.LeagueOptions{Teams: true, Bans: true})
	a, b, c, dd := users[0], users[1], users[2], users[3]
	red := env.Team(t, league, "Red", a, b)
	env.Team(t, league, "Blue", c, dd)
	env.FixOrder(t, league, []uuid.UUID{a, c, b, dd})
	d := env.Activate(t, league)
	app := newPickApp(env)
	ctx := context.Background()

	makePick(t, app, d.ID, a, 1)
	makePick(t, app, d.ID, c, 2)
	makePick(t, app, d.ID, b, 3)

	// teammates may ban any of each other's picks
	state, err := ban(app, d.ID, a, b, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, state.CurrentPickIndex)

	state = makePick(t, app, d.ID, b, 4)
	assert.Equal(t, 3, state.CurrentPickIndex)

	state, err = ban(app, d.ID, b, a, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, state.CurrentPickIndex)

	credit, err := app.BanCredit(ctx, d.ID, a)
	require.NoError(t, err)
	assert.True(t, credit.IsTeamScope)
	assert.Equal(t, red.ID, credit.ScopeID)
	assert.Equal(t, pick.TeamBanCredits-2, credit.BansRemaining)

	state = makePick(t, app, d.ID, a, 5)
	assert.Equal(t, 3, state.CurrentPickIndex)

	remaining, err := env.Store.ConsumeBanCredit(ctx, d.ID, red.ID, true, pick.TeamBanCredits)
	require.NoError(t, err)
	require.Zero(t, remaining)

	_, err = ban(app, d.ID, b, c, 2)
	assert.ErrorIs(t, err, apperr.ErrBadRequest, "pool exhausted")

	// the other team's pool is untouched
	_, err = ban(app, d.ID, c, a, 5)
	require.NoError(t, err)
	blue, err := app.BanCredit(ctx, d.ID, c)
	require.NoError(t, err)
	assert.Equal(t, pick.TeamBanCredits-1, blue.BansRemaining)
}

func TestAutopickPreference(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{})
	app := newPickApp(env)
	ctx := context.Background()

	pref, err := app.GetAutopickPreference(ctx, league.ID, users[1])
	require.NoError(t, err)
	assert.Empty(t, pref.DriverIDs)

	pref, err = app.UpsertAutopickPreference(ctx, pick.UpsertAutopickRequest{
		LeagueID:  league.ID,
		UserID:    users[1],
		DriverIDs: []int{7, 3, 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3, 5}, pref.DriverIDs)

	got, err := app.GetAutopickPreference(ctx, league.ID, users[1])
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3, 5}, got.DriverIDs)

	tests := map[string]struct {
		req  pick.UpsertAutopickRequest
		kind error
	}{
		"duplicate driver": {
			req:  pick.UpsertAutopickRequest{LeagueID: league.ID, UserID: users[1], DriverIDs: []int{1, 1}},
			kind: apperr.ErrBadRequest,
		},
		"unknown driver": {
			req:  pick.UpsertAutopickRequest{LeagueID: league.ID, UserID: users[1], DriverIDs: []int{42}},
			kind: apperr.ErrBadRequest,
		},
		"not a member": {
			req:  pick.UpsertAutopickRequest{LeagueID: league.ID, UserID: uuid.New(), DriverIDs: []int{1}},
			kind: apperr.ErrForbidden,
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := app.UpsertAutopickPreference(ctx, tc.req)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}
