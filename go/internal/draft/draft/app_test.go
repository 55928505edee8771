package draft_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/drafttest"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivateDraft(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	a, b, c := users[0], users[1], users[2]
	ctx := context.Background()

	result, err := env.Drafts.ActivateDraft(ctx, league.ID, a)
	require.NoError(t, err)
	assert.Equal(t, models.LeagueStatusActive, result.League.Status)
	require.Len(t, result.Drafts, len(env.Calendar))

	wantOrders := [][]uuid.UUID{{a, b, c}, {b, c, a}, {c, a, b}}
	for k, d := range result.Drafts {
		assert.Equal(t, env.Calendar[k].ID, d.RaceID)
		assert.Equal(t, wantOrders[k], d.PickOrder, "draft %d", k)
		assert.Zero(t, d.CurrentPickIndex)
		assert.Equal(t, models.DraftStatusInProgress, d.Status)
	}

	turns := env.Notifier.Turns()
	require.Len(t, turns, len(env.Calendar))
	for k, turn := range turns {
		assert.Equal(t, result.Drafts[k].ID, turn.DraftID)
		assert.Equal(t, wantOrders[k][0], turn.UserID)
		assert.Zero(t, turn.PickIndex)
		assert.Equal(t, env.Calendar[k].FP1Time.Add(-36*time.Hour), turn.Deadline)
	}

	stored, err := env.Leagues.GetLeague(ctx, league.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeagueStatusActive, stored.Status)

	_, err = env.Drafts.ActivateDraft(ctx, league.ID, a)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	drafts, err := env.Drafts.ListLeagueDrafts(ctx, league.ID)
	require.NoError(t, err)
	assert.Len(t, drafts, len(env.Calendar))
}

func TestActivateDraft_Mirror(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{Mirror: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)

	assert.Equal(t, []uuid.UUID{users[0], users[1], users[1], users[0]}, d.PickOrder)
	assert.True(t, d.MirrorPicks)
}

func TestActivateDraft_SkipsStartedRaces(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 2, drafttest.LeagueOptions{})
	env.FixOrder(t, league, users)
	env.Clock.Advance(env.FirstRace().StartTime.Add(time.Minute).Sub(env.Clock.Now()))

	result, err := env.Drafts.ActivateDraft(context.Background(), league.ID, users[0])
	require.NoError(t, err)
	require.Len(t, result.Drafts, 2)
	assert.Equal(t, env.Calendar[1].ID, result.Drafts[0].RaceID)
}

func TestActivateDraft_Rejections(t *testing.T) {
	env := drafttest.NewEnv(t)
	ctx := context.Background()

	t.Run("not the owner", func(t *testing.T) {
		league, users := env.League(t, 2, drafttest.LeagueOptions{})
		_, err := env.Drafts.ActivateDraft(ctx, league.ID, users[1])
		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})

	t.Run("single member", func(t *testing.T) {
		league, users := env.League(t, 1, drafttest.LeagueOptions{})
		_, err := env.Drafts.ActivateDraft(ctx, league.ID, users[0])
		assert.ErrorIs(t, err, apperr.ErrBadRequest)
	})

	t.Run("member without a team", func(t *testing.T) {
		league, users := env.League(t, 4, drafttest.LeagueOptions{Teams: true})
		env.Team(t, league, "Red", users[0], users[1])
		_, err := env.Drafts.ActivateDraft(ctx, league.ID, users[0])
		assert.ErrorIs(t, err, apperr.ErrBadRequest)

		stored, err := env.Leagues.GetLeague(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, models.LeagueStatusPending, stored.Status)
	})

	t.Run("unknown league", func(t *testing.T) {
		_, err := env.Drafts.ActivateDraft(ctx, uuid.New(), uuid.New())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestActivateDraft_TeamsInterleave(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 4, drafttest.LeagueOptions{Teams: true})
	red := []uuid.UUID{users[0], users[1]}
	env.Team(t, league, "Red", red...)
	env.Team(t, league, "Blue", users[2], users[3])
	d := env.Activate(t, league)

	require.Len(t, d.PickOrder, 4)
	onRed := func(id uuid.UUID) bool { return id == red[0] || id == red[1] }
	for i := 1; i < len(d.PickOrder); i++ {
		assert.NotEqual(t, onRed(d.PickOrder[i-1]), onRed(d.PickOrder[i]), "teams alternate at %d", i)
	}
}

func TestGetPickOrderAndDeadlines(t *testing.T) {
	env := drafttest.NewEnv(t)
	league, users := env.League(t, 3, drafttest.LeagueOptions{Mirror: true})
	env.FixOrder(t, league, users)
	d := env.Activate(t, league)
	race := env.FirstRace()
	ctx := context.Background()

	po, err := env.Drafts.GetPickOrder(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, po.Slots, 6)
	assert.True(t, po.MirrorPicks)
	for i, slot := range po.Slots {
		assert.Equal(t, i, slot.Index)
		assert.Equal(t, i >= 3, slot.IsMirror, "slot %d", i)
		if i < 3 {
			assert.Equal(t, race.FP1Time.Add(-36*time.Hour), slot.Deadline)
		} else {
			assert.Equal(t, race.FP1Time, slot.Deadline)
		}
	}

	dl, err := env.Drafts.GetDeadlines(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, dl.Threshold)
	assert.Equal(t, race.FP1Time, dl.SecondHalf)
	require.NotNil(t, dl.Current)
	assert.Equal(t, dl.FirstHalf, *dl.Current)

	_, err = env.Drafts.GetPickOrder(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.Drafts.GetDeadlines(ctx, uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}
