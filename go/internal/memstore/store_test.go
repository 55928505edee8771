package memstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/memstore"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func seedDraft(t *testing.T, store *memstore.Store, users ...uuid.UUID) *models.Draft {
	t.Helper()
	ctx := context.Background()
	race := models.Race{
		ID:        uuid.New(),
		Season:    2026,
		Round:     1,
		Name:      "Round 1",
		FP1Time:   now.Add(48 * time.Hour),
		StartTime: now.Add(96 * time.Hour),
	}
	store.PutRace(race)

	league, err := store.CreateLeague(ctx, models.League{
		ID:         uuid.New(),
		Name:       "League",
		OwnerID:    users[0],
		Season:     2026,
		Status:     models.LeagueStatusPending,
		MaxPlayers: len(users),
		CreatedAt:  now,
	})
	require.NoError(t, err)

	d, err := store.CreateDraft(ctx, models.Draft{
		ID:        uuid.New(),
		LeagueID:  league.ID,
		RaceID:    race.ID,
		PickOrder: users,
		CreatedAt: now,
	})
	require.NoError(t, err)
	return d
}

func newPick(d *models.Draft, userID uuid.UUID, driverID int, mirror bool) models.Pick {
	return models.Pick{
		ID:           uuid.New(),
		DraftID:      d.ID,
		UserID:       userID,
		DriverID:     driverID,
		IsMirrorPick: mirror,
		PickedAt:     now,
	}
}

func TestWithTxRollsBack(t *testing.T) {
	store := memstore.New()
	a, b := uuid.New(), uuid.New()
	d := seedDraft(t, store, a, b)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.CreatePick(ctx, newPick(d, a, 1, false)); err != nil {
			return err
		}
		if _, err := tx.AdvancePickIndex(ctx, d.ID, 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	picks, err := store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, picks)
	got, err := store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentPickIndex)

	err = store.WithTx(ctx, func(tx repository.Store) error {
		_, err := tx.CreatePick(ctx, newPick(d, a, 1, false))
		return err
	})
	require.NoError(t, err)
	picks, err = store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, picks, 1)
}

func TestWithTxKeepsConcurrentWrites(t *testing.T) {
	store := memstore.New()
	a, b := uuid.New(), uuid.New()
	d := seedDraft(t, store, a, b)
	ctx := context.Background()

	entered := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("boom")
	txErr := make(chan error, 1)
	go func() {
		txErr <- store.WithTx(ctx, func(tx repository.Store) error {
			// league and race reads through the root store do not wait on
			// the transaction
			if _, _, err := store.TeamOf(ctx, d.LeagueID, a); err != nil {
				return err
			}
			if _, err := store.DriverExists(ctx, 2026, 1); err != nil {
				return err
			}
			if _, err := tx.CreatePick(ctx, newPick(d, a, 1, false)); err != nil {
				return err
			}
			close(entered)
			<-release
			return boom
		})
	}()
	<-entered

	writeErr := make(chan error, 1)
	go func() {
		_, err := store.CreatePick(ctx, newPick(d, b, 2, false))
		writeErr <- err
	}()
	select {
	case <-writeErr:
		t.Fatal("write outside the transaction ran while it was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.ErrorIs(t, <-txErr, boom)
	require.NoError(t, <-writeErr)

	picks, err := store.ListPicks(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Equal(t, b, picks[0].UserID)
	assert.Equal(t, 2, picks[0].DriverID)
}

func TestCreatePickUniqueness(t *testing.T) {
	store := memstore.New()
	a, b := uuid.New(), uuid.New()
	d := seedDraft(t, store, a, b, b, a)
	ctx := context.Background()

	first, err := store.CreatePick(ctx, newPick(d, a, 1, false))
	require.NoError(t, err)

	_, err = store.CreatePick(ctx, newPick(d, b, 1, false))
	assert.ErrorIs(t, err, apperr.ErrConflict, "driver taken")

	_, err = store.CreatePick(ctx, newPick(d, a, 2, false))
	assert.ErrorIs(t, err, apperr.ErrConflict, "slot taken")

	_, err = store.CreatePick(ctx, newPick(d, a, 2, true))
	require.NoError(t, err, "mirror slot is separate")

	require.NoError(t, store.BanPick(ctx, first.ID, b, now))
	err = store.BanPick(ctx, first.ID, b, now)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	// a banned pick frees both the driver and the slot
	_, err = store.CreatePick(ctx, newPick(d, b, 1, false))
	require.NoError(t, err)
	_, err = store.CreatePick(ctx, newPick(d, a, 3, false))
	require.NoError(t, err)

	banned, err := store.ListBannedDrivers(ctx, d.ID, a)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, banned)

	has, err := store.HasBanAgainst(ctx, d.ID, b, a)
	require.NoError(t, err)
	assert.True(t, has)

	active, err := store.ListActivePicks(ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, active, 3)
}

func TestPickIndexWrites(t *testing.T) {
	store := memstore.New()
	a, b := uuid.New(), uuid.New()
	d := seedDraft(t, store, a, b)
	ctx := context.Background()

	idx, err := store.AdvancePickIndex(ctx, d.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	idx, err = store.AdvancePickIndex(ctx, d.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, idx, "advance never moves backwards")

	idx, err = store.AdvancePickIndex(ctx, d.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
	got, err := store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusComplete, got.Status)

	open, err := store.ListOpenDrafts(ctx, now)
	require.NoError(t, err)
	assert.Empty(t, open)

	require.NoError(t, store.RewindPickIndex(ctx, d.ID, 0))
	got, err = store.GetDraft(ctx, d.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CurrentPickIndex)
	assert.Equal(t, models.DraftStatusInProgress, got.Status)

	open, err = store.ListOpenDrafts(ctx, now)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, d.ID, open[0].Draft.ID)

	open, err = store.ListOpenDrafts(ctx, now.Add(96*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, open, "race has started")

	err = store.RewindPickIndex(ctx, uuid.New(), 0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConsumeBanCredit(t *testing.T) {
	store := memstore.New()
	a, b := uuid.New(), uuid.New()
	d := seedDraft(t, store, a, b)
	ctx := context.Background()

	_, err := store.GetBanCredit(ctx, d.ID, a)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	remaining, err := store.ConsumeBanCredit(ctx, d.ID, a, false, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
	remaining, err = store.ConsumeBanCredit(ctx, d.ID, a, false, 2)
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = store.ConsumeBanCredit(ctx, d.ID, a, false, 2)
	assert.ErrorIs(t, err, repository.ErrNoBanCredit)

	credit, err := store.GetBanCredit(ctx, d.ID, a)
	require.NoError(t, err)
	assert.Zero(t, credit.BansRemaining)
	assert.False(t, credit.IsTeamScope)
}
