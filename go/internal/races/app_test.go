package races_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/memstore"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/mcdev12/gridpick/go/internal/races"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalendar(t *testing.T) (*races.App, []models.Race) {
	t.Helper()
	store := memstore.New()
	base := time.Date(2026, 3, 13, 11, 30, 0, 0, time.UTC)
	calendar := make([]models.Race, 3)
	for i := range calendar {
		fp1 := base.AddDate(0, 0, 7*i)
		calendar[i] = models.Race{
			ID:        uuid.New(),
			Season:    2026,
			Round:     i + 1,
			Name:      "Round",
			FP1Time:   fp1,
			StartTime: fp1.Add(50 * time.Hour),
		}
	}
	// Inserted out of order; listing sorts by round.
	for _, i := range []int{2, 0, 1} {
		store.PutRace(calendar[i])
	}
	store.PutRace(models.Race{ID: uuid.New(), Season: 2025, Round: 1, FP1Time: base, StartTime: base})
	store.PutDrivers(2026, []models.Driver{
		{ID: 4, Code: "NOR", Constructor: "McLaren"},
		{ID: 1, Code: "VER", Constructor: "Red Bull"},
		{ID: 81, Code: "PIA", Constructor: "McLaren"},
	})
	return races.NewApp(store), calendar
}

func TestUpcomingRaces(t *testing.T) {
	app, calendar := newCalendar(t)
	ctx := context.Background()

	all, err := app.SeasonRaces(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, calendar[0].ID, all[0].ID)

	tests := map[string]struct {
		from int
		now  time.Time
		want []int
	}{
		"season start":       {from: 1, now: calendar[0].FP1Time.Add(-time.Hour), want: []int{1, 2, 3}},
		"initial round":      {from: 2, now: calendar[0].FP1Time.Add(-time.Hour), want: []int{2, 3}},
		"first race started": {from: 1, now: calendar[0].StartTime, want: []int{2, 3}},
		"season over":        {from: 1, now: calendar[2].StartTime.Add(time.Hour), want: nil},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := app.UpcomingRaces(ctx, 2026, tc.from, tc.now)
			require.NoError(t, err)
			var rounds []int
			for _, race := range got {
				rounds = append(rounds, race.Round)
			}
			assert.Equal(t, tc.want, rounds)
		})
	}
}

func TestGetRace(t *testing.T) {
	app, calendar := newCalendar(t)
	ctx := context.Background()

	race, err := app.GetRace(ctx, calendar[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, race.Round)

	_, err = app.GetRace(ctx, uuid.Nil)
	assert.ErrorIs(t, err, apperr.ErrBadRequest)

	_, err = app.GetRace(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDriverCatalog(t *testing.T) {
	app, _ := newCalendar(t)
	ctx := context.Background()

	drivers, err := app.SeasonDrivers(ctx, 2026)
	require.NoError(t, err)
	require.Len(t, drivers, 3)
	assert.Equal(t, 1, drivers[0].ID)
	assert.Equal(t, 2026, drivers[0].Season)

	ok, err := app.DriverInSeason(ctx, 2026, 81)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = app.DriverInSeason(ctx, 2025, 81)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := app.ConstructorCount(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
