package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/db"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/mcdev12/gridpick/go/internal/sqlutil"
)

// Repository is the Postgres Store.
type Repository struct {
	queries *db.Queries
	sqlDB   *sql.DB
}

func NewRepository(queries *db.Queries, sqlDB *sql.DB) *Repository {
	return &Repository{
		queries: queries,
		sqlDB:   sqlDB,
	}
}

func (r *Repository) WithTx(ctx context.Context, fn func(Store) error) error {
	if r.sqlDB == nil {
		// already bound to a tx
		return fn(r)
	}
	return sqlutil.Run(ctx, r.sqlDB, r.queries.WithTx, func(q *db.Queries) error {
		return fn(&Repository{queries: q})
	})
}

func (r *Repository) ActivateLeague(ctx context.Context, leagueID uuid.UUID) error {
	n, err := r.queries.ActivateLeague(ctx, leagueID)
	if err != nil {
		return fmt.Errorf("failed to activate league: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: league is not pending", apperr.ErrConflict)
	}
	return nil
}

func (r *Repository) CreateDraft(ctx context.Context, draft models.Draft) (*models.Draft, error) {
	row, err := r.queries.CreateDraft(ctx, db.CreateDraftParams{
		ID:          draft.ID,
		LeagueID:    draft.LeagueID,
		RaceID:      draft.RaceID,
		PickOrder:   draft.PickOrder,
		MirrorPicks: draft.MirrorPicks,
		CreatedAt:   draft.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", sqlutil.Classify(err))
	}
	return dbDraftToModel(row), nil
}

func (r *Repository) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	row, err := r.queries.GetDraft(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", sqlutil.Classify(err))
	}
	return dbDraftToModel(row), nil
}

func (r *Repository) ListDraftsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Draft, error) {
	rows, err := r.queries.ListDraftsByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts by league: %w", err)
	}
	drafts := make([]models.Draft, len(rows))
	for i, row := range rows {
		drafts[i] = *dbDraftToModel(row)
	}
	return drafts, nil
}

func (r *Repository) ListOpenDrafts(ctx context.Context, now time.Time) ([]OpenDraft, error) {
	rows, err := r.queries.ListOpenDraftsBefore(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list open drafts: %w", err)
	}
	open := make([]OpenDraft, len(rows))
	for i, row := range rows {
		open[i] = OpenDraft{
			Draft: models.Draft{
				ID:               row.ID,
				LeagueID:         row.LeagueID,
				RaceID:           row.RaceID,
				PickOrder:        row.PickOrder,
				CurrentPickIndex: int(row.CurrentPickIndex),
				MirrorPicks:      row.MirrorPicks,
				Status:           models.DraftStatus(row.Status),
				CreatedAt:        row.CreatedAt,
			},
			FP1Time:   row.Fp1Time,
			StartTime: row.StartTime,
		}
	}
	return open, nil
}

func (r *Repository) AdvancePickIndex(ctx context.Context, draftID uuid.UUID, proposed int) (int, error) {
	idx, err := r.queries.AdvancePickIndex(ctx, db.AdvancePickIndexParams{
		Proposed: int32(proposed),
		ID:       draftID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance pick index: %w", sqlutil.Classify(err))
	}
	return int(idx), nil
}

func (r *Repository) RewindPickIndex(ctx context.Context, draftID uuid.UUID, index int) error {
	err := r.queries.RewindPickIndex(ctx, db.RewindPickIndexParams{
		ID:               draftID,
		CurrentPickIndex: int32(index),
	})
	if err != nil {
		return fmt.Errorf("failed to rewind pick index: %w", err)
	}
	return nil
}

func (r *Repository) CreatePick(ctx context.Context, pick models.Pick) (*models.Pick, error) {
	row, err := r.queries.CreatePick(ctx, db.CreatePickParams{
		ID:           pick.ID,
		DraftID:      pick.DraftID,
		UserID:       pick.UserID,
		DriverID:     int32(pick.DriverID),
		IsMirrorPick: pick.IsMirrorPick,
		IsAutopick:   pick.IsAutopick,
		PickedAt:     pick.PickedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pick: %w", sqlutil.Classify(err))
	}
	return dbPickToModel(row), nil
}

func (r *Repository) GetActivePickByDriver(ctx context.Context, draftID uuid.UUID, driverID int) (*models.Pick, error) {
	row, err := r.queries.GetActivePickByDriver(ctx, db.GetActivePickByDriverParams{
		DraftID:  draftID,
		DriverID: int32(driverID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get active pick: %w", sqlutil.Classify(err))
	}
	return dbPickToModel(row), nil
}

func (r *Repository) HasActivePick(ctx context.Context, draftID, userID uuid.UUID, mirror bool) (bool, error) {
	ok, err := r.queries.HasActivePick(ctx, db.HasActivePickParams{
		DraftID:      draftID,
		UserID:       userID,
		IsMirrorPick: mirror,
	})
	if err != nil {
		return false, fmt.Errorf("failed to check active pick: %w", err)
	}
	return ok, nil
}

func (r *Repository) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	rows, err := r.queries.ListPicksByDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}
	return dbPicksToModels(rows), nil
}

func (r *Repository) ListActivePicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	rows, err := r.queries.ListActivePicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active picks: %w", err)
	}
	return dbPicksToModels(rows), nil
}

func (r *Repository) ListBannedDrivers(ctx context.Context, draftID, userID uuid.UUID) ([]int, error) {
	ids, err := r.queries.ListBannedDriversForUser(ctx, db.ListBannedDriversForUserParams{
		DraftID: draftID,
		UserID:  userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list banned drivers: %w", err)
	}
	return sqlutil.FromInt32s(ids), nil
}

func (r *Repository) HasBanAgainst(ctx context.Context, draftID, bannedBy, targetUserID uuid.UUID) (bool, error) {
	ok, err := r.queries.HasBanAgainst(ctx, db.HasBanAgainstParams{
		DraftID:  draftID,
		UserID:   targetUserID,
		BannedBy: sqlutil.ToNullUUID(bannedBy),
	})
	if err != nil {
		return false, fmt.Errorf("failed to check existing ban: %w", err)
	}
	return ok, nil
}

func (r *Repository) BanPick(ctx context.Context, pickID, bannedBy uuid.UUID, at time.Time) error {
	n, err := r.queries.BanPick(ctx, db.BanPickParams{
		ID:       pickID,
		BannedBy: sqlutil.ToNullUUID(bannedBy),
		BannedAt: at,
	})
	if err != nil {
		return fmt.Errorf("failed to ban pick: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: pick already banned", apperr.ErrConflict)
	}
	return nil
}

func (r *Repository) ConsumeBanCredit(ctx context.Context, draftID, scopeID uuid.UUID, isTeamScope bool, initial int) (int, error) {
	remaining, err := r.queries.ConsumeBanCredit(ctx, db.ConsumeBanCreditParams{
		DraftID:        draftID,
		ScopeID:        scopeID,
		IsTeamScope:    isTeamScope,
		InitialCredits: int32(initial),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNoBanCredit
	}
	if err != nil {
		return 0, fmt.Errorf("failed to consume ban credit: %w", sqlutil.Classify(err))
	}
	return int(remaining), nil
}

func (r *Repository) GetBanCredit(ctx context.Context, draftID, scopeID uuid.UUID) (*models.BanCredit, error) {
	row, err := r.queries.GetBanCredit(ctx, db.GetBanCreditParams{DraftID: draftID, ScopeID: scopeID})
	if err != nil {
		return nil, fmt.Errorf("failed to get ban credit: %w", sqlutil.Classify(err))
	}
	return &models.BanCredit{
		DraftID:       row.DraftID,
		ScopeID:       row.ScopeID,
		IsTeamScope:   row.IsTeamScope,
		BansRemaining: int(row.BansRemaining),
	}, nil
}

func (r *Repository) UpsertAutopickPreference(ctx context.Context, pref models.AutopickPreference) (*models.AutopickPreference, error) {
	row, err := r.queries.UpsertAutopickPreference(ctx, db.UpsertAutopickPreferenceParams{
		LeagueID:  pref.LeagueID,
		UserID:    pref.UserID,
		DriverIds: sqlutil.ToInt32s(pref.DriverIDs),
		UpdatedAt: pref.UpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert autopick preference: %w", sqlutil.Classify(err))
	}
	return dbPreferenceToModel(row), nil
}

func (r *Repository) GetAutopickPreference(ctx context.Context, leagueID, userID uuid.UUID) (*models.AutopickPreference, error) {
	row, err := r.queries.GetAutopickPreference(ctx, db.GetAutopickPreferenceParams{
		LeagueID: leagueID,
		UserID:   userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get autopick preference: %w", sqlutil.Classify(err))
	}
	return dbPreferenceToModel(row), nil
}

func dbDraftToModel(d db.Draft) *models.Draft {
	return &models.Draft{
		ID:               d.ID,
		LeagueID:         d.LeagueID,
		RaceID:           d.RaceID,
		PickOrder:        d.PickOrder,
		CurrentPickIndex: int(d.CurrentPickIndex),
		MirrorPicks:      d.MirrorPicks,
		Status:           models.DraftStatus(d.Status),
		CreatedAt:        d.CreatedAt,
	}
}

func dbPickToModel(p db.Pick) *models.Pick {
	return &models.Pick{
		ID:           p.ID,
		DraftID:      p.DraftID,
		UserID:       p.UserID,
		DriverID:     int(p.DriverID),
		IsMirrorPick: p.IsMirrorPick,
		IsBanned:     p.IsBanned,
		BannedBy:     sqlutil.FromNullUUID(p.BannedBy),
		BannedAt:     sqlutil.FromSqlTime(p.BannedAt),
		IsAutopick:   p.IsAutopick,
		PickedAt:     p.PickedAt,
	}
}

func dbPicksToModels(rows []db.Pick) []models.Pick {
	picks := make([]models.Pick, len(rows))
	for i, row := range rows {
		picks[i] = *dbPickToModel(row)
	}
	return picks
}

func dbPreferenceToModel(p db.AutopickPreference) *models.AutopickPreference {
	return &models.AutopickPreference{
		LeagueID:  p.LeagueID,
		UserID:    p.UserID,
		DriverIDs: sqlutil.FromInt32s(p.DriverIds),
		UpdatedAt: p.UpdatedAt,
	}
}
