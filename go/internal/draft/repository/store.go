package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// ErrNoBanCredit is returned by ConsumeBanCredit when the scope's pool is empty.
var ErrNoBanCredit = errors.New("no ban credit remaining")

// OpenDraft is an unfinished draft together with its race times.
type OpenDraft struct {
	Draft     models.Draft
	FP1Time   time.Time
	StartTime time.Time
}

// Store is the draft persistence surface shared by activation, the pick/ban
// state machine and the deadline sweeper. Uniqueness of active picks per
// (draft, user, mirror) and per (draft, driver) is enforced by the store and
// reported as apperr.ErrConflict.
type Store interface {
	// WithTx runs fn against a Store bound to a single transaction.
	WithTx(ctx context.Context, fn func(Store) error) error

	// ActivateLeague flips a pending league to active, failing with
	// apperr.ErrConflict if it is not pending.
	ActivateLeague(ctx context.Context, leagueID uuid.UUID) error
	CreateDraft(ctx context.Context, draft models.Draft) (*models.Draft, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListDraftsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Draft, error)
	// ListOpenDrafts returns drafts with turns left whose race starts after now.
	ListOpenDrafts(ctx context.Context, now time.Time) ([]OpenDraft, error)
	// AdvancePickIndex moves the cursor to max(current, proposed) and returns
	// the stored value.
	AdvancePickIndex(ctx context.Context, draftID uuid.UUID, proposed int) (int, error)
	// RewindPickIndex sets the cursor back to index after a ban.
	RewindPickIndex(ctx context.Context, draftID uuid.UUID, index int) error

	CreatePick(ctx context.Context, pick models.Pick) (*models.Pick, error)
	GetActivePickByDriver(ctx context.Context, draftID uuid.UUID, driverID int) (*models.Pick, error)
	HasActivePick(ctx context.Context, draftID, userID uuid.UUID, mirror bool) (bool, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error)
	ListActivePicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error)
	ListBannedDrivers(ctx context.Context, draftID, userID uuid.UUID) ([]int, error)
	HasBanAgainst(ctx context.Context, draftID, bannedBy, targetUserID uuid.UUID) (bool, error)
	BanPick(ctx context.Context, pickID, bannedBy uuid.UUID, at time.Time) error

	// ConsumeBanCredit creates the scope's pool with initial credits on first
	// use and takes one ban from it, returning what is left.
	ConsumeBanCredit(ctx context.Context, draftID, scopeID uuid.UUID, isTeamScope bool, initial int) (int, error)
	GetBanCredit(ctx context.Context, draftID, scopeID uuid.UUID) (*models.BanCredit, error)

	UpsertAutopickPreference(ctx context.Context, pref models.AutopickPreference) (*models.AutopickPreference, error)
	GetAutopickPreference(ctx context.Context, leagueID, userID uuid.UUID) (*models.AutopickPreference, error)
}
