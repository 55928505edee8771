package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/models"
)

func (s *Store) CreatePick(ctx context.Context, pick models.Pick) (*models.Pick, error) {
	defer s.lock()()
	if _, ok := s.data.drafts[pick.DraftID]; !ok {
		return nil, notFound("draft")
	}
	for _, p := range s.data.picks {
		if p.DraftID != pick.DraftID || p.IsBanned {
			continue
		}
		if p.DriverID == pick.DriverID {
			return nil, conflict("driver already picked")
		}
		if p.UserID == pick.UserID && p.IsMirrorPick == pick.IsMirrorPick {
			return nil, conflict("slot already picked")
		}
	}
	pick.IsBanned = false
	pick.BannedBy = nil
	pick.BannedAt = nil
	s.data.picks = append(s.data.picks, pick)
	return &pick, nil
}

func (s *Store) GetActivePickByDriver(ctx context.Context, draftID uuid.UUID, driverID int) (*models.Pick, error) {
	defer s.rlock()()
	for _, p := range s.data.picks {
		if p.DraftID == draftID && p.DriverID == driverID && !p.IsBanned {
			return &p, nil
		}
	}
	return nil, notFound("active pick")
}

func (s *Store) HasActivePick(ctx context.Context, draftID, userID uuid.UUID, mirror bool) (bool, error) {
	defer s.rlock()()
	for _, p := range s.data.picks {
		if p.DraftID == draftID && p.UserID == userID && p.IsMirrorPick == mirror && !p.IsBanned {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	return s.listPicks(draftID, func(models.Pick) bool { return true }), nil
}

func (s *Store) ListActivePicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error) {
	return s.listPicks(draftID, func(p models.Pick) bool { return !p.IsBanned }), nil
}

func (s *Store) listPicks(draftID uuid.UUID, keep func(models.Pick) bool) []models.Pick {
	defer s.rlock()()
	var picks []models.Pick
	for _, p := range s.data.picks {
		if p.DraftID == draftID && keep(p) {
			picks = append(picks, p)
		}
	}
	slices.SortStableFunc(picks, func(a, b models.Pick) int { return a.PickedAt.Compare(b.PickedAt) })
	return picks
}

func (s *Store) ListBannedDrivers(ctx context.Context, draftID, userID uuid.UUID) ([]int, error) {
	defer s.rlock()()
	var ids []int
	for _, p := range s.data.picks {
		if p.DraftID == draftID && p.UserID == userID && p.IsBanned {
			ids = append(ids, p.DriverID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) HasBanAgainst(ctx context.Context, draftID, bannedBy, targetUserID uuid.UUID) (bool, error) {
	defer s.rlock()()
	for _, p := range s.data.picks {
		if p.DraftID == draftID && p.UserID == targetUserID && p.IsBanned && p.BannedBy != nil && *p.BannedBy == bannedBy {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) BanPick(ctx context.Context, pickID, bannedBy uuid.UUID, at time.Time) error {
	defer s.lock()()
	for i, p := range s.data.picks {
		if p.ID != pickID {
			continue
		}
		if p.IsBanned {
			return conflict("pick already banned")
		}
		by, when := bannedBy, at
		p.IsBanned = true
		p.BannedBy = &by
		p.BannedAt = &when
		s.data.picks[i] = p
		return nil
	}
	return notFound("pick")
}

func (s *Store) ConsumeBanCredit(ctx context.Context, draftID, scopeID uuid.UUID, isTeamScope bool, initial int) (int, error) {
	defer s.lock()()
	key := creditKey{draftID: draftID, scopeID: scopeID}
	credit, ok := s.data.credits[key]
	if !ok {
		credit = models.BanCredit{
			DraftID:       draftID,
			ScopeID:       scopeID,
			IsTeamScope:   isTeamScope,
			BansRemaining: initial,
		}
	}
	if credit.BansRemaining <= 0 {
		return 0, repository.ErrNoBanCredit
	}
	credit.BansRemaining--
	s.data.credits[key] = credit
	return credit.BansRemaining, nil
}

func (s *Store) GetBanCredit(ctx context.Context, draftID, scopeID uuid.UUID) (*models.BanCredit, error) {
	defer s.rlock()()
	credit, ok := s.data.credits[creditKey{draftID: draftID, scopeID: scopeID}]
	if !ok {
		return nil, notFound("ban credit")
	}
	return &credit, nil
}

func (s *Store) UpsertAutopickPreference(ctx context.Context, pref models.AutopickPreference) (*models.AutopickPreference, error) {
	defer s.lock()()
	pref.DriverIDs = slices.Clone(pref.DriverIDs)
	s.data.prefs[prefKey{leagueID: pref.LeagueID, userID: pref.UserID}] = pref
	return &pref, nil
}

func (s *Store) GetAutopickPreference(ctx context.Context, leagueID, userID uuid.UUID) (*models.AutopickPreference, error) {
	defer s.rlock()()
	pref, ok := s.data.prefs[prefKey{leagueID: leagueID, userID: userID}]
	if !ok {
		return nil, notFound("autopick preference")
	}
	pref.DriverIDs = slices.Clone(pref.DriverIDs)
	return &pref, nil
}
