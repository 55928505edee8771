package memstore

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/models"
)

func (s *Store) ActivateLeague(ctx context.Context, leagueID uuid.UUID) error {
	defer s.lock()()
	league, ok := s.data.leagues[leagueID]
	if !ok || league.Status != models.LeagueStatusPending {
		return conflict("league is not pending")
	}
	league.Status = models.LeagueStatusActive
	s.data.leagues[leagueID] = league
	return nil
}

func (s *Store) CreateDraft(ctx context.Context, draft models.Draft) (*models.Draft, error) {
	defer s.lock()()
	for _, d := range s.data.drafts {
		if d.ID == draft.ID || (d.LeagueID == draft.LeagueID && d.RaceID == draft.RaceID) {
			return nil, conflict("draft already exists")
		}
	}
	draft.PickOrder = slices.Clone(draft.PickOrder)
	draft.CurrentPickIndex = 0
	draft.Status = models.DraftStatusInProgress
	s.data.drafts[draft.ID] = draft
	return copyDraft(draft), nil
}

func (s *Store) GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error) {
	defer s.rlock()()
	draft, ok := s.data.drafts[id]
	if !ok {
		return nil, notFound("draft")
	}
	return copyDraft(draft), nil
}

func (s *Store) ListDraftsByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Draft, error) {
	defer s.rlock()()
	var drafts []models.Draft
	for _, d := range s.data.drafts {
		if d.LeagueID == leagueID {
			drafts = append(drafts, *copyDraft(d))
		}
	}
	slices.SortFunc(drafts, func(a, b models.Draft) int {
		return s.data.races[a.RaceID].Round - s.data.races[b.RaceID].Round
	})
	return drafts, nil
}

func (s *Store) ListOpenDrafts(ctx context.Context, now time.Time) ([]repository.OpenDraft, error) {
	defer s.rlock()()
	var open []repository.OpenDraft
	for _, d := range s.data.drafts {
		race, ok := s.data.races[d.RaceID]
		if !ok || d.IsComplete() || !race.StartTime.After(now) {
			continue
		}
		open = append(open, repository.OpenDraft{
			Draft:     *copyDraft(d),
			FP1Time:   race.FP1Time,
			StartTime: race.StartTime,
		})
	}
	slices.SortFunc(open, func(a, b repository.OpenDraft) int {
		if c := a.FP1Time.Compare(b.FP1Time); c != 0 {
			return c
		}
		return slices.Compare(a.Draft.ID[:], b.Draft.ID[:])
	})
	return open, nil
}

func (s *Store) AdvancePickIndex(ctx context.Context, draftID uuid.UUID, proposed int) (int, error) {
	defer s.lock()()
	draft, ok := s.data.drafts[draftID]
	if !ok {
		return 0, notFound("draft")
	}
	draft.CurrentPickIndex = max(draft.CurrentPickIndex, proposed)
	draft.Status = models.DraftStatusInProgress
	if draft.IsComplete() {
		draft.Status = models.DraftStatusComplete
	}
	s.data.drafts[draftID] = draft
	return draft.CurrentPickIndex, nil
}

func (s *Store) RewindPickIndex(ctx context.Context, draftID uuid.UUID, index int) error {
	defer s.lock()()
	draft, ok := s.data.drafts[draftID]
	if !ok {
		return notFound("draft")
	}
	draft.CurrentPickIndex = index
	draft.Status = models.DraftStatusInProgress
	s.data.drafts[draftID] = draft
	return nil
}

func copyDraft(d models.Draft) *models.Draft {
	d.PickOrder = slices.Clone(d.PickOrder)
	return &d
}
