package memstore

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/models"
)

func (s *Store) CreateLeague(ctx context.Context, league models.League) (*models.League, error) {
	defer s.lock()()
	if _, ok := s.data.leagues[league.ID]; ok {
		return nil, conflict("league already exists")
	}
	s.data.leagues[league.ID] = league
	return &league, nil
}

func (s *Store) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	league, ok := s.data.leagues[id]
	if !ok {
		return nil, notFound("league")
	}
	return &league, nil
}

func (s *Store) AddMember(ctx context.Context, leagueID, userID uuid.UUID, joinedAt time.Time) (*models.Member, error) {
	defer s.lock()()
	if _, ok := s.data.leagues[leagueID]; !ok {
		return nil, fmt.Errorf("%w: league does not exist", apperr.ErrBadRequest)
	}
	for _, m := range s.data.members[leagueID] {
		if m.UserID == userID {
			return nil, conflict("user is already a member")
		}
	}
	member := models.Member{LeagueID: leagueID, UserID: userID, JoinedAt: joinedAt}
	s.data.members[leagueID] = append(s.data.members[leagueID], member)
	return &member, nil
}

func (s *Store) GetMember(ctx context.Context, leagueID, userID uuid.UUID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.data.members[leagueID] {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, notFound("league member")
}

func (s *Store) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.data.members[leagueID]), nil
}

func (s *Store) SetMemberPickOrder(ctx context.Context, leagueID, userID uuid.UUID, rank *int) error {
	defer s.lock()()
	members := s.data.members[leagueID]
	for i, m := range members {
		if m.UserID != userID {
			continue
		}
		if rank != nil {
			r := *rank
			m.PickOrder = &r
		} else {
			m.PickOrder = nil
		}
		members[i] = m
		return nil
	}
	return notFound("league member")
}

func (s *Store) CreateTeam(ctx context.Context, team models.Team) (*models.Team, error) {
	defer s.lock()()
	if _, ok := s.data.leagues[team.LeagueID]; !ok {
		return nil, fmt.Errorf("%w: league does not exist", apperr.ErrBadRequest)
	}
	if team.Size < 2 {
		return nil, fmt.Errorf("%w: team size must be at least 2", apperr.ErrBadRequest)
	}
	for _, t := range s.data.teams {
		if t.LeagueID == team.LeagueID && t.Name == team.Name {
			return nil, conflict("team name already taken")
		}
	}
	s.data.teams[team.ID] = team
	return &team, nil
}

func (s *Store) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.data.teams[id]
	if !ok {
		return nil, notFound("team")
	}
	return &team, nil
}

func (s *Store) ListTeams(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.teamsOf(leagueID), nil
}

func (s *Store) teamsOf(leagueID uuid.UUID) []models.Team {
	var teams []models.Team
	for _, t := range s.data.teams {
		if t.LeagueID == leagueID {
			teams = append(teams, t)
		}
	}
	slices.SortFunc(teams, func(a, b models.Team) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return teams
}

func (s *Store) UpdateTeamSize(ctx context.Context, id uuid.UUID, size int) (*models.Team, error) {
	defer s.lock()()
	team, ok := s.data.teams[id]
	if !ok {
		return nil, notFound("team")
	}
	if size < 2 {
		return nil, fmt.Errorf("%w: team size must be at least 2", apperr.ErrBadRequest)
	}
	team.Size = size
	s.data.teams[id] = team
	return &team, nil
}

func (s *Store) AddTeamMember(ctx context.Context, teamID, leagueID, userID uuid.UUID) error {
	defer s.lock()()
	if _, ok := s.data.teams[teamID]; !ok {
		return fmt.Errorf("%w: team does not exist", apperr.ErrBadRequest)
	}
	isMember := false
	for _, m := range s.data.members[leagueID] {
		if m.UserID == userID {
			isMember = true
			break
		}
	}
	if !isMember {
		return fmt.Errorf("%w: user is not a league member", apperr.ErrBadRequest)
	}
	if _, ok := s.teamOf(leagueID, userID); ok {
		return conflict("user is already on a team")
	}
	s.data.teamMembers[teamID] = append(s.data.teamMembers[teamID], userID)
	return nil
}

func (s *Store) RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	defer s.lock()()
	members := s.data.teamMembers[teamID]
	i := slices.Index(members, userID)
	if i < 0 {
		return notFound("team member")
	}
	s.data.teamMembers[teamID] = slices.Delete(slices.Clone(members), i, i+1)
	return nil
}

func (s *Store) ListTeamRosters(ctx context.Context, leagueID uuid.UUID) ([]models.TeamRoster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teams := s.teamsOf(leagueID)
	rosters := make([]models.TeamRoster, len(teams))
	for i, t := range teams {
		rosters[i] = models.TeamRoster{TeamID: t.ID, Members: slices.Clone(s.data.teamMembers[t.ID])}
	}
	return rosters, nil
}

func (s *Store) TeamOf(ctx context.Context, leagueID, userID uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	teamID, ok := s.teamOf(leagueID, userID)
	return teamID, ok, nil
}

func (s *Store) teamOf(leagueID, userID uuid.UUID) (uuid.UUID, bool) {
	for id, t := range s.data.teams {
		if t.LeagueID != leagueID {
			continue
		}
		if slices.Contains(s.data.teamMembers[id], userID) {
			return id, true
		}
	}
	return uuid.Nil, false
}
