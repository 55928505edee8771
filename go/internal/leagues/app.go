// Package leagues owns league membership and team formation. It is the
// membership provider the draft engine reads rosters from.
package leagues

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/apperr"
	"github.com/mcdev12/gridpick/go/internal/draft/teambalance"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/rs/zerolog/log"
)

// LeaguesRepository defines what the app layer needs from the repository
type LeaguesRepository interface {
	CreateLeague(ctx context.Context, league models.League) (*models.League, error)
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	AddMember(ctx context.Context, leagueID, userID uuid.UUID, joinedAt time.Time) (*models.Member, error)
	GetMember(ctx context.Context, leagueID, userID uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error)
	SetMemberPickOrder(ctx context.Context, leagueID, userID uuid.UUID, rank *int) error
	CreateTeam(ctx context.Context, team models.Team) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	ListTeams(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error)
	UpdateTeamSize(ctx context.Context, id uuid.UUID, size int) (*models.Team, error)
	AddTeamMember(ctx context.Context, teamID, leagueID, userID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error
	ListTeamRosters(ctx context.Context, leagueID uuid.UUID) ([]models.TeamRoster, error)
	TeamOf(ctx context.Context, leagueID, userID uuid.UUID) (uuid.UUID, bool, error)
}

// ConstructorCounter reports how many constructors a season's catalog has
type ConstructorCounter interface {
	ConstructorCount(ctx context.Context, season int) (int, error)
}

// App handles leagues business logic
type App struct {
	repo     LeaguesRepository
	calendar ConstructorCounter
	clock    clockwork.Clock
}

// NewApp creates a new leagues App
func NewApp(repo LeaguesRepository, calendar ConstructorCounter, clock clockwork.Clock) *App {
	return &App{
		repo:     repo,
		calendar: calendar,
		clock:    clock,
	}
}

// CreateLeague creates a pending league and seats its owner
func (a *App) CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error) {
	if err := a.validateCreateLeagueRequest(req); err != nil {
		return nil, err
	}

	now := a.clock.Now()
	league, err := a.repo.CreateLeague(ctx, models.League{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(req.Name),
		OwnerID:          req.OwnerID,
		Season:           req.Season,
		Status:           models.LeagueStatusPending,
		TeamsEnabled:     req.TeamsEnabled,
		BansEnabled:      req.BansEnabled,
		MirrorEnabled:    req.MirrorEnabled,
		MaxPlayers:       req.MaxPlayers,
		InitialRaceRound: req.InitialRaceRound,
		CreatedAt:        now,
	})
	if err != nil {
		return nil, err
	}
	if _, err := a.repo.AddMember(ctx, league.ID, req.OwnerID, now); err != nil {
		return nil, fmt.Errorf("failed to seat league owner: %w", err)
	}

	log.Info().
		Str("league_id", league.ID.String()).
		Str("owner_id", league.OwnerID.String()).
		Int("season", league.Season).
		Msg("created league")
	return league, nil
}

func (a *App) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	return a.repo.GetLeague(ctx, id)
}

// AddMember seats userID in a pending league that still has room
func (a *App) AddMember(ctx context.Context, leagueID, userID uuid.UUID) (*models.Member, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", apperr.ErrBadRequest)
	}
	league, err := a.pendingLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	members, err := a.repo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return nil, fmt.Errorf("%w: user is already a member", apperr.ErrConflict)
		}
	}
	if len(members) >= league.MaxPlayers {
		return nil, fmt.Errorf("%w: league is full (%d players)", apperr.ErrBadRequest, league.MaxPlayers)
	}

	member, err := a.repo.AddMember(ctx, leagueID, userID, a.clock.Now())
	if err != nil {
		return nil, err
	}
	log.Info().Str("league_id", leagueID.String()).Str("user_id", userID.String()).Msg("member joined league")
	return member, nil
}

// SetPickOrderRank lets the owner pin a member's turn. A nil rank clears it.
func (a *App) SetPickOrderRank(ctx context.Context, leagueID, requesterID, userID uuid.UUID, rank *int) error {
	league, err := a.pendingLeague(ctx, leagueID)
	if err != nil {
		return err
	}
	if league.OwnerID != requesterID {
		return fmt.Errorf("%w: only the league owner can set pick order", apperr.ErrForbidden)
	}
	if rank != nil {
		members, err := a.repo.ListMembers(ctx, leagueID)
		if err != nil {
			return err
		}
		if *rank < 1 || *rank > len(members) {
			return fmt.Errorf("%w: rank must be between 1 and %d", apperr.ErrBadRequest, len(members))
		}
	}
	return a.repo.SetMemberPickOrder(ctx, leagueID, userID, rank)
}

// CreateTeam declares a team of size seats if the league can still balance
func (a *App) CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: team name is required", apperr.ErrBadRequest)
	}
	league, err := a.teamLeagueForOwner(ctx, req.LeagueID, req.RequesterID)
	if err != nil {
		return nil, err
	}
	teams, err := a.repo.ListTeams(ctx, league.ID)
	if err != nil {
		return nil, err
	}

	sizes := append(teamSizes(teams), req.Size)
	if _, err := a.ValidateTeamChange(ctx, league.ID, sizes); err != nil {
		return nil, err
	}

	team, err := a.repo.CreateTeam(ctx, models.Team{
		ID:        uuid.New(),
		LeagueID:  league.ID,
		Name:      strings.TrimSpace(req.Name),
		Size:      req.Size,
		CreatedAt: a.clock.Now(),
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("league_id", league.ID.String()).
		Str("team_id", team.ID.String()).
		Int("size", team.Size).
		Msg("created team")
	return team, nil
}

// ResizeTeam changes a team's declared seat count
func (a *App) ResizeTeam(ctx context.Context, teamID, requesterID uuid.UUID, size int) (*models.Team, error) {
	team, err := a.repo.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if _, err := a.teamLeagueForOwner(ctx, team.LeagueID, requesterID); err != nil {
		return nil, err
	}
	rosters, err := a.repo.ListTeamRosters(ctx, team.LeagueID)
	if err != nil {
		return nil, err
	}
	for _, roster := range rosters {
		if roster.TeamID == teamID && len(roster.Members) > size {
			return nil, fmt.Errorf("%w: team already has %d members", apperr.ErrBadRequest, len(roster.Members))
		}
	}

	teams, err := a.repo.ListTeams(ctx, team.LeagueID)
	if err != nil {
		return nil, err
	}
	sizes := make([]int, len(teams))
	for i, t := range teams {
		sizes[i] = t.Size
		if t.ID == teamID {
			sizes[i] = size
		}
	}
	if _, err := a.ValidateTeamChange(ctx, team.LeagueID, sizes); err != nil {
		return nil, err
	}
	return a.repo.UpdateTeamSize(ctx, teamID, size)
}

// AssignTeamMember places a league member on a team with a free seat. The
// owner may assign anyone; members may assign themselves.
func (a *App) AssignTeamMember(ctx context.Context, teamID, requesterID, userID uuid.UUID) error {
	team, err := a.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	league, err := a.pendingLeague(ctx, team.LeagueID)
	if err != nil {
		return err
	}
	if !league.TeamsEnabled {
		return fmt.Errorf("%w: teams are not enabled for this league", apperr.ErrBadRequest)
	}
	if requesterID != league.OwnerID && requesterID != userID {
		return fmt.Errorf("%w: only the owner can assign other members", apperr.ErrForbidden)
	}
	if _, err := a.repo.GetMember(ctx, league.ID, userID); err != nil {
		return err
	}
	if _, assigned, err := a.repo.TeamOf(ctx, league.ID, userID); err != nil {
		return err
	} else if assigned {
		return fmt.Errorf("%w: member already belongs to a team", apperr.ErrConflict)
	}

	rosters, err := a.repo.ListTeamRosters(ctx, league.ID)
	if err != nil {
		return err
	}
	for _, roster := range rosters {
		if roster.TeamID == teamID && len(roster.Members) >= team.Size {
			return fmt.Errorf("%w: team is full", apperr.ErrBadRequest)
		}
	}
	teams, err := a.repo.ListTeams(ctx, league.ID)
	if err != nil {
		return err
	}
	if _, err := a.ValidateTeamChange(ctx, league.ID, teamSizes(teams)); err != nil {
		return err
	}

	if err := a.repo.AddTeamMember(ctx, teamID, league.ID, userID); err != nil {
		return err
	}
	log.Info().
		Str("league_id", league.ID.String()).
		Str("team_id", teamID.String()).
		Str("user_id", userID.String()).
		Msg("assigned team member")
	return nil
}

// RemoveTeamMember frees a seat on a team
func (a *App) RemoveTeamMember(ctx context.Context, teamID, requesterID, userID uuid.UUID) error {
	team, err := a.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	league, err := a.pendingLeague(ctx, team.LeagueID)
	if err != nil {
		return err
	}
	if requesterID != league.OwnerID && requesterID != userID {
		return fmt.Errorf("%w: only the owner can remove other members", apperr.ErrForbidden)
	}
	return a.repo.RemoveTeamMember(ctx, teamID, userID)
}

// ValidateTeamChange checks prospective team sizes against the league's
// current member count and the season's constructor count.
func (a *App) ValidateTeamChange(ctx context.Context, leagueID uuid.UUID, prospectiveSizes []int) (*TeamChangeResult, error) {
	league, err := a.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	members, err := a.repo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	constructors, err := a.calendar.ConstructorCount(ctx, league.Season)
	if err != nil {
		return nil, err
	}

	total := len(members)
	maxTeams, err := teambalance.MaxTeams(total, constructors)
	if err != nil {
		return nil, err
	}
	if err := teambalance.Validate(total, constructors, prospectiveSizes); err != nil {
		return nil, err
	}
	return &TeamChangeResult{
		TotalPlayers:     total,
		MaxTeams:         maxTeams,
		ProspectiveSizes: prospectiveSizes,
	}, nil
}

// MembersOf lists a league's members in join order
func (a *App) MembersOf(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	return a.repo.ListMembers(ctx, leagueID)
}

// TeamsOf lists a league's teams with their members
func (a *App) TeamsOf(ctx context.Context, leagueID uuid.UUID) ([]models.TeamRoster, error) {
	return a.repo.ListTeamRosters(ctx, leagueID)
}

// TeamOf returns the team userID belongs to, if any
func (a *App) TeamOf(ctx context.Context, leagueID, userID uuid.UUID) (uuid.UUID, bool, error) {
	return a.repo.TeamOf(ctx, leagueID, userID)
}

// IsMember reports whether userID holds a seat in the league
func (a *App) IsMember(ctx context.Context, leagueID, userID uuid.UUID) (bool, error) {
	_, err := a.repo.GetMember(ctx, leagueID, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (a *App) pendingLeague(ctx context.Context, leagueID uuid.UUID) (*models.League, error) {
	league, err := a.repo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !league.IsPending() {
		return nil, fmt.Errorf("%w: league draft has already been activated", apperr.ErrBadRequest)
	}
	return league, nil
}

func (a *App) teamLeagueForOwner(ctx context.Context, leagueID, requesterID uuid.UUID) (*models.League, error) {
	league, err := a.pendingLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if !league.TeamsEnabled {
		return nil, fmt.Errorf("%w: teams are not enabled for this league", apperr.ErrBadRequest)
	}
	if league.OwnerID != requesterID {
		return nil, fmt.Errorf("%w: only the league owner can manage teams", apperr.ErrForbidden)
	}
	return league, nil
}

func teamSizes(teams []models.Team) []int {
	sizes := make([]int, len(teams))
	for i, t := range teams {
		sizes[i] = t.Size
	}
	return sizes
}

// Validation methods

func (a *App) validateCreateLeagueRequest(req CreateLeagueRequest) error {
	if req.OwnerID == uuid.Nil {
		return fmt.Errorf("%w: owner_id is required", apperr.ErrBadRequest)
	}
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("%w: name is required", apperr.ErrBadRequest)
	}
	if req.Season <= 0 {
		return fmt.Errorf("%w: season is required", apperr.ErrBadRequest)
	}
	if req.MaxPlayers < 2 {
		return fmt.Errorf("%w: max_players must be at least 2", apperr.ErrBadRequest)
	}
	if req.InitialRaceRound < 1 {
		return fmt.Errorf("%w: initial_race_round must be at least 1", apperr.ErrBadRequest)
	}
	return nil
}
