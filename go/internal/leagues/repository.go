package leagues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/leagues/db"
	"github.com/mcdev12/gridpick/go/internal/models"
	"github.com/mcdev12/gridpick/go/internal/sqlutil"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateLeague(ctx context.Context, arg db.CreateLeagueParams) (db.League, error)
	GetLeague(ctx context.Context, id uuid.UUID) (db.League, error)
	AddLeagueMember(ctx context.Context, arg db.AddLeagueMemberParams) (db.LeagueMember, error)
	GetLeagueMember(ctx context.Context, arg db.GetLeagueMemberParams) (db.LeagueMember, error)
	ListLeagueMembers(ctx context.Context, leagueID uuid.UUID) ([]db.LeagueMember, error)
	SetMemberPickOrder(ctx context.Context, arg db.SetMemberPickOrderParams) (int64, error)
	CreateTeam(ctx context.Context, arg db.CreateTeamParams) (db.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (db.Team, error)
	ListTeamsByLeague(ctx context.Context, leagueID uuid.UUID) ([]db.Team, error)
	UpdateTeamSize(ctx context.Context, arg db.UpdateTeamSizeParams) (db.Team, error)
	AddTeamMember(ctx context.Context, arg db.AddTeamMemberParams) error
	RemoveTeamMember(ctx context.Context, arg db.RemoveTeamMemberParams) (int64, error)
	ListTeamMembersByLeague(ctx context.Context, leagueID uuid.UUID) ([]db.ListTeamMembersByLeagueRow, error)
	GetTeamIDForMember(ctx context.Context, arg db.GetTeamIDForMemberParams) (uuid.UUID, error)
}

// Repository implements league data access operations
type Repository struct {
	queries Querier
}

// NewRepository creates a new leagues repository
func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

func (r *Repository) CreateLeague(ctx context.Context, league models.League) (*models.League, error) {
	row, err := r.queries.CreateLeague(ctx, db.CreateLeagueParams{
		ID:               league.ID,
		Name:             league.Name,
		OwnerID:          league.OwnerID,
		Season:           int32(league.Season),
		TeamsEnabled:     league.TeamsEnabled,
		BansEnabled:      league.BansEnabled,
		MirrorEnabled:    league.MirrorEnabled,
		MaxPlayers:       int32(league.MaxPlayers),
		InitialRaceRound: int32(league.InitialRaceRound),
		CreatedAt:        league.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create league: %w", sqlutil.Classify(err))
	}
	return dbLeagueToModel(row), nil
}

func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	row, err := r.queries.GetLeague(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", sqlutil.Classify(err))
	}
	return dbLeagueToModel(row), nil
}

func (r *Repository) AddMember(ctx context.Context, leagueID, userID uuid.UUID, joinedAt time.Time) (*models.Member, error) {
	row, err := r.queries.AddLeagueMember(ctx, db.AddLeagueMemberParams{
		LeagueID: leagueID,
		UserID:   userID,
		JoinedAt: joinedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add league member: %w", sqlutil.Classify(err))
	}
	return dbMemberToModel(row), nil
}

func (r *Repository) GetMember(ctx context.Context, leagueID, userID uuid.UUID) (*models.Member, error) {
	row, err := r.queries.GetLeagueMember(ctx, db.GetLeagueMemberParams{LeagueID: leagueID, UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get league member: %w", sqlutil.Classify(err))
	}
	return dbMemberToModel(row), nil
}

func (r *Repository) ListMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error) {
	rows, err := r.queries.ListLeagueMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list league members: %w", err)
	}
	members := make([]models.Member, len(rows))
	for i, row := range rows {
		members[i] = *dbMemberToModel(row)
	}
	return members, nil
}

func (r *Repository) SetMemberPickOrder(ctx context.Context, leagueID, userID uuid.UUID, rank *int) error {
	n, err := r.queries.SetMemberPickOrder(ctx, db.SetMemberPickOrderParams{
		LeagueID:  leagueID,
		UserID:    userID,
		PickOrder: sqlutil.ToSqlInt32(rank),
	})
	if err != nil {
		return fmt.Errorf("failed to set pick order: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to set pick order: %w", sqlutil.Classify(sql.ErrNoRows))
	}
	return nil
}

func (r *Repository) CreateTeam(ctx context.Context, team models.Team) (*models.Team, error) {
	row, err := r.queries.CreateTeam(ctx, db.CreateTeamParams{
		ID:        team.ID,
		LeagueID:  team.LeagueID,
		Name:      team.Name,
		Size:      int32(team.Size),
		CreatedAt: team.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", sqlutil.Classify(err))
	}
	return dbTeamToModel(row), nil
}

func (r *Repository) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	row, err := r.queries.GetTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", sqlutil.Classify(err))
	}
	return dbTeamToModel(row), nil
}

func (r *Repository) ListTeams(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error) {
	rows, err := r.queries.ListTeamsByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	teams := make([]models.Team, len(rows))
	for i, row := range rows {
		teams[i] = *dbTeamToModel(row)
	}
	return teams, nil
}

func (r *Repository) UpdateTeamSize(ctx context.Context, id uuid.UUID, size int) (*models.Team, error) {
	row, err := r.queries.UpdateTeamSize(ctx, db.UpdateTeamSizeParams{ID: id, Size: int32(size)})
	if err != nil {
		return nil, fmt.Errorf("failed to resize team: %w", sqlutil.Classify(err))
	}
	return dbTeamToModel(row), nil
}

func (r *Repository) AddTeamMember(ctx context.Context, teamID, leagueID, userID uuid.UUID) error {
	err := r.queries.AddTeamMember(ctx, db.AddTeamMemberParams{
		TeamID:   teamID,
		LeagueID: leagueID,
		UserID:   userID,
	})
	if err != nil {
		return fmt.Errorf("failed to add team member: %w", sqlutil.Classify(err))
	}
	return nil
}

func (r *Repository) RemoveTeamMember(ctx context.Context, teamID, userID uuid.UUID) error {
	n, err := r.queries.RemoveTeamMember(ctx, db.RemoveTeamMemberParams{TeamID: teamID, UserID: userID})
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to remove team member: %w", sqlutil.Classify(sql.ErrNoRows))
	}
	return nil
}

// ListTeamRosters returns every team in the league with its members, empty
// teams included.
func (r *Repository) ListTeamRosters(ctx context.Context, leagueID uuid.UUID) ([]models.TeamRoster, error) {
	teams, err := r.ListTeams(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	rows, err := r.queries.ListTeamMembersByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}

	byTeam := make(map[uuid.UUID][]uuid.UUID, len(teams))
	for _, row := range rows {
		byTeam[row.TeamID] = append(byTeam[row.TeamID], row.UserID)
	}
	rosters := make([]models.TeamRoster, len(teams))
	for i, team := range teams {
		rosters[i] = models.TeamRoster{TeamID: team.ID, Members: byTeam[team.ID]}
	}
	return rosters, nil
}

func (r *Repository) TeamOf(ctx context.Context, leagueID, userID uuid.UUID) (uuid.UUID, bool, error) {
	teamID, err := r.queries.GetTeamIDForMember(ctx, db.GetTeamIDForMemberParams{LeagueID: leagueID, UserID: userID})
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get team for member: %w", err)
	}
	return teamID, true, nil
}

func dbLeagueToModel(l db.League) *models.League {
	return &models.League{
		ID:               l.ID,
		Name:             l.Name,
		OwnerID:          l.OwnerID,
		Season:           int(l.Season),
		Status:           models.LeagueStatus(l.Status),
		TeamsEnabled:     l.TeamsEnabled,
		BansEnabled:      l.BansEnabled,
		MirrorEnabled:    l.MirrorEnabled,
		MaxPlayers:       int(l.MaxPlayers),
		InitialRaceRound: int(l.InitialRaceRound),
		CreatedAt:        l.CreatedAt,
	}
}

func dbMemberToModel(m db.LeagueMember) *models.Member {
	return &models.Member{
		LeagueID:  m.LeagueID,
		UserID:    m.UserID,
		PickOrder: sqlutil.FromSqlInt32(m.PickOrder),
		JoinedAt:  m.JoinedAt,
	}
}

func dbTeamToModel(t db.Team) *models.Team {
	return &models.Team{
		ID:        t.ID,
		LeagueID:  t.LeagueID,
		Name:      t.Name,
		Size:      int(t.Size),
		CreatedAt: t.CreatedAt,
	}
}
