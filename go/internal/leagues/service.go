package leagues

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/httputil"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// LeaguesApp defines what the service layer needs from the leagues application
type LeaguesApp interface {
	CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error)
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	AddMember(ctx context.Context, leagueID, userID uuid.UUID) (*models.Member, error)
	SetPickOrderRank(ctx context.Context, leagueID, requesterID, userID uuid.UUID, rank *int) error
	CreateTeam(ctx context.Context, req CreateTeamRequest) (*models.Team, error)
	ResizeTeam(ctx context.Context, teamID, requesterID uuid.UUID, size int) (*models.Team, error)
	AssignTeamMember(ctx context.Context, teamID, requesterID, userID uuid.UUID) error
	RemoveTeamMember(ctx context.Context, teamID, requesterID, userID uuid.UUID) error
	ValidateTeamChange(ctx context.Context, leagueID uuid.UUID, prospectiveSizes []int) (*TeamChangeResult, error)
	MembersOf(ctx context.Context, leagueID uuid.UUID) ([]models.Member, error)
	TeamsOf(ctx context.Context, leagueID uuid.UUID) ([]models.TeamRoster, error)
}

// Service exposes league membership and team formation over HTTP
type Service struct {
	app LeaguesApp
}

func NewService(app LeaguesApp) *Service {
	return &Service{app: app}
}

func (s *Service) Register(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.With(requireUser).Post("/v1/leagues", s.createLeague)
	r.Get("/v1/leagues/{leagueID}", s.getLeague)
	r.Get("/v1/leagues/{leagueID}/members", s.listMembers)
	r.With(requireUser).Post("/v1/leagues/{leagueID}/members", s.join)
	r.With(requireUser).Put("/v1/leagues/{leagueID}/members/{userID}/rank", s.setRank)
	r.Get("/v1/leagues/{leagueID}/teams", s.listTeams)
	r.With(requireUser).Post("/v1/leagues/{leagueID}/teams", s.createTeam)
	r.Post("/v1/leagues/{leagueID}/teams/validate", s.validateTeams)
	r.With(requireUser).Put("/v1/teams/{teamID}/size", s.resizeTeam)
	r.With(requireUser).Post("/v1/teams/{teamID}/members", s.assignMember)
	r.With(requireUser).Delete("/v1/teams/{teamID}/members/{userID}", s.removeMember)
}

type rankRequest struct {
	Rank *int `json:"rank"`
}

type sizeRequest struct {
	Size int `json:"size"`
}

type assignRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type validateRequest struct {
	Sizes []int `json:"sizes"`
}

func (s *Service) createLeague(w http.ResponseWriter, r *http.Request) {
	var req CreateLeagueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	ownerID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	req.OwnerID = ownerID

	league, err := s.app.CreateLeague(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, league)
}

func (s *Service) getLeague(w http.ResponseWriter, r *http.Request) {
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	league, err := s.app.GetLeague(r.Context(), leagueID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, league)
}

func (s *Service) listMembers(w http.ResponseWriter, r *http.Request) {
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	members, err := s.app.MembersOf(r.Context(), leagueID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	httputil.WriteJSON(w, http.StatusOK, members)
}

// join seats the caller in the league
func (s *Service) join(w http.ResponseWriter, r *http.Request) {
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	member, err := s.app.AddMember(r.Context(), leagueID, userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, member)
}

func (s *Service) setRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	userID, err := httputil.UUIDParam(r, "userID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	requesterID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := s.app.SetPickOrderRank(r.Context(), leagueID, requesterID, userID, req.Rank); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) listTeams(w http.ResponseWriter, r *http.Request) {
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	teams, err := s.app.TeamsOf(r.Context(), leagueID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if teams == nil {
		teams = []models.TeamRoster{}
	}
	httputil.WriteJSON(w, http.StatusOK, teams)
}

func (s *Service) createTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	var err error
	if req.LeagueID, err = httputil.UUIDParam(r, "leagueID"); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.RequesterID, err = auth.UserFrom(r.Context()); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	team, err := s.app.CreateTeam(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, team)
}

func (s *Service) validateTeams(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	result, err := s.app.ValidateTeamChange(r.Context(), leagueID, req.Sizes)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (s *Service) resizeTeam(w http.ResponseWriter, r *http.Request) {
	var req sizeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	teamID, err := httputil.UUIDParam(r, "teamID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	requesterID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	team, err := s.app.ResizeTeam(r.Context(), teamID, requesterID, req.Size)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, team)
}

func (s *Service) assignMember(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	teamID, err := httputil.UUIDParam(r, "teamID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	requesterID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	// a missing user_id seats the caller
	if req.UserID == uuid.Nil {
		req.UserID = requesterID
	}
	if err := s.app.AssignTeamMember(r.Context(), teamID, requesterID, req.UserID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) removeMember(w http.ResponseWriter, r *http.Request) {
	teamID, err := httputil.UUIDParam(r, "teamID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	userID, err := httputil.UUIDParam(r, "userID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	requesterID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := s.app.RemoveTeamMember(r.Context(), teamID, requesterID, userID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
