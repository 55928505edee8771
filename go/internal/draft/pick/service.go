package pick

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/httputil"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// PickApp defines what the service layer needs from the pick application
type PickApp interface {
	MakePick(ctx context.Context, req MakePickRequest) (*DraftState, error)
	BanPick(ctx context.Context, req BanPickRequest) (*DraftState, error)
	GetDraftState(ctx context.Context, draftID uuid.UUID) (*DraftState, error)
	ListPicks(ctx context.Context, draftID uuid.UUID) ([]models.Pick, error)
	BanCredit(ctx context.Context, draftID, requesterID uuid.UUID) (*models.BanCredit, error)
	UpsertAutopickPreference(ctx context.Context, req UpsertAutopickRequest) (*models.AutopickPreference, error)
	GetAutopickPreference(ctx context.Context, leagueID, userID uuid.UUID) (*models.AutopickPreference, error)
}

// Service exposes picks, bans and autopick preferences over HTTP
type Service struct {
	app PickApp
}

func NewService(app PickApp) *Service {
	return &Service{app: app}
}

// Register mounts the routes. requireUser guards every route that acts as
// the caller.
func (s *Service) Register(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.Get("/v1/drafts/{draftID}/state", s.getState)
	r.Get("/v1/drafts/{draftID}/picks", s.listPicks)
	r.With(requireUser).Post("/v1/drafts/{draftID}/picks", s.makePick)
	r.With(requireUser).Post("/v1/drafts/{draftID}/bans", s.banPick)
	r.With(requireUser).Get("/v1/drafts/{draftID}/bans/credit", s.banCredit)
	r.With(requireUser).Get("/v1/leagues/{leagueID}/autopick", s.getAutopick)
	r.With(requireUser).Put("/v1/leagues/{leagueID}/autopick", s.putAutopick)
}

func (s *Service) makePick(w http.ResponseWriter, r *http.Request) {
	var req MakePickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	var err error
	if req.DraftID, err = httputil.UUIDParam(r, "draftID"); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.RequesterID, err = auth.UserFrom(r.Context()); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	state, err := s.app.MakePick(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, state)
}

func (s *Service) banPick(w http.ResponseWriter, r *http.Request) {
	var req BanPickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	var err error
	if req.DraftID, err = httputil.UUIDParam(r, "draftID"); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.RequesterID, err = auth.UserFrom(r.Context()); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	state, err := s.app.BanPick(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (s *Service) getState(w http.ResponseWriter, r *http.Request) {
	draftID, err := httputil.UUIDParam(r, "draftID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	state, err := s.app.GetDraftState(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (s *Service) listPicks(w http.ResponseWriter, r *http.Request) {
	draftID, err := httputil.UUIDParam(r, "draftID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	picks, err := s.app.ListPicks(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, picks)
}

func (s *Service) banCredit(w http.ResponseWriter, r *http.Request) {
	draftID, err := httputil.UUIDParam(r, "draftID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	userID, err := auth.UserFrom(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	credit, err := s.app.BanCredit(r.Context(), draftID, userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, credit)
}

func (s *Service) getAutopick(w http.ResponseWriter, r *http.Request) {
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
	pref, err := s.app.GetAutopickPreference(r.Context(), leagueID, userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}

func (s *Service) putAutopick(w http.ResponseWriter, r *http.Request) {
	var req UpsertAutopickRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	var err error
	if req.LeagueID, err = httputil.UUIDParam(r, "leagueID"); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.UserID, err = auth.UserFrom(r.Context()); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	pref, err := s.app.UpsertAutopickPreference(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}
