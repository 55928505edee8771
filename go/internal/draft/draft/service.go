package draft

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/httputil"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// DraftApp defines what the service layer needs from the draft application
type DraftApp interface {
	ActivateDraft(ctx context.Context, leagueID, requesterID uuid.UUID) (*ActivateResult, error)
	GetDraft(ctx context.Context, id uuid.UUID) (*models.Draft, error)
	ListLeagueDrafts(ctx context.Context, leagueID uuid.UUID) ([]models.Draft, error)
	GetPickOrder(ctx context.Context, draftID uuid.UUID) (*PickOrder, error)
	GetDeadlines(ctx context.Context, draftID uuid.UUID) (*Deadlines, error)
}

// Service exposes draft activation and read queries over HTTP
type Service struct {
	app DraftApp
}

func NewService(app DraftApp) *Service {
	return &Service{app: app}
}

func (s *Service) Register(r chi.Router, requireUser func(http.Handler) http.Handler) {
	r.With(requireUser).Post("/v1/leagues/{leagueID}/activate", s.activate)
	r.Get("/v1/leagues/{leagueID}/drafts", s.listDrafts)
	r.Get("/v1/drafts/{draftID}", s.getDraft)
	r.Get("/v1/drafts/{draftID}/pick-order", s.getPickOrder)
	r.Get("/v1/drafts/{draftID}/deadlines", s.getDeadlines)
}

func (s *Service) activate(w http.ResponseWriter, r *http.Request) {
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
	result, err := s.app.ActivateDraft(r.Context(), leagueID, userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (s *Service) listDrafts(w http.ResponseWriter, r *http.Request) {
	leagueID, err := httputil.UUIDParam(r, "leagueID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	drafts, err := s.app.ListLeagueDrafts(r.Context(), leagueID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	httputil.WriteJSON(w, http.StatusOK, drafts)
}

func (s *Service) getDraft(w http.ResponseWriter, r *http.Request) {
	draftID, err := httputil.UUIDParam(r, "draftID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	d, err := s.app.GetDraft(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (s *Service) getPickOrder(w http.ResponseWriter, r *http.Request) {
	draftID, err := httputil.UUIDParam(r, "draftID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	po, err := s.app.GetPickOrder(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, po)
}

func (s *Service) getDeadlines(w http.ResponseWriter, r *http.Request) {
	draftID, err := httputil.UUIDParam(r, "draftID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	d, err := s.app.GetDeadlines(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
