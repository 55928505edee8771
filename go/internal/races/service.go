package races

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/httputil"
	"github.com/mcdev12/gridpick/go/internal/models"
)

// RacesApp defines what the service layer needs from the calendar
type RacesApp interface {
	GetRace(ctx context.Context, id uuid.UUID) (*models.Race, error)
	SeasonRaces(ctx context.Context, season int) ([]models.Race, error)
	SeasonDrivers(ctx context.Context, season int) ([]models.Driver, error)
}

// Service exposes the read-only season calendar
type Service struct {
	app RacesApp
}

func NewService(app RacesApp) *Service {
	return &Service{app: app}
}

func (s *Service) Register(r chi.Router) {
	r.Get("/v1/seasons/{season}/races", s.listRaces)
	r.Get("/v1/seasons/{season}/drivers", s.listDrivers)
	r.Get("/v1/races/{raceID}", s.getRace)
}

func (s *Service) listRaces(w http.ResponseWriter, r *http.Request) {
	season, err := httputil.IntParam(r, "season")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	races, err := s.app.SeasonRaces(r.Context(), season)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if races == nil {
		races = []models.Race{}
	}
	httputil.WriteJSON(w, http.StatusOK, races)
}

func (s *Service) listDrivers(w http.ResponseWriter, r *http.Request) {
	season, err := httputil.IntParam(r, "season")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	drivers, err := s.app.SeasonDrivers(r.Context(), season)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}
	httputil.WriteJSON(w, http.StatusOK, drivers)
}

func (s *Service) getRace(w http.ResponseWriter, r *http.Request) {
	raceID, err := httputil.UUIDParam(r, "raceID")
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	race, err := s.app.GetRace(r.Context(), raceID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, race)
}
