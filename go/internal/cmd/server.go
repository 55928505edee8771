package main

import (
	"net/http"
	"time"

	"connectrpc.com/grpchealth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mcdev12/gridpick/go/internal/config"
	"github.com/mcdev12/gridpick/go/internal/draft/draft"
	"github.com/mcdev12/gridpick/go/internal/draft/pick"
	"github.com/mcdev12/gridpick/go/internal/httputil"
	"github.com/mcdev12/gridpick/go/internal/leagues"
	"github.com/mcdev12/gridpick/go/internal/races"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Service names reported by the health checker.
var healthServices = []string{
	"gridpick.v1.LeagueService",
	"gridpick.v1.DraftService",
	"gridpick.v1.PickService",
}

func setupServer(cfg config.Config, services *Services, gatherer prometheus.Gatherer) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if cfg.MaintenanceMode {
		r.Use(maintenance)
	}

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	registerServices(r, services)

	healthPath, healthHandler := grpchealth.NewHandler(grpchealth.NewStaticChecker(healthServices...))
	r.Handle(healthPath+"*", healthHandler)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:              cfg.Listen,
		Handler:           h2c.NewHandler(c.Handler(r), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func registerServices(r chi.Router, services *Services) {
	requireUser := services.Auth.Middleware

	leagues.NewService(services.Leagues).Register(r, requireUser)
	races.NewService(services.Races).Register(r)
	draft.NewService(services.Drafts).Register(r, requireUser)
	pick.NewService(services.Picks).Register(r, requireUser)
	if services.Gateway != nil {
		services.Gateway.Register(r, requireUser)
	}
}

// maintenance rejects every mutating request while reads keep working.
func maintenance(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
		default:
			w.Header().Set("Retry-After", "300")
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "maintenance in progress"})
		}
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
