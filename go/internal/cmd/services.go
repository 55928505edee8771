package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/auth"
	"github.com/mcdev12/gridpick/go/internal/config"
	draftdb "github.com/mcdev12/gridpick/go/internal/draft/db"
	"github.com/mcdev12/gridpick/go/internal/draft/draft"
	"github.com/mcdev12/gridpick/go/internal/draft/gateway"
	"github.com/mcdev12/gridpick/go/internal/draft/notify"
	"github.com/mcdev12/gridpick/go/internal/draft/orchestrator"
	"github.com/mcdev12/gridpick/go/internal/draft/order"
	"github.com/mcdev12/gridpick/go/internal/draft/pick"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/mcdev12/gridpick/go/internal/leagues"
	leaguesdb "github.com/mcdev12/gridpick/go/internal/leagues/db"
	"github.com/mcdev12/gridpick/go/internal/memstore"
	"github.com/mcdev12/gridpick/go/internal/races"
	racesdb "github.com/mcdev12/gridpick/go/internal/races/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Services holds the wired application.
type Services struct {
	Store    repository.Store
	Leagues  *leagues.App
	Races    *races.App
	Drafts   *draft.App
	Picks    *pick.App
	Sweeper  *orchestrator.Orchestrator
	Notifier notify.Notifier
	Auth     *auth.Authenticator
	// Gateway is nil unless realtime delivery was requested.
	Gateway *gateway.Service

	closers []func() error
}

type serviceOptions struct {
	// Realtime starts the websocket gateway. Without a broker the gateway
	// is also the notifier.
	Realtime bool
	Registry prometheus.Registerer
}

func setupServices(ctx context.Context, cfg config.Config, clock clockwork.Clock, opts serviceOptions) (*Services, error) {
	s := &Services{Auth: auth.NewAuthenticator(cfg.Auth.JWTSecret)}

	var (
		leaguesRepo leagues.LeaguesRepository
		racesRepo   races.RacesRepository
	)
	switch cfg.Store {
	case config.StoreMemory:
		log.Warn().Msg("using in-memory store; state is lost on exit")
		mem := memstore.New()
		s.Store, leaguesRepo, racesRepo = mem, mem, mem
	default:
		database, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, database.Close)
		s.Store, leaguesRepo, racesRepo = postgresRepositories(database)
	}

	if err := s.setupNotifier(ctx, cfg, clock, opts.Realtime); err != nil {
		s.Close()
		return nil, err
	}

	s.Races = races.NewApp(racesRepo)
	s.Leagues = leagues.NewApp(leaguesRepo, s.Races, clock)
	s.Drafts = draft.NewApp(s.Store, s.Leagues, s.Races, order.NewBuilder(), s.Notifier, clock, cfg.Draft.FirstHalfLead)
	s.Picks = pick.NewApp(s.Store, s.Leagues, s.Races, s.Notifier, clock, pick.Config{
		FirstHalfLead: cfg.Draft.FirstHalfLead,
		StandInWindow: cfg.Draft.StandInWindow,
	})

	var metrics orchestrator.MetricsCollector
	if opts.Registry != nil {
		metrics = orchestrator.NewPrometheusMetrics(opts.Registry)
	}
	s.Sweeper = orchestrator.NewOrchestrator(
		s.Store,
		orchestrator.NewPreferenceStrategy(clock),
		s.Notifier,
		clock,
		metrics,
		orchestrator.Config{
			Interval:      cfg.Sweeper.Interval,
			Workers:       cfg.Sweeper.Workers,
			FirstHalfLead: cfg.Draft.FirstHalfLead,
		},
	)
	return s, nil
}

func postgresRepositories(database *sql.DB) (repository.Store, leagues.LeaguesRepository, races.RacesRepository) {
	return repository.NewRepository(draftdb.New(database), database),
		leagues.NewRepository(leaguesdb.New(database)),
		races.NewRepository(racesdb.New(database))
}

func (s *Services) setupNotifier(ctx context.Context, cfg config.Config, clock clockwork.Clock, realtime bool) error {
	useBroker := cfg.NATS.URL != ""

	if useBroker {
		jsCfg := notify.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.Stream
		publisher, err := notify.NewJetStreamNotifier(ctx, jsCfg, clock)
		if err != nil {
			return fmt.Errorf("failed to create notifier: %w", err)
		}
		s.closers = append(s.closers, publisher.Close)
		s.Notifier = publisher
	}

	if realtime {
		gwCfg := gateway.DefaultConfig()
		gwCfg.UseJetStream = useBroker
		gwCfg.JetStreamConfig.URL = cfg.NATS.URL
		gwCfg.JetStreamConfig.StreamName = cfg.NATS.Stream
		gw, err := gateway.NewService(ctx, gwCfg, clock)
		if err != nil {
			return fmt.Errorf("failed to create gateway: %w", err)
		}
		s.Gateway = gw
		if !useBroker {
			s.Notifier = gw.Notifier()
		}
	}

	if s.Notifier == nil {
		s.Notifier = notify.LogNotifier{}
	}
	return nil
}

// Close releases connections in reverse order of creation.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Error().Err(err).Msg("failed to close resource")
		}
	}
	s.closers = nil
}
