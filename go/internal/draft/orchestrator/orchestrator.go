// Package orchestrator runs the deadline sweep: on every tick it walks each
// open draft past its expired turns, autopicking from the turn holder's
// preference list where it can.
package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/gridpick/go/internal/draft/deadline"
	"github.com/mcdev12/gridpick/go/internal/draft/notify"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/rs/zerolog/log"
)

// Config controls the sweep cadence and parallelism.
type Config struct {
	Interval      time.Duration
	Workers       int
	FirstHalfLead time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:      time.Minute,
		Workers:       4,
		FirstHalfLead: deadline.DefaultFirstHalfLead,
	}
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Drafts    int `json:"drafts"`
	Advanced  int `json:"advanced"`
	Autopicks int `json:"autopicks"`
	Failures  int `json:"failures"`
}

type draftOutcome struct {
	advanced  bool
	autopicks int
	err       error
}

// Orchestrator is the deadline sweeper. It coordinates with request handlers
// only through the store.
type Orchestrator struct {
	store      repository.Store
	strat      AutoPickStrategy
	notifier   notify.Notifier
	clock      clockwork.Clock
	metrics    MetricsCollector
	config     Config
	instanceID string

	// Track in-flight drafts so overlapping sweeps skip them
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewOrchestrator creates a sweeper. metrics may be nil.
func NewOrchestrator(store repository.Store, strat AutoPickStrategy, notifier notify.Notifier, clock clockwork.Clock, metrics MetricsCollector, config Config) *Orchestrator {
	if metrics == nil {
		metrics = NoOpMetricsCollector{}
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Orchestrator{
		store:      store,
		strat:      strat,
		notifier:   notifier,
		clock:      clock,
		metrics:    metrics,
		config:     config,
		instanceID: uuid.New().String()[:8],
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// SweepExpiredTurns resolves every expired turn of every open draft. A
// failing draft is logged and counted and does not stop the others.
func (o *Orchestrator) SweepExpiredTurns(ctx context.Context) (SweepResult, error) {
	start := o.clock.Now()
	open, err := o.store.ListOpenDrafts(ctx, start)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list open drafts: %w", err)
	}

	result := SweepResult{Drafts: len(open)}
	for outcome := range o.dispatch(ctx, open, start) {
		if outcome.err != nil {
			result.Failures++
			continue
		}
		if outcome.advanced {
			result.Advanced++
		}
		result.Autopicks += outcome.autopicks
	}

	o.metrics.RecordSweep(result, o.clock.Since(start))
	log.Info().
		Str("instance", o.instanceID).
		Int("drafts", result.Drafts).
		Int("advanced", result.Advanced).
		Int("autopicks", result.Autopicks).
		Int("failures", result.Failures).
		Msg("sweep finished")
	return result, nil
}

// sweepDraft walks the draft's cursor past every expired turn and persists
// the furthest index reached.
func (o *Orchestrator) sweepDraft(ctx context.Context, od repository.OpenDraft, now time.Time) draftOutcome {
	d := od.Draft
	if !od.StartTime.After(now) {
		return draftOutcome{}
	}

	deadlines := deadline.Compute(od.FP1Time, len(d.PickOrder), o.config.FirstHalfLead)
	from := d.CurrentPickIndex
	idx := from
	var (
		autopicks int
		lastPick  uuid.UUID
		walkErr   error
	)
	for idx < len(d.PickOrder) && deadlines.Expired(idx, now) {
		turnUser := d.TurnUser(idx)
		mirror := d.IsMirrorSlot(idx)

		has, err := o.store.HasActivePick(ctx, d.ID, turnUser, mirror)
		if err != nil {
			walkErr = err
			break
		}
		if !has {
			picked, err := o.strat.Autopick(ctx, o.store, &d, turnUser, mirror)
			if err != nil {
				walkErr = err
				break
			}
			if picked != nil {
				autopicks++
				lastPick = picked.ID
				log.Info().
					Str("draft_id", d.ID.String()).
					Str("user_id", turnUser.String()).
					Int("driver_id", picked.DriverID).
					Int("pick_index", idx).
					Msg("autopicked expired turn")
			}
		}
		idx++
	}

	outcome := draftOutcome{autopicks: autopicks, err: walkErr}
	if idx == from {
		return outcome
	}

	stored, err := o.store.AdvancePickIndex(ctx, d.ID, idx)
	if err != nil {
		outcome.err = err
		return outcome
	}
	outcome.advanced = stored > from

	log.Info().
		Str("draft_id", d.ID.String()).
		Int("from", from).
		Int("to", stored).
		Int("autopicks", autopicks).
		Msg("advanced expired turns")

	if next := d.TurnUser(stored); next != uuid.Nil && next != d.TurnUser(from) {
		notify.Send(ctx, o.notifier, notify.Turn{
			DraftID:   d.ID,
			LeagueID:  d.LeagueID,
			RaceID:    d.RaceID,
			UserID:    next,
			PickIndex: stored,
			Deadline:  deadlines.For(stored),
			Cause:     lastPick,
		})
	}
	return outcome
}
