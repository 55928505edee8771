package orchestrator

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Run sweeps once immediately and then on every interval tick until ctx is
// cancelled. Sweep errors are logged and retried on the next tick.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().
		Str("instance", o.instanceID).
		Dur("interval", o.config.Interval).
		Int("workers", o.config.Workers).
		Msg("deadline sweeper started")

	ticker := o.clock.NewTicker(o.config.Interval)
	defer ticker.Stop()

	for {
		if _, err := o.SweepExpiredTurns(ctx); err != nil {
			o.metrics.RecordSweepError()
			log.Error().Err(err).Str("instance", o.instanceID).Msg("sweep failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Str("instance", o.instanceID).Msg("deadline sweeper stopped")
			return nil
		case <-ticker.Chan():
		}
	}
}
