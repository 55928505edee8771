package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/gridpick/go/internal/draft/repository"
	"github.com/rs/zerolog/log"
)

// dispatch fans open drafts out to a bounded pool of workers and streams
// back one outcome per draft. The channel closes once every worker is done.
func (o *Orchestrator) dispatch(ctx context.Context, open []repository.OpenDraft, now time.Time) <-chan draftOutcome {
	workCh := make(chan repository.OpenDraft)
	outCh := make(chan draftOutcome, len(open))

	var wg sync.WaitGroup
	for i := 0; i < min(o.config.Workers, len(open)); i++ {
		wg.Add(1)
		go o.worker(ctx, &wg, i, workCh, outCh, now)
	}

	go func() {
		defer close(outCh)
		defer wg.Wait()
		defer close(workCh)
		for _, od := range open {
			select {
			case workCh <- od:
			case <-ctx.Done():
				return
			}
		}
	}()
	return outCh
}

// worker sweeps drafts from workCh until it is closed
func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int, workCh <-chan repository.OpenDraft, outCh chan<- draftOutcome, now time.Time) {
	defer wg.Done()

	for od := range workCh {
		draftID := od.Draft.ID
		if !o.claim(draftID) {
			log.Debug().
				Str("draft_id", draftID.String()).
				Str("instance", o.instanceID).
				Msg("draft already being swept")
			outCh <- draftOutcome{}
			continue
		}

		outcome := o.sweepDraft(ctx, od, now)
		o.release(draftID)

		if outcome.err != nil {
			log.Error().
				Err(outcome.err).
				Str("draft_id", draftID.String()).
				Str("instance", o.instanceID).
				Int("worker_id", workerID).
				Msg("sweep of draft failed")
		}
		outCh <- outcome
	}
}

func (o *Orchestrator) claim(draftID uuid.UUID) bool {
	o.inFlightMu.Lock()
	defer o.inFlightMu.Unlock()
	if o.inFlight[draftID] {
		return false
	}
	o.inFlight[draftID] = true
	return true
}

func (o *Orchestrator) release(draftID uuid.UUID) {
	o.inFlightMu.Lock()
	defer o.inFlightMu.Unlock()
	delete(o.inFlight, draftID)
}
