package draft

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/huddlehq/huddle/go/internal/apperrors"
)

// Orchestrator owns the pick clock: it sleeps until the soonest
// deadline across in-progress drafts, then hands expired drafts to a
// worker pool that fires the auto-pick fallback. State-changing calls
// on the App re-arm deadlines; Wake nudges the scheduler so a sooner
// deadline is noticed immediately.
type Orchestrator struct {
	app       *App
	clock     clockwork.Clock
	batchSize int

	wakeCh chan struct{}

	numWorkers int
	workCh     chan uuid.UUID

	// inFlight prevents the same draft being queued twice while a
	// worker is still processing it.
	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewOrchestrator creates an orchestrator over the draft App.
func NewOrchestrator(app *App, clock clockwork.Clock, batchSize int) *Orchestrator {
	const numWorkers = 4
	return &Orchestrator{
		app:        app,
		clock:      clock,
		batchSize:  batchSize,
		wakeCh:     make(chan struct{}, 1),
		numWorkers: numWorkers,
		workCh:     make(chan uuid.UUID, numWorkers*2),
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Wake nudges the scheduler to re-read the next deadline. Non-blocking;
// a pending wake is enough.
func (o *Orchestrator) Wake() {
	select {
	case o.wakeCh <- struct{}{}:
	default:
	}
}

const idlePollDuration = 5 * time.Second

// Run loops until the context is canceled, sleeping until the next
// deadline and dispatching expired drafts to the worker pool.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Int("workers", o.numWorkers).Msg("pick-clock scheduler started")

	var wg sync.WaitGroup
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer func() {
		cancelWorkers()
		close(o.workCh)
		wg.Wait()
	}()

	for i := 0; i < o.numWorkers; i++ {
		wg.Add(1)
		go o.worker(workerCtx, &wg, i)
	}

	timer := o.clock.NewTimer(0)
	defer timer.Stop()

	for {
		// Drain any pending wake so we do not spin on a stale signal.
		select {
		case <-o.wakeCh:
		default:
		}

		nd, err := o.app.NextDeadline(ctx)
		if err != nil {
			if apperrors.KindOf(err) != apperrors.KindNotFound {
				log.Error().Err(err).Msg("fetch next deadline failed")
			}
			if !o.sleep(ctx, timer, idlePollDuration) {
				return ctx.Err()
			}
			continue
		}

		if nd.Deadline == nil {
			// A draft is running but its clock is disarmed (paused
			// mid-write); poll again shortly.
			if !o.sleep(ctx, timer, idlePollDuration) {
				return ctx.Err()
			}
			continue
		}

		if wait := nd.Deadline.Sub(o.clock.Now()); wait > 0 {
			if !o.sleep(ctx, timer, wait) {
				return ctx.Err()
			}
			continue
		}

		due, err := o.app.DraftsDue(ctx, o.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("fetch due drafts failed")
			if !o.sleep(ctx, timer, time.Second) {
				return ctx.Err()
			}
			continue
		}

		for _, draftID := range due {
			o.inFlightMu.Lock()
			if o.inFlight[draftID] {
				o.inFlightMu.Unlock()
				continue
			}
			o.inFlight[draftID] = true
			o.inFlightMu.Unlock()

			select {
			case o.workCh <- draftID:
			case <-ctx.Done():
				o.inFlightMu.Lock()
				delete(o.inFlight, draftID)
				o.inFlightMu.Unlock()
				return ctx.Err()
			}
		}
	}
}

// sleep waits for the duration, an early wake, or shutdown. Returns
// false on shutdown.
func (o *Orchestrator) sleep(ctx context.Context, timer clockwork.Timer, d time.Duration) bool {
	timer.Reset(d)
	select {
	case <-timer.Chan():
		return true
	case <-o.wakeCh:
		return true
	case <-ctx.Done():
		return false
	}
}

func (o *Orchestrator) worker(ctx context.Context, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case draftID, ok := <-o.workCh:
			if !ok {
				return
			}
			o.handleExpiry(ctx, workerID, draftID)

			o.inFlightMu.Lock()
			delete(o.inFlight, draftID)
			o.inFlightMu.Unlock()
		}
	}
}

// handleExpiry fires the auto-pick for one expired draft. A conflict
// means a human pick landed first or the draft stopped; both are
// normal outcomes for a stale timer.
func (o *Orchestrator) handleExpiry(ctx context.Context, workerID int, draftID uuid.UUID) {
	_, err := o.app.AutoPick(ctx, draftID)
	switch {
	case err == nil:
	case apperrors.KindOf(err) == apperrors.KindStateConflict:
		log.Debug().
			Str("draft_id", draftID.String()).
			Int("worker_id", workerID).
			Msg("pick clock expiry was stale")
	case apperrors.KindOf(err) == apperrors.KindExhaustion:
		log.Warn().
			Str("draft_id", draftID.String()).
			Msg("auto-pick found no available players")
	default:
		log.Error().
			Err(err).
			Str("draft_id", draftID.String()).
			Int("worker_id", workerID).
			Msg("auto-pick failed")
	}
}
