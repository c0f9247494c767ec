package jobs

import (
	"context"
	"sync"
	"time"

	"planreview-backend/internal/shared/telemetry"
)

// Pool runs a fixed set of workers that drain the job table. Workers
// sleep on a poll ticker and are woken early when Accept enqueues.
type Pool struct {
	Coordinator *Coordinator
	Count       int
	Poll        time.Duration
}

func NewPool(coordinator *Coordinator, count int, poll time.Duration) *Pool {
	if count < 1 {
		count = 1
	}
	if poll <= 0 {
		poll = 2 * time.Second
	}
	return &Pool{Coordinator: coordinator, Count: count, Poll: poll}
}

// Run blocks until ctx is cancelled and all workers have drained.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.Count; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.runWorker(ctx, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Pool) runWorker(ctx context.Context, workerID int) {
	ticker := time.NewTicker(p.Poll)
	defer ticker.Stop()

	for {
		// Drain everything available before sleeping.
		for {
			if ctx.Err() != nil {
				return
			}
			processed, err := p.Coordinator.ProcessNext(ctx)
			if err != nil {
				telemetry.Error("worker.claim_error", map[string]any{
					"worker": workerID,
					"error":  err.Error(),
				})
				break
			}
			if !processed {
				break
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.Coordinator.WakeSignal():
		}
	}
}
