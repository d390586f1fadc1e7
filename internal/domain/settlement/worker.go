package settlement

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// WakeChannel is the redis pub/sub channel a publisher pings after
// completing an order or trade so settlement does not wait for the next
// tick.
const WakeChannel = "settlement:wake"

// Worker runs settlement batches on an interval. Batches execute one at a
// time on the worker goroutine, so runs never overlap.
type Worker struct {
	runner   *Runner
	rdb      *redis.Client // optional wake-up source
	interval time.Duration
	stopCh   chan struct{}
}

// NewWorker creates a settlement worker. rdb may be nil; the worker then
// relies on interval polling alone.
func NewWorker(runner *Runner, rdb *redis.Client, interval time.Duration) *Worker {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &Worker{
		runner:   runner,
		rdb:      rdb,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background worker
func (w *Worker) Start() {
	log.Info().Dur("interval", w.interval).Msg("Starting settlement worker")
	go w.loop()
}

// Stop gracefully stops the background worker
func (w *Worker) Stop() {
	log.Info().Msg("Stopping settlement worker")
	close(w.stopCh)
}

func (w *Worker) loop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wake := make(chan struct{}, 1)
	if w.rdb != nil {
		go w.subscribeWakeups(ctx, wake)
	}

	// Run once immediately on startup
	w.runOnce()

	for {
		select {
		case <-ticker.C:
			w.runOnce()
		case <-wake:
			w.runOnce()
		case <-w.stopCh:
			return
		}
	}
}

func (w *Worker) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := w.runner.RunBatch(ctx); err != nil {
		log.Error().Err(err).Msg("settlement batch failed to run")
	}
}

func (w *Worker) subscribeWakeups(ctx context.Context, wake chan<- struct{}) {
	sub := w.rdb.Subscribe(ctx, WakeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			select {
			case wake <- struct{}{}:
			default: // a wake-up is already pending
			}
		}
	}
}
