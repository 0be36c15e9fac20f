// Package poller runs a recurring fetch on a fixed interval. It exposes an
// explicit start/stop handle and guards against overlapping fetches, so a
// slow response can never be applied over a fresher one.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Poller invokes a fetch function immediately on start and then once per
// interval. A tick is skipped while the previous fetch is still in flight.
// Fetch failures are logged; the next tick retries naturally, with no
// backoff.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context) error
	log      *slog.Logger

	inFlight atomic.Bool

	mu   sync.Mutex
	ctx  context.Context
	stop chan struct{}
	done chan struct{}
}

// New creates a Poller calling fetch every interval.
func New(interval time.Duration, fetch func(ctx context.Context) error, log *slog.Logger) *Poller {
	return &Poller{
		interval: interval,
		fetch:    fetch,
		log:      log,
	}
}

// Start begins polling. It is a no-op if the poller is already running.
// ctx is handed to every fetch; Stop does not cancel it, so an in-flight
// fetch runs to completion and its result is simply discarded by callers
// that have moved on.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	p.ctx = ctx
	p.stop = stop
	p.done = done
	p.mu.Unlock()

	go p.run(ctx, stop, done)
}

// Stop clears the timer. It is idempotent and safe to call from any
// goroutine; it returns once the poll loop has exited.
func (p *Poller) Stop() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.ctx = nil
	p.stop = nil
	p.done = nil
	p.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Poke triggers an immediate fetch outside the regular schedule. It is a
// no-op when the poller is stopped; the in-flight guard still applies.
func (p *Poller) Poke() {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx != nil {
		p.tick(ctx)
	}
}

func (p *Poller) run(ctx context.Context, stop, done chan struct{}) {
	defer close(done)

	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// tick launches one fetch unless the previous one is still running.
func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.log.Debug("poll tick skipped, fetch in flight")
		return
	}
	go func() {
		defer p.inFlight.Store(false)
		if err := p.fetch(ctx); err != nil {
			p.log.Warn("poll fetch failed", "error", err)
		}
	}()
}
