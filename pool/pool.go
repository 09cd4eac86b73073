// Package pool implements the bounded worker dispatch spec §5 describes:
// the façade submits exactly one action (one parallel scan's worth of
// range jobs) at a time and waits for every job to report done before
// submitting the next, with concurrency capped at the pool's configured
// size.
//
// Each Dispatch spins up one short-lived goroutine per job via
// golang.org/x/sync/errgroup (used elsewhere in the retrieved pack for
// bounded fan-out with first-error propagation), bounded by SetLimit; no
// goroutine, channel, or condvar persists between Dispatch calls. This is
// simpler than a long-lived-goroutine pool like dragonflyoss-nydus's
// utils.WorkerPool (which keeps one goroutine per worker parked on a
// shared job channel for the process lifetime) and is the right tradeoff
// here: spec §5's workers only ever run one action at a time with the
// façade already serializing dispatches via its own mutex, so there is no
// idle-worker-wakeup latency to amortize by keeping goroutines parked
// between scans.
package pool

import (
	"context"
	"sync"

	"github.com/dropbox/godropbox/errors"
	"golang.org/x/sync/errgroup"
)

// Job is one worker's slice of a parallel scan.
type Job func() error

// Pool is a fixed-size concurrency limiter for Dispatch. Size == 0 means
// parallel scans are disabled; callers fall back to a synchronous scan.
type Pool struct {
	size int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// New returns a pool sized to hold size concurrent jobs. size <= 0
// disables parallel dispatch (Dispatch then refuses any jobs).
func New(size int) *Pool {
	if size < 0 {
		size = 0
	}
	return &Pool{size: size}
}

// Size reports the pool's configured worker count.
func (p *Pool) Size() int {
	return p.size
}

// Dispatch runs every job concurrently, bounded to the pool's size, and
// blocks until all have returned — mirroring spec §5's "submits exactly
// one action at a time and waits for all workers to mark themselves
// available before submitting the next." The first error from any job is
// returned; the other jobs still run to completion, since the group's
// context is not passed to them (cancellation of a scan is cooperative
// via its own flag, not a context).
func (p *Pool) Dispatch(jobs []Job) error {
	if len(jobs) == 0 {
		return nil
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return errors.New("pool: Dispatch called after Shutdown")
	}
	p.wg.Add(1)
	p.mu.RUnlock()
	defer p.wg.Done()

	if p.size <= 0 {
		return errors.New("pool: Dispatch called on a disabled pool")
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(p.size)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			return job()
		})
	}
	return g.Wait()
}

// Shutdown joins the pool: it closes the pool to further dispatches, then
// blocks until every in-flight Dispatch call has returned. Since the
// pool keeps no persistent goroutines, there is nothing else to join —
// this is the pool's half of spec §5's "shutdown() joins the worker
// pool."
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
	return nil
}
