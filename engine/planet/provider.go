// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"
)

// Priority is a request's mutable priority handle. A value of 0
// means the request is cancelled; any pop of the queue drops
// cancelled requests before picking the highest-priority survivor.
// Priorities are read at pop time, never cached at enqueue time.
type Priority struct {
	v atomic.Int32
}

// Set changes the priority. Workers observe the new value on their
// next pop, with acquire/release semantics.
func (p *Priority) Set(v int32) { p.v.Store(v) }

// Get returns the current priority.
func (p *Priority) Get() int32 { return p.v.Load() }

type request struct {
	id       uint64
	priority *Priority
	loc      PatchLocation
}

type result struct {
	id  uint64
	geo PatchGeometry
}

// Provider is the asynchronous geometry oracle front-end: a bounded
// worker pool shares a mutex-guarded priority queue and writes
// completed results to a channel drained non-blockingly by
// ReceiveAll.
type Provider struct {
	cfg *Config

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*request
	closed bool

	nextID   atomic.Uint64
	poisoned atomic.Bool

	results chan result
	cache   *lru.Cache[PatchLocation, PatchGeometry]

	g *errgroup.Group
}

// NewProvider starts cfg.Workers worker goroutines sharing the
// request queue, and returns a Provider ready to accept Queue
// calls. The oracle's memoisation cache is sized to MaxPatches,
// enough to cover every currently-resident-or-pending patch without
// growing unbounded under split/merge churn.
func NewProvider(cfg *Config) *Provider {
	p := &Provider{
		cfg:     cfg,
		results: make(chan result, cfg.MaxPatches),
	}
	p.cond = sync.NewCond(&p.mu)
	p.cache, _ = lru.New[PatchLocation, PatchGeometry](cfg.MaxPatches)

	p.g = new(errgroup.Group)
	for i := 0; i < cfg.Workers; i++ {
		p.g.Go(p.worker)
	}
	return p
}

// Queue admits a request for loc at the given initial priority
// (typically "needed at LOD L"), returning a mutable Priority
// handle and a requestId used to match the eventual result in
// ReceiveAll. It fails once the provider is poisoned or closed.
func (p *Provider) Queue(loc PatchLocation, priority int32) (*Priority, uint64, error) {
	if p.poisoned.Load() {
		return nil, 0, ErrProviderPoisoned
	}

	pr := &Priority{}
	pr.Set(priority)
	id := p.nextID.Add(1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, 0, ErrProviderPoisoned
	}
	p.queue = append(p.queue, &request{id: id, priority: pr, loc: loc})
	p.mu.Unlock()
	p.cond.Signal()

	return pr, id, nil
}

// ReceiveAll drains every result currently available without
// blocking, invoking drain(requestId, geometry) for each. Results
// may arrive in any order; the caller matches them via requestId.
func (p *Provider) ReceiveAll(drain func(id uint64, geo PatchGeometry)) {
	for {
		select {
		case r := <-p.results:
			drain(r.id, r.geo)
		default:
			return
		}
	}
}

// Close stops accepting new requests, discards whatever is still
// queued, wakes every worker, and joins them. It does not attempt
// to cancel in-flight computations; a worker that finishes one
// still sends its result into the results channel's buffer, which
// nothing drains after Close.
func (p *Provider) Close() error {
	p.mu.Lock()
	p.closed = true
	p.queue = nil
	p.mu.Unlock()
	p.cond.Broadcast()
	return p.g.Wait()
}

// pop blocks until a live (non-cancelled) request is available or
// the provider is closed. Cancelled requests (priority 0) are
// dropped as they're encountered, so the queue never accumulates
// garbage from a camera oscillating near a split boundary.
func (p *Provider) pop() (*request, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if p.closed {
			return nil, false
		}

		live := p.queue[:0]
		for _, r := range p.queue {
			if r.priority.Get() != 0 {
				live = append(live, r)
			}
		}
		p.queue = live

		if len(p.queue) == 0 {
			p.cond.Wait()
			continue
		}

		best := 0
		for i := 1; i < len(p.queue); i++ {
			if p.queue[i].priority.Get() > p.queue[best].priority.Get() {
				best = i
			}
		}
		req := p.queue[best]
		p.queue = append(p.queue[:best], p.queue[best+1:]...)
		return req, true
	}
}

// worker is a single pool goroutine: pop, compute, send, repeat
// until the provider closes. A panic anywhere in computation is
// trapped here, poisoning the provider (future Queue calls fail)
// without taking the rest of the pool down.
func (p *Provider) worker() (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.poisoned.Store(true)
			p.cfg.Log.Error().Interface("panic", r).Msg("geometry worker recovered from panic")
		}
	}()
	for {
		req, ok := p.pop()
		if !ok {
			return nil
		}
		p.results <- result{id: req.id, geo: p.compute(req.loc)}
	}
}

// compute evaluates the geometry oracle, memoising results so that
// repeated requests for the same location during rapid split/merge
// churn don't redo the work.
func (p *Provider) compute(loc PatchLocation) PatchGeometry {
	if p.cache != nil {
		if g, ok := p.cache.Get(loc); ok {
			return g
		}
	}
	g := computeGeometry(loc, p.cfg)
	if p.cache != nil {
		p.cache.Add(loc, g)
	}
	return g
}
