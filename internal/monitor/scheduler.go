package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/gpufleet/gpumon/internal/logger"
)

// DefaultPollInterval is how often the scheduler considers relaunching
// host polls.
const DefaultPollInterval = 5 * time.Second

// Scheduler drives the poll loop. Each host has at most one fetch in
// flight; a slow or hung host never blocks the others. Completed
// snapshots land in the cache.
type Scheduler struct {
	fetcher  *Fetcher
	cache    *Cache
	interval time.Duration
	log      logger.Logger

	mu       sync.Mutex
	inflight map[string]chan struct{} // closed when the host's fetch completes
}

// NewScheduler wires a fetcher to a cache. interval <= 0 uses the default.
func NewScheduler(fetcher *Fetcher, cache *Cache, interval time.Duration, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logger.Noop()
	}
	return &Scheduler{
		fetcher:  fetcher,
		cache:    cache,
		interval: interval,
		log:      log,
		inflight: make(map[string]chan struct{}),
	}
}

// Run polls all hosts until ctx is cancelled. The first round launches
// immediately; subsequent rounds fire on the interval. Run blocks; call
// it from its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.pollAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAll(ctx)
		}
	}
}

// pollAll launches a fetch for every host that is not already in flight.
func (s *Scheduler) pollAll(ctx context.Context) {
	for _, host := range s.cache.Hosts() {
		s.poll(ctx, host)
	}
}

func (s *Scheduler) poll(ctx context.Context, host string) {
	s.mu.Lock()
	if _, busy := s.inflight[host]; busy {
		s.mu.Unlock()
		return
	}
	done := make(chan struct{})
	s.inflight[host] = done
	s.mu.Unlock()

	s.cache.MarkUpdating(host)

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, host)
			s.mu.Unlock()
			close(done)
		}()

		snap := s.fetcher.Fetch(ctx, host)
		if ctx.Err() != nil {
			return
		}
		if snap.Err != "" {
			s.log.Debug("poll %s: %s", host, snap.Err)
		}
		s.cache.Put(snap)
	}()
}

// Wait blocks until every in-flight fetch has completed. Used by tests
// and by shutdown to drain cleanly.
func (s *Scheduler) Wait() {
	for {
		s.mu.Lock()
		var done chan struct{}
		for _, ch := range s.inflight {
			done = ch
			break
		}
		s.mu.Unlock()
		if done == nil {
			return
		}
		<-done
	}
}
