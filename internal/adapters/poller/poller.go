// Package poller runs the background poll loops for submitted jobs: one
// goroutine per in-flight job, each ticking the submission service until it
// reports the job terminal.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/draftforge/discovery-engine/internal/core"
	"github.com/draftforge/discovery-engine/internal/observability/statsd"
)

// TickFunc performs one poll round trip. It returns true when the loop
// should stop.
type TickFunc func(ctx context.Context, jobID, externalID string) (done bool, err error)

// Options holds the dependencies for creating a Manager.
type Options struct {
	Tick     TickFunc            // Required: one poll observation
	Resumer  core.JobRepository  // Optional: re-attach loops for in-flight jobs at start
	Interval time.Duration       // Poll cadence, defaults to 3s
	Logger   *slog.Logger        // Optional: structured logger
	Metrics  statsd.Sink         // Optional: metrics sink (StatsD-compatible)
}

// Manager owns the poll loop goroutines. At most one loop runs per job in
// this process; cross-process duplication is harmless because the terminal
// transitions are guarded in the database.
type Manager struct {
	tick     TickFunc
	resumer  core.JobRepository
	interval time.Duration
	logger   *slog.Logger
	metrics  statsd.Sink

	mu      sync.Mutex
	ctx     context.Context
	loops   map[string]*loopHandle
	pending []pendingStart
	wg      sync.WaitGroup
}

// loopHandle identifies one loop goroutine. The loop's exit cleanup compares
// handles before touching the map, so it can never remove a successor loop
// registered for the same job after an external Stop.
type loopHandle struct {
	cancel context.CancelFunc
}

type pendingStart struct {
	jobID      string
	externalID string
}

// NewManager creates a poll manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.Tick == nil {
		return nil, errors.New("tick function is required")
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 3 * time.Second
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "poll_manager")
	}

	return &Manager{
		tick:     opts.Tick,
		resumer:  opts.Resumer,
		interval: interval,
		logger:   logger,
		metrics:  opts.Metrics,
		loops:    map[string]*loopHandle{},
	}, nil
}

// Run re-attaches loops for jobs that were in flight when the process last
// stopped, replays starts requested before Run, and then blocks until the
// context is cancelled. On shutdown every loop is stopped and awaited.
func (m *Manager) Run(ctx context.Context) error {
	m.mu.Lock()
	m.ctx = ctx
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, p := range pending {
		m.Start(p.jobID, p.externalID)
	}
	if err := m.resumeInFlight(ctx); err != nil && m.logger != nil {
		m.logger.ErrorContext(ctx, "failed to resume in-flight jobs", "error", err)
	}

	<-ctx.Done()

	m.mu.Lock()
	for jobID, h := range m.loops {
		h.cancel()
		delete(m.loops, jobID)
	}
	m.mu.Unlock()
	m.wg.Wait()

	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// Start begins polling a job. A second start for the same job is a no-op;
// starts issued before Run are replayed once the manager is running.
func (m *Manager) Start(jobID, externalID string) {
	if jobID == "" || externalID == "" {
		return
	}

	m.mu.Lock()
	if m.ctx == nil {
		m.pending = append(m.pending, pendingStart{jobID: jobID, externalID: externalID})
		m.mu.Unlock()
		return
	}
	if _, running := m.loops[jobID]; running {
		m.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(m.ctx)
	handle := &loopHandle{cancel: cancel}
	m.loops[jobID] = handle
	m.wg.Add(1)
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("poll loop started", "job_id", jobID, "external_id", externalID)
	}
	if m.metrics != nil {
		m.metrics.Count("poller.loop_started", 1, nil)
	}

	go m.loop(loopCtx, handle, jobID, externalID)
}

// Stop cancels the poll loop for a job, if one is running.
func (m *Manager) Stop(jobID string) {
	m.mu.Lock()
	h, ok := m.loops[jobID]
	if ok {
		delete(m.loops, jobID)
	}
	m.mu.Unlock()
	if ok {
		h.cancel()
	}
}

// release is the loop goroutine's exit cleanup. It removes the map entry only
// if the entry still belongs to this loop; a stopped loop must not tear down
// a successor started for the same job in the meantime.
func (m *Manager) release(jobID string, h *loopHandle) {
	m.mu.Lock()
	if cur, ok := m.loops[jobID]; ok && cur == h {
		delete(m.loops, jobID)
	}
	m.mu.Unlock()
	h.cancel()
}

// Active returns how many poll loops are currently running.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loops)
}

func (m *Manager) loop(ctx context.Context, h *loopHandle, jobID, externalID string) {
	defer m.wg.Done()
	defer m.release(jobID, h)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		done, err := m.tick(ctx, jobID, externalID)
		if err != nil && m.logger != nil {
			m.logger.WarnContext(ctx, "poll tick error",
				"job_id", jobID, "external_id", externalID, "error", err)
		}
		if done {
			if m.logger != nil {
				m.logger.Info("poll loop finished", "job_id", jobID)
			}
			if m.metrics != nil {
				m.metrics.Count("poller.loop_finished", 1, nil)
			}
			return
		}
	}
}

func (m *Manager) resumeInFlight(ctx context.Context) error {
	if m.resumer == nil {
		return nil
	}
	jobs, err := m.resumer.ListInFlight(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job.ExternalID == nil {
			continue
		}
		m.Start(job.ID, *job.ExternalID)
	}
	if len(jobs) > 0 && m.logger != nil {
		m.logger.InfoContext(ctx, "resumed in-flight poll loops", "count", len(jobs))
	}
	return nil
}
