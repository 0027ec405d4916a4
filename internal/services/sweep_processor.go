package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"jornada/internal/storage"
)

// SweepProcessorConfig holds configuration for the periodic sweep
type SweepProcessorConfig struct {
	// Interval is how often to sweep active projects (default: 1h)
	Interval time.Duration

	// Concurrency is the max number of projects reconciled in parallel (default: 4)
	Concurrency int

	// LookbackMonths also re-runs that many previous months, catching edits
	// made after a month closed (default: 1)
	LookbackMonths int
}

// DefaultSweepProcessorConfig returns sensible defaults
func DefaultSweepProcessorConfig() SweepProcessorConfig {
	return SweepProcessorConfig{
		Interval:       1 * time.Hour,
		Concurrency:    4,
		LookbackMonths: 1,
	}
}

// SweepProcessor periodically re-reconciles the current month of every
// active project, keeping ledgers fresh even when no message arrives.
type SweepProcessor struct {
	store      storage.Store
	reconciler *Reconciler
	config     SweepProcessorConfig

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSweepProcessor creates a new sweep processor
func NewSweepProcessor(store storage.Store, config SweepProcessorConfig) *SweepProcessor {
	return &SweepProcessor{
		store:      store,
		reconciler: NewReconciler(store),
		config:     config,
	}
}

// Start begins the sweep loop. Returns an error if already running.
func (p *SweepProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sweep processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Sweep processor started",
		"interval", p.config.Interval,
		"concurrency", p.config.Concurrency)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SweepProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Sweep processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sweep processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SweepProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SweepProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Sweep immediately on startup
	p.Sweep(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep reconciles the current month (and the lookback window) for every
// active project. Failures are logged per project and never abort the sweep.
func (p *SweepProcessor) Sweep(ctx context.Context) {
	projects, err := p.store.ListActiveProjects(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list active projects", "error", err)
		return
	}
	if len(projects) == 0 {
		return
	}

	slog.DebugContext(ctx, "Sweeping active projects", "count", len(projects))

	months := sweepMonths(time.Now(), p.config.LookbackMonths)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)
	for _, project := range projects {
		g.Go(func() error {
			for _, m := range months {
				if _, err := p.reconciler.ReconcileMonth(gctx, project.ID, m.year, m.month); err != nil {
					slog.ErrorContext(gctx, "Sweep reconcile failed",
						"project_id", project.ID,
						"year", m.year,
						"month", m.month,
						"error", err)
				}
			}
			return nil
		})
	}
	g.Wait()
}

type yearMonth struct {
	year, month int
}

// sweepMonths returns the current month plus lookback previous months,
// newest first.
func sweepMonths(now time.Time, lookback int) []yearMonth {
	if lookback < 0 {
		lookback = 0
	}
	out := make([]yearMonth, 0, lookback+1)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i <= lookback; i++ {
		out = append(out, yearMonth{year: cursor.Year(), month: int(cursor.Month())})
		cursor = cursor.AddDate(0, -1, 0)
	}
	return out
}
