package app

import (
	"context"
	"sync"
	"time"

	"opinionmap/domain/core"
	"opinionmap/internal"
	"opinionmap/internal/errors"
	"opinionmap/ports"
)

// Run statuses recorded in metrics
const (
	RunStatusOK         = "ok"
	RunStatusError      = "error"
	RunStatusSuperseded = "superseded"
)

// Analyzer runs one analysis
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error)
}

// RunCoordinator serializes publication of analysis results. Each submission cancels the
// run in flight; only the newest run's result is ever published.
type RunCoordinator struct {
	analyzer Analyzer
	metrics  ports.AnalysisMetrics
	logger   *internal.Logger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	latest *AnalysisReport
}

// NewRunCoordinator wraps analyzer. metrics may be nil.
func NewRunCoordinator(analyzer Analyzer, metrics ports.AnalysisMetrics) *RunCoordinator {
	if metrics == nil {
		metrics = ports.NoopMetrics{}
	}
	return &RunCoordinator{
		analyzer: analyzer,
		metrics:  metrics,
		logger:   internal.DefaultLogger.WithPrefix("Runs"),
	}
}

// Submit starts a run, superseding any run in flight, and waits for it. A run that is
// superseded before it finishes returns a RUN_SUPERSEDED error and is never published.
func (c *RunCoordinator) Submit(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error) {
	start := time.Now()

	c.mu.Lock()
	c.seq++
	ticket := c.seq
	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	report, err := c.analyzer.Analyze(runCtx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket != c.seq {
		c.metrics.RecordRun(RunStatusSuperseded, time.Since(start))
		c.logger.Debug("run #%d discarded, #%d is newer", ticket, c.seq)
		return nil, errors.WithCode(errors.CodeRunSuperseded,
			errors.Wrapf(core.ErrRunSuperseded, "run #%d", ticket))
	}
	c.cancel = nil

	if err != nil {
		c.metrics.RecordRun(RunStatusError, time.Since(start))
		return nil, err
	}

	c.latest = report
	c.metrics.RecordRun(RunStatusOK, time.Since(start))
	return report, nil
}

// Latest returns the most recently published report
func (c *RunCoordinator) Latest() (*AnalysisReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.latest != nil
}

// Cancel aborts the run in flight, if any
func (c *RunCoordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
