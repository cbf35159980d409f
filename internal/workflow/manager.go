package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/openzim/ted/internal/config"
	"github.com/openzim/ted/internal/logging"
	"github.com/openzim/ted/internal/queue"
	"github.com/openzim/ted/internal/services"
	"github.com/openzim/ted/internal/stage"
)

// stageBinding maps one handler onto its queue status transitions.
type stageBinding struct {
	name    string
	handler stage.Handler
	claim   queue.Status
	working queue.Status
	done    queue.Status
}

// Summary reports what a drained queue run accomplished.
type Summary struct {
	Completed int
	Failed    int
	Skipped   int
}

// Manager coordinates queue processing across a bounded worker pool.
type Manager struct {
	cfg    *config.Config
	store  *queue.Store
	logger *slog.Logger
	stages []stageBinding

	mu      sync.Mutex
	summary Summary
}

// NewManager constructs a workflow manager over the two pipeline stages.
func NewManager(cfg *config.Config, store *queue.Store, logger *slog.Logger, download, subtitle stage.Handler) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "workflow"),
		stages: []stageBinding{
			{
				name:    "download",
				handler: download,
				claim:   queue.StatusPending,
				working: queue.StatusDownloading,
				done:    queue.StatusDownloaded,
			},
			{
				name:    "subtitles",
				handler: subtitle,
				claim:   queue.StatusDownloaded,
				working: queue.StatusSubtitling,
				done:    queue.StatusCompleted,
			},
		},
	}
}

// HealthCheck verifies every stage is ready to run.
func (m *Manager) HealthCheck(ctx context.Context) []stage.Health {
	checks := make([]stage.Health, 0, len(m.stages))
	for _, binding := range m.stages {
		checks = append(checks, binding.handler.HealthCheck(ctx))
	}
	return checks
}

// Run drains the queue and blocks until every claimable video reached a
// terminal status or ctx was cancelled. In-flight items from a crashed run
// are reset to their pre-stage status first.
func (m *Manager) Run(ctx context.Context) (Summary, error) {
	for _, check := range m.HealthCheck(ctx) {
		if !check.Ready {
			return Summary{}, services.Wrap(services.ErrConfiguration, "workflow", "health check", check.Detail, nil)
		}
	}
	if err := m.store.ResetProcessing(ctx); err != nil {
		return Summary{}, err
	}

	workers := m.cfg.Scraper.Threads
	if workers < 1 {
		workers = 1
	}
	m.logger.Info("processing queue", logging.Int("workers", workers))

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.work(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	var runErr error
	for err := range errs {
		if err != nil && runErr == nil {
			runErr = err
		}
	}

	m.mu.Lock()
	summary := m.summary
	m.mu.Unlock()
	m.logger.Info("queue drained",
		logging.Int("completed", summary.Completed),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, runErr
}

// work claims videos until none are left. Later stages are drained first so
// items resumed mid-pipeline finish before new ones start. Each claimed
// video runs through every remaining stage before the next claim.
func (m *Manager) work(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		claimed := false
		for idx := len(m.stages) - 1; idx >= 0; idx-- {
			binding := m.stages[idx]
			item, err := m.store.Claim(ctx, binding.claim, binding.working)
			if errors.Is(err, queue.ErrNoPending) {
				continue
			}
			if err != nil {
				return err
			}
			claimed = true
			m.processItem(ctx, item, idx)
			break
		}
		if !claimed {
			return nil
		}
	}
}

func (m *Manager) processItem(ctx context.Context, item *queue.Item, startIdx int) {
	itemCtx := services.WithVideoID(ctx, item.VideoID)
	itemCtx = services.WithRequestID(itemCtx, uuid.NewString())

	for idx := startIdx; idx < len(m.stages); idx++ {
		binding := m.stages[idx]
		// The claim already moved the item to the first stage's working
		// status. Later stages transition straight to their own working
		// status so the item is never claimable by another worker mid-run.
		if idx > startIdx {
			if err := m.store.SetStatus(itemCtx, item.ID, binding.working); err != nil {
				m.recordFailure(itemCtx, item, binding.name, err)
				return
			}
			item.Status = binding.working
		}

		if err := m.runStage(itemCtx, binding, item); err != nil {
			m.recordFailure(itemCtx, item, binding.name, err)
			return
		}
	}

	final := m.stages[len(m.stages)-1].done
	if err := m.store.SetStatus(itemCtx, item.ID, final); err != nil {
		m.recordFailure(itemCtx, item, m.stages[len(m.stages)-1].name, err)
		return
	}
	item.Status = final

	m.mu.Lock()
	m.summary.Completed++
	m.mu.Unlock()
	logging.WithContext(itemCtx, m.logger).Info("video completed")
}

func (m *Manager) runStage(ctx context.Context, binding stageBinding, item *queue.Item) error {
	stageCtx := services.WithStage(ctx, binding.name)
	logger := logging.WithContext(stageCtx, m.logger)
	logger.Debug("stage starting")

	if err := binding.handler.Prepare(stageCtx, item); err != nil {
		return fmt.Errorf("prepare %s: %w", binding.name, err)
	}
	if err := binding.handler.Execute(stageCtx, item); err != nil {
		return fmt.Errorf("execute %s: %w", binding.name, err)
	}
	logger.Debug("stage finished")
	return nil
}

func (m *Manager) recordFailure(ctx context.Context, item *queue.Item, stageName string, err error) {
	status := services.FailureStatus(err)
	logger := logging.WithContext(ctx, m.logger)
	if setErr := m.store.SetFailure(ctx, item.ID, status, err.Error()); setErr != nil {
		logger.Error("persisting failure status failed", logging.Error(setErr))
	}

	m.mu.Lock()
	if status == queue.StatusSkipped {
		m.summary.Skipped++
	} else {
		m.summary.Failed++
	}
	m.mu.Unlock()

	logger.Error("video failed",
		logging.String(logging.FieldStage, stageName),
		logging.String("status", string(status)),
		logging.Error(err),
	)
}
