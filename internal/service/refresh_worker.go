package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonnyWalker81/focusmetrics/internal/logger"
)

// RefreshConfig configures the background refresh worker
type RefreshConfig struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
}

// DefaultRefreshConfig returns the default worker configuration
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Workers:   2,
		QueueSize: 256,
		Timeout:   10 * time.Second,
	}
}

type refreshJob struct {
	userID    string
	requestID string
}

// RefreshWorker recomputes cached metrics off the request path. Jobs are
// best-effort: a full queue drops the job and failures are logged, never retried.
type RefreshWorker struct {
	refresher MetricsRefresher
	queue     chan refreshJob
	cfg       RefreshConfig
	log       logger.Logger
}

// NewRefreshWorker creates a worker; call Run to start processing
func NewRefreshWorker(refresher MetricsRefresher, cfg RefreshConfig, log logger.Logger) *RefreshWorker {
	d := DefaultRefreshConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = d.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = d.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if log == nil {
		log = logger.Default()
	}

	return &RefreshWorker{
		refresher: refresher,
		queue:     make(chan refreshJob, cfg.QueueSize),
		cfg:       cfg,
		log:       log.With(logger.String("component", "refresh_worker")),
	}
}

// Dispatch queues a refresh for userID without blocking
func (w *RefreshWorker) Dispatch(ctx context.Context, userID string) bool {
	job := refreshJob{userID: userID, requestID: logger.RequestIDFromContext(ctx)}
	select {
	case w.queue <- job:
		return true
	default:
		w.log.WithContext(ctx).Warn("refresh queue full, dropping job",
			logger.String("user_id", userID),
			logger.Int("queue_size", w.cfg.QueueSize),
		)
		return false
	}
}

// Run processes jobs until ctx is cancelled. Jobs still queued at shutdown are dropped.
func (w *RefreshWorker) Run(ctx context.Context) error {
	w.log.Info("refresh worker started", logger.Int("workers", w.cfg.Workers))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < w.cfg.Workers; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case job := <-w.queue:
					w.process(gctx, job)
				}
			}
		})
	}

	err := g.Wait()
	if pending := len(w.queue); pending > 0 {
		w.log.Warn("refresh worker stopped with pending jobs", logger.Int("pending", pending))
	} else {
		w.log.Info("refresh worker stopped")
	}
	return err
}

func (w *RefreshWorker) process(ctx context.Context, job refreshJob) {
	jobCtx := logger.WithJob(context.WithoutCancel(ctx), "metrics_refresh")
	jobCtx = logger.WithUserID(jobCtx, job.userID)
	if job.requestID != "" {
		jobCtx = logger.WithRequestID(jobCtx, job.requestID)
	}

	jobCtx, cancel := context.WithTimeout(jobCtx, w.cfg.Timeout)
	defer cancel()

	start := time.Now()
	if _, err := w.refresher.RefreshMetrics(jobCtx, job.userID); err != nil {
		w.log.WithContext(jobCtx).Error("metrics refresh failed", logger.Err(err))
		return
	}

	w.log.WithContext(jobCtx).Debug("metrics refreshed", logger.Duration("duration", time.Since(start)))
}
