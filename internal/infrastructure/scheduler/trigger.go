package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// statusCatalogInterval is how often the order status catalog is refreshed.
// The catalog rarely changes; daily keeps fulfilment slugs current.
const statusCatalogInterval = 24 * time.Hour

// PeriodicTrigger submits the recurring sync jobs: order pulls on the order
// interval, full stock pushes on the stock interval, and a daily status
// catalog refresh. The status catalog is also refreshed once at startup so
// fulfilment reporting works before the first daily tick.
type PeriodicTrigger struct {
	scheduler         *Scheduler
	orderPullInterval time.Duration
	stockPushInterval time.Duration
	retryAttempts     int
	logger            *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewPeriodicTrigger creates a new PeriodicTrigger
func NewPeriodicTrigger(
	scheduler *Scheduler,
	orderPullInterval time.Duration,
	stockPushInterval time.Duration,
	retryAttempts int,
	logger *zap.Logger,
) *PeriodicTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodicTrigger{
		scheduler:         scheduler,
		orderPullInterval: orderPullInterval,
		stockPushInterval: stockPushInterval,
		retryAttempts:     retryAttempts,
		logger:            logger,
	}
}

// Start starts the periodic loops
func (p *PeriodicTrigger) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.submit(JobStatusCatalog, "")

	p.wg.Add(3)
	go p.loop(ctx, p.orderPullInterval, JobOrderPull)
	go p.loop(ctx, p.stockPushInterval, JobStockPush)
	go p.loop(ctx, statusCatalogInterval, JobStatusCatalog)

	p.logger.Info("periodic sync trigger started",
		zap.Duration("order_pull_interval", p.orderPullInterval),
		zap.Duration("stock_push_interval", p.stockPushInterval),
	)
	return nil
}

// Stop stops the periodic loops
func (p *PeriodicTrigger) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = false
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("periodic sync trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *PeriodicTrigger) loop(ctx context.Context, interval time.Duration, kind JobKind) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.submit(kind, "")
		}
	}
}

func (p *PeriodicTrigger) submit(kind JobKind, localKey string) {
	job := NewJob(kind, localKey, p.retryAttempts)
	if err := p.scheduler.Submit(job); err != nil {
		p.logger.Warn("failed to submit periodic sync job",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
}
