package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/dept-timetable-api/pkg/cache"
	appErrors "github.com/noah-isme/dept-timetable-api/pkg/errors"
)

// PassGuard admits one session-mutating pass at a time. A local mutex covers
// this process; the optional Redis lease covers other replicas.
type PassGuard struct {
	mu      sync.Mutex
	lease   *cache.Lease
	metrics *MetricsService
	logger  *zap.Logger
}

// NewPassGuard constructs the guard. lease may be nil.
func NewPassGuard(lease *cache.Lease, metrics *MetricsService, logger *zap.Logger) *PassGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PassGuard{lease: lease, metrics: metrics, logger: logger}
}

// Acquire admits the caller or fails fast with ErrPassInProgress. The
// returned release func must be called exactly once.
func (g *PassGuard) Acquire(ctx context.Context, operation string) (func(), error) {
	if g == nil {
		return func() {}, nil
	}
	if !g.mu.TryLock() {
		g.metrics.RecordPassRejected(operation)
		return nil, appErrors.ErrPassInProgress
	}

	token, err := g.lease.Acquire(ctx)
	switch {
	case errors.Is(err, cache.ErrLeaseHeld):
		g.mu.Unlock()
		g.metrics.RecordPassRejected(operation)
		return nil, appErrors.ErrPassInProgress
	case err != nil:
		// Redis being down degrades to the process-local guard.
		g.logger.Warn("pass lease unavailable, continuing with local guard", zap.String("operation", operation), zap.Error(err))
		token = ""
	}

	started := time.Now()
	stopKeepAlive := func() {}
	if token != "" && g.lease.Distributed() {
		stopKeepAlive = g.keepAlive(operation, token)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			stopKeepAlive()
			if token != "" {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				if err := g.lease.Release(releaseCtx, token); err != nil {
					g.logger.Warn("failed to release pass lease", zap.String("operation", operation), zap.Error(err))
				}
				cancel()
			}
			g.metrics.ObservePass(operation, time.Since(started))
			g.mu.Unlock()
		})
	}, nil
}

// keepAlive refreshes the lease every third of its TTL until the returned
// stop func is called, so a pass longer than the TTL keeps other replicas out.
func (g *PassGuard) keepAlive(operation, token string) func() {
	interval := g.lease.TTL() / 3
	if interval <= 0 {
		interval = time.Second
	}
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				err := g.lease.Refresh(ctx, token)
				cancel()
				switch {
				case errors.Is(err, cache.ErrLeaseLost):
					g.logger.Error("pass lease lost before the pass finished", zap.String("operation", operation))
					return
				case err != nil:
					g.logger.Warn("failed to refresh pass lease", zap.String("operation", operation), zap.Error(err))
				}
			}
		}
	}()

	return func() {
		close(stop)
		<-done
	}
}
