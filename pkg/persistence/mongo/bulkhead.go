package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrBulkheadFull is returned when no query slot frees up within the bulkhead wait.
var ErrBulkheadFull = errors.New("mongo bulkhead full")

const rejectionLogInterval = 10 * time.Second

// Bulkhead caps the collection calls in flight in one process.
type Bulkhead struct {
	slots     *semaphore.Weighted
	wait      time.Duration
	throttler *logger.LogThrottler
}

func NewBulkhead(limit int, wait time.Duration, log *zap.Logger) *Bulkhead {
	log.Info("bulkhead initialized", zap.Int("limit", limit), zap.Duration("wait", wait))

	return &Bulkhead{
		slots:     semaphore.NewWeighted(int64(limit)),
		wait:      wait,
		throttler: logger.NewLogThrottler(log, rejectionLogInterval),
	}
}

// Execute runs fn once a slot is free. A caller whose own context ends first gets that context's error.
func (b *Bulkhead) Execute(ctx context.Context, fn func() error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, b.wait)
	defer cancel()

	if err := b.slots.Acquire(acquireCtx, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		b.throttler.Warn("rejected", "bulkhead rejected a query", zap.Duration("wait", b.wait))
		return fmt.Errorf("%w: no slot within %v", ErrBulkheadFull, b.wait)
	}
	defer b.slots.Release(1)

	return fn()
}
