package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/boutique-storefront/internal/order/domain"
)

// ErrNotConfigured is returned by order logs that have no destination.
var ErrNotConfigured = errors.New("order log not configured")

// Dispatcher appends orders to the log in the background. Callers never wait for the
// outcome: failures are logged and dropped. Each append runs on its own context bounded by
// timeout, so a cancelled request does not abort it.
type Dispatcher struct {
	log     OrderLog
	logger  *slog.Logger
	timeout time.Duration

	wg sync.WaitGroup
}

func NewDispatcher(log OrderLog, logger *slog.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{log: log, logger: logger, timeout: timeout}
}

func (d *Dispatcher) Dispatch(order domain.Order) {
	if d.log == nil {
		d.logger.Warn("order log not configured, skipping append", slog.String("order_id", order.OrderID))
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("order append panicked", slog.String("order_id", order.OrderID), slog.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.log.Append(ctx, order)
		switch {
		case errors.Is(err, ErrNotConfigured):
			d.logger.Warn("order log not configured, skipping append", slog.String("order_id", order.OrderID))
		case err != nil:
			d.logger.Error("append order failed", slog.String("order_id", order.OrderID), slog.Any("err", err))
		default:
			d.logger.Info("order appended", slog.String("order_id", order.OrderID))
		}
	}()
}

// Wait blocks until in-flight appends finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
