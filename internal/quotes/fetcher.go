// internal/quotes/fetcher.go
package quotes

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// PriceSource is the single-symbol price boundary the fetcher retries over.
type PriceSource interface {
	LTP(ctx context.Context, symbol string) (float64, error)
}

// Fetcher wraps a PriceSource with a bounded retry policy. It is stateless
// and safe to call concurrently for distinct symbols.
type Fetcher struct {
	source     PriceSource
	maxTries   uint
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewFetcher builds a fetcher performing at most maxTries attempts with a
// fixed retryDelay between them.
func NewFetcher(source PriceSource, maxTries int, retryDelay time.Duration, logger *zap.Logger) *Fetcher {
	if maxTries <= 0 {
		maxTries = 1
	}
	return &Fetcher{
		source:     source,
		maxTries:   uint(maxTries),
		retryDelay: retryDelay,
		logger:     logger.Named("fetcher"),
	}
}

// Fetch obtains the latest traded price for symbol. Transport failures are
// retried with a fixed backoff; a provider response with no usable data comes
// back as ErrNoData without further attempts. Fetch never panics past this
// boundary.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (float64, error) {
	operation := func() (float64, error) {
		price, err := f.source.LTP(ctx, symbol)
		if err != nil {
			if errors.Is(err, ErrNoData) {
				// Another attempt inside the same cycle cannot help.
				return 0, backoff.Permanent(err)
			}
			return 0, err
		}
		return price, nil
	}

	notify := func(err error, wait time.Duration) {
		f.logger.Debug("Retrying price fetch",
			zap.String("symbol", symbol),
			zap.Duration("backoff", wait),
			zap.Error(err))
	}

	price, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(f.retryDelay)),
		backoff.WithMaxTries(f.maxTries),
		backoff.WithNotify(notify))
	if err != nil {
		return 0, err
	}
	return price, nil
}
