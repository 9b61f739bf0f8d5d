package quotes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

// flakySource fails a fixed number of times before succeeding.
type flakySource struct {
	mu       sync.Mutex
	failures int
	calls    int
	price    float64
	noData   bool
}

func (f *flakySource) LTP(_ context.Context, symbol string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.noData {
		return 0, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}
	if f.calls <= f.failures {
		return 0, &TransientError{Symbol: symbol, Err: errors.New("connection reset")}
	}
	return f.price, nil
}

func (f *flakySource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestFetchSucceedsAfterRetries(t *testing.T) {
	source := &flakySource{failures: 2, price: 101.5}
	delay := 10 * time.Millisecond
	fetcher := NewFetcher(source, 3, delay, zaptest.NewLogger(t))

	start := time.Now()
	price, err := fetcher.Fetch(context.Background(), "RELIANCE")
	elapsed := time.Since(start)

	assert.NoError(t, err)
	assert.Equal(t, 101.5, price)
	assert.Equal(t, 3, source.callCount(), "expected exactly three attempts")
	assert.GreaterOrEqual(t, elapsed, 2*delay, "expected backoff between attempts")
}

func TestFetchExhaustsRetryBudget(t *testing.T) {
	source := &flakySource{failures: 10}
	fetcher := NewFetcher(source, 3, time.Millisecond, zaptest.NewLogger(t))

	_, err := fetcher.Fetch(context.Background(), "TCS")

	assert.Error(t, err)
	assert.Equal(t, 3, source.callCount(), "attempts must not exceed the configured max")
}

func TestFetchNoDataNotRetried(t *testing.T) {
	source := &flakySource{noData: true}
	fetcher := NewFetcher(source, 3, time.Millisecond, zaptest.NewLogger(t))

	_, err := fetcher.Fetch(context.Background(), "INFY")

	assert.ErrorIs(t, err, ErrNoData)
	assert.Equal(t, 1, source.callCount(), "no-data responses must not be retried")
}

func TestFetchHonorsContextCancellation(t *testing.T) {
	source := &flakySource{failures: 100}
	fetcher := NewFetcher(source, 50, 20*time.Millisecond, zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := fetcher.Fetch(ctx, "SBIN")
	assert.Error(t, err)
	assert.Less(t, source.callCount(), 50)
}
