// internal/signals/source.go
package signals

import "context"

// Source exposes the daily signal list as a point-in-time read keyed by the
// trading date. Implementations must be idempotent and side-effect free from
// the monitoring loop's perspective: the loop re-reads every cycle and holds
// no reference across cycles.
type Source interface {
	// ReadToday returns the signals recorded for tradeDate (YYYY-MM-DD), or
	// an empty slice when nothing has been recorded yet.
	ReadToday(ctx context.Context, tradeDate string) ([]Signal, error)
}

// Store is a Source that also accepts writes from the upstream signal
// producer (the webhook front-end, outside this repo).
type Store interface {
	Source

	// SaveToday replaces the signal list for tradeDate.
	SaveToday(ctx context.Context, tradeDate string, list []Signal) error
}
