// internal/engine/loop.go
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"signalmonitor/internal/logger"
	"signalmonitor/internal/market"
	"signalmonitor/internal/signals"
)

// PriceFetcher is the per-symbol price boundary the loop fans out over.
type PriceFetcher interface {
	Fetch(ctx context.Context, symbol string) (float64, error)
}

// LoopConfig wires the monitor loop's collaborators and timing knobs.
type LoopConfig struct {
	Source  signals.Source
	Fetcher PriceFetcher
	Store   *SnapshotStore
	Clock   market.Clock
	Logger  *zap.Logger

	Workers        int           // fan-out width per cycle
	PollInterval   time.Duration // sleep between processing cycles
	IdleInterval   time.Duration // sleep when no signals are recorded yet
	ClosedInterval time.Duration // sleep while the market is closed
	CycleTimeout   time.Duration // soft bound on one cycle's fan-in wait
	MarginDivisor  float64
}

// Loop is the scheduler: one long-lived goroutine that each cycle reads
// today's signals, fans out one fetch+transition+PnL unit per symbol across a
// bounded worker pool, and publishes the results into the snapshot store.
// It exclusively owns the trade-state table.
type Loop struct {
	cfg    LoopConfig
	logger *zap.Logger

	mu     sync.Mutex
	states map[string]TradeState
}

// NewLoop builds the loop. It is started exactly once by the process entry
// point via Run.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Clock == nil {
		cfg.Clock = market.SystemClock{}
	}
	return &Loop{
		cfg:    cfg,
		logger: cfg.Logger.Named("monitor_loop"),
		states: make(map[string]TradeState),
	}
}

// Run executes cycles until ctx is cancelled. A failure inside one cycle is
// logged and never terminates the loop; in-flight fetches are abandoned on
// shutdown since all state is rebuilt from scratch on restart.
func (l *Loop) Run(ctx context.Context) {
	l.logger.Info("🚀 Monitor loop started",
		zap.Int("workers", l.cfg.Workers),
		zap.Duration("poll_interval", l.cfg.PollInterval))

	for {
		sleep := l.safeCycle(ctx)

		select {
		case <-ctx.Done():
			l.logger.Info("Monitor loop stopped")
			return
		case <-time.After(sleep):
		}
	}
}

// safeCycle runs one cycle, converting any panic into a logged error so the
// scheduler survives.
func (l *Loop) safeCycle(ctx context.Context) (sleep time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("🔥 Monitor cycle crashed", zap.Any("panic", r))
			sleep = l.cfg.PollInterval
		}
	}()
	return l.cycle(ctx)
}

func (l *Loop) cycle(ctx context.Context) time.Duration {
	now := l.cfg.Clock.Now()
	log := logger.WithCycle(l.logger)

	if !market.IsOpen(now) {
		l.clearAll(log)
		return l.cfg.ClosedInterval
	}

	list, err := l.cfg.Source.ReadToday(ctx, market.TradeDate(now))
	if err != nil {
		log.Error("Failed to read daily signals", zap.Error(err))
		return l.cfg.PollInterval
	}
	if len(list) == 0 {
		log.Debug("No BUY signals recorded yet")
		l.clearAll(log)
		return l.cfg.IdleInterval
	}

	l.processSignals(ctx, log, list)
	return l.cfg.PollInterval
}

// processSignals fans the signal list out over the worker pool and fans back
// in before returning. One symbol's failure never aborts sibling work.
func (l *Loop) processSignals(ctx context.Context, log *zap.Logger, list []signals.Signal) {
	cycleCtx := ctx
	if l.cfg.CycleTimeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, l.cfg.CycleTimeout)
		defer cancel()
	}

	tasks := make(chan signals.Signal, len(list))
	for _, sig := range list {
		tasks <- sig
	}
	close(tasks)

	var updated, failed int64
	var counterMu sync.Mutex

	g := new(errgroup.Group)
	for i := 0; i < l.cfg.Workers; i++ {
		g.Go(func() error {
			for sig := range tasks {
				if err := l.processSymbol(cycleCtx, sig); err != nil {
					logger.WithSymbol(log, sig.Symbol).Warn("Symbol skipped this cycle",
						zap.Error(err))
					counterMu.Lock()
					failed++
					counterMu.Unlock()
					continue
				}
				counterMu.Lock()
				updated++
				counterMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info("Cycle complete",
		zap.Int("signals", len(list)),
		zap.Int64("updated", updated),
		zap.Int64("failed", failed))
}

// processSymbol is one unit of work: validate, fetch, transition, publish.
// On fetch failure the symbol's previous snapshot is left untouched
// (stale-but-present) rather than removed. A panic is confined to this unit
// so sibling symbols and the scheduler survive.
func (l *Loop) processSymbol(ctx context.Context, sig signals.Signal) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing %s: %v", sig.Symbol, r)
		}
	}()
	if err := sig.Validate(); err != nil {
		return err
	}

	symbol := market.Normalize(sig.Symbol)

	price, err := l.cfg.Fetcher.Fetch(ctx, symbol)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", symbol, err)
	}

	now := l.cfg.Clock.Now()
	state := l.advance(symbol, price, sig, now)

	l.cfg.Store.Upsert(BuildRecord(sig, symbol, state, price, l.cfg.MarginDivisor, now))
	return nil
}

// advance applies one state-machine step under the table lock. The lock
// covers only the map read-modify-write, never a network call.
func (l *Loop) advance(symbol string, price float64, sig signals.Signal, now time.Time) TradeState {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.states[symbol]
	if !ok {
		state = NewTradeState()
	}
	state = Transition(state, price, sig.Entry, sig.Target, sig.Stoploss, now)
	l.states[symbol] = state
	return state
}

// clearAll wipes both the trade-state table and the published snapshot.
// No state survives a market close.
func (l *Loop) clearAll(log *zap.Logger) {
	l.mu.Lock()
	cleared := len(l.states)
	l.states = make(map[string]TradeState)
	l.mu.Unlock()

	l.cfg.Store.Clear()

	if cleared > 0 {
		log.Info("🧹 Cleared trade state and snapshot table",
			zap.Int("symbols", cleared))
	}
}
