// internal/app/runner.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"signalmonitor/internal/config"
	"signalmonitor/internal/engine"
	"signalmonitor/internal/logger"
	"signalmonitor/internal/market"
	"signalmonitor/internal/quotes"
	"signalmonitor/internal/server"
	"signalmonitor/internal/signals"
)

// Runner owns the process wiring: config, logger, signal store, price
// fetcher, monitor loop and HTTP server. The monitor loop is started exactly
// once here, by the process entry point, never lazily on first request.
type Runner struct {
	cfg    *config.Config
	log    *logger.Logger
	store  *engine.SnapshotStore
	sigs   *signals.PostgresStore
	loop   *engine.Loop
	httpSv *http.Server
}

// NewRunner loads configuration and constructs every component.
func NewRunner(configPath string) (*Runner, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:    cfg.LogFile,
		MaxSize:    100,
		MaxAge:     7,
		MaxBackups: 3,
		Compress:   true,
		Debug:      cfg.DebugLogging,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	sigStore, err := signals.NewPostgresStore(cfg.PostgresURL, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect signal store: %w", err)
	}
	if err := sigStore.RunMigrations(); err != nil {
		return nil, fmt.Errorf("migrate signal store: %w", err)
	}

	client := quotes.NewClient(cfg.QuotesBaseURL, cfg.FetchTimeout())
	fetcher := quotes.NewFetcher(client, cfg.Retries, cfg.RetryDelay(), log.Logger)

	snapStore := engine.NewSnapshotStore()
	clock := market.SystemClock{}

	loop := engine.NewLoop(engine.LoopConfig{
		Source:         sigStore,
		Fetcher:        fetcher,
		Store:          snapStore,
		Clock:          clock,
		Logger:         log.Logger,
		Workers:        cfg.Workers,
		PollInterval:   cfg.PollInterval(),
		IdleInterval:   cfg.IdleInterval(),
		ClosedInterval: cfg.ClosedInterval(),
		CycleTimeout:   cfg.CycleTimeout(),
		MarginDivisor:  cfg.MarginDivisor,
	})

	srv := server.New(snapStore, sigStore, clock, log.Logger)

	return &Runner{
		cfg:   cfg,
		log:   log,
		store: snapStore,
		sigs:  sigStore,
		loop:  loop,
		httpSv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run starts the monitor loop and HTTP server and blocks until ctx is
// cancelled, then shuts both down. In-flight price fetches are abandoned;
// all monitoring state is ephemeral and rebuilt after restart.
func (r *Runner) Run(ctx context.Context) error {
	loopCtx, cancelLoop := context.WithCancel(ctx)
	defer cancelLoop()

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		r.loop.Run(loopCtx)
	}()

	httpErr := make(chan error, 1)
	go func() {
		r.log.Info("🌐 HTTP server listening", zap.String("addr", r.cfg.ListenAddr))
		if err := r.httpSv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-httpErr:
		runErr = fmt.Errorf("http server: %w", err)
	}

	// Registered leaf to root; Shutdown closes LIFO, so the HTTP server
	// stops accepting reads before the rest is torn down.
	shutdown := NewShutdownHandler(r.log.Logger, 15*time.Second)
	shutdown.AddFunc("logger", r.log.Sync)
	shutdown.AddFunc("signal_store", r.sigs.Close)
	shutdown.AddFunc("monitor_loop", func() error {
		cancelLoop()
		<-loopDone
		return nil
	})
	shutdown.AddFunc("http_server", func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return r.httpSv.Shutdown(shutdownCtx)
	})
	shutdown.Shutdown()

	return runErr
}

// Logger exposes the process logger for the entry point.
func (r *Runner) Logger() *zap.Logger { return r.log.Logger }
