// cmd/monitor/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"signalmonitor/internal/app"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	runner, err := app.NewRunner(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start: %v\n", err)
		os.Exit(1)
	}

	logger := runner.Logger()
	logger.Info("Starting signal monitor")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("📡 Signal received: " + sig.String())
		cancel()
	}()

	if err := runner.Run(ctx); err != nil {
		logger.Error("Monitor exited with error", zap.Error(err))
		os.Exit(1)
	}
}
