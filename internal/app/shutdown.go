// internal/app/shutdown.go
package app

import (
	"time"

	"go.uber.org/zap"
)

// ShutdownHandler closes registered services in reverse registration order,
// bounding each close by a shared deadline.
type ShutdownHandler struct {
	logger   *zap.Logger
	timeout  time.Duration
	services []namedService
}

type namedService struct {
	name  string
	close func() error
}

// NewShutdownHandler creates a handler with the given total timeout.
func NewShutdownHandler(logger *zap.Logger, timeout time.Duration) *ShutdownHandler {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownHandler{logger: logger.Named("shutdown"), timeout: timeout}
}

// AddFunc registers a close function under a name.
func (sh *ShutdownHandler) AddFunc(name string, fn func() error) {
	sh.services = append(sh.services, namedService{name: name, close: fn})
}

// Shutdown closes everything LIFO. Each close runs in its own goroutine so a
// hung service cannot block the rest past the deadline.
func (sh *ShutdownHandler) Shutdown() {
	deadline := time.After(sh.timeout)
	sh.logger.Info("Starting graceful shutdown", zap.Int("services", len(sh.services)))

	for i := len(sh.services) - 1; i >= 0; i-- {
		svc := sh.services[i]

		done := make(chan error, 1)
		go func() { done <- svc.close() }()

		select {
		case err := <-done:
			if err != nil {
				sh.logger.Error("Failed to shutdown service",
					zap.String("service", svc.name), zap.Error(err))
			} else {
				sh.logger.Info("Service shutdown complete", zap.String("service", svc.name))
			}
		case <-deadline:
			sh.logger.Error("Shutdown timeout exceeded", zap.String("service", svc.name))
			return
		}
	}

	sh.logger.Info("Graceful shutdown completed")
}
