// internal/server/server.go
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"signalmonitor/internal/engine"
	"signalmonitor/internal/market"
	"signalmonitor/internal/signals"
)

// Server exposes the read-only snapshot API and the signal ingest endpoint.
type Server struct {
	store   *engine.SnapshotStore
	signals signals.Store
	clock   market.Clock
	logger  *zap.Logger
	router  *gin.Engine
}

// New builds the HTTP layer. The snapshot store is read-only here; all
// writers live in the monitor loop.
func New(store *engine.SnapshotStore, sigStore signals.Store, clock market.Clock, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		store:   store,
		signals: sigStore,
		clock:   clock,
		logger:  logger.Named("http"),
		router:  gin.New(),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

// Handler returns the underlying http handler, used by the runner and tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.GET("/api/monitor", s.handleMonitor)
	s.router.POST("/api/signals", s.handleSaveSignals)
}

// handleMonitor serves the live snapshot. When there is nothing to show,
// the reply is a plain textual status; callers distinguish the three idle
// states by content, not status code. That is the contract the front-end
// depends on.
func (s *Server) handleMonitor(c *gin.Context) {
	now := s.clock.Now()
	currentTime := market.ClockTime(now)

	if !market.IsOpen(now) {
		c.String(http.StatusOK, "Present time: %s - Market closed", currentTime)
		return
	}

	list, err := s.signals.ReadToday(c.Request.Context(), market.TradeDate(now))
	if err != nil {
		s.logger.Error("Failed to read daily signals", zap.Error(err))
		c.String(http.StatusOK, "Present time: %s - Signal store unavailable", currentTime)
		return
	}
	if len(list) == 0 {
		c.String(http.StatusOK, "Present time: %s - No BUY signals recorded yet", currentTime)
		return
	}

	snapshot := s.store.Snapshot()
	if len(snapshot) == 0 {
		c.String(http.StatusOK, "Present time: %s - BUY signals loaded, waiting for price data", currentTime)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

type saveSignalsRequest struct {
	TradeDate  string           `json:"trade_date"`
	BuySignals []signals.Signal `json:"buy_signals" binding:"required"`
}

// handleSaveSignals ingests the daily BUY list from the upstream producer.
func (s *Server) handleSaveSignals(c *gin.Context) {
	var req saveSignalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.TradeDate == "" {
		req.TradeDate = market.TradeDate(s.clock.Now())
	}

	for i, sig := range req.BuySignals {
		if err := sig.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("signal %d: %v", i, err),
			})
			return
		}
	}

	if err := s.signals.SaveToday(c.Request.Context(), req.TradeDate, req.BuySignals); err != nil {
		s.logger.Error("Failed to save daily signals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save signals"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trade_date": req.TradeDate,
		"saved":      len(req.BuySignals),
	})
}
