package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"signalmonitor/internal/engine"
	"signalmonitor/internal/market"
	"signalmonitor/internal/signals"
)

var (
	openTime   = time.Date(2025, 6, 16, 10, 0, 0, 0, market.IST)
	closedTime = time.Date(2025, 6, 16, 18, 0, 0, 0, market.IST)
)

// memorySignals is an in-memory signals.Store for handler tests.
type memorySignals struct {
	byDate map[string][]signals.Signal
	err    error
}

func (m *memorySignals) ReadToday(_ context.Context, tradeDate string) ([]signals.Signal, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.byDate[tradeDate], nil
}

func (m *memorySignals) SaveToday(_ context.Context, tradeDate string, list []signals.Signal) error {
	if m.err != nil {
		return m.err
	}
	if m.byDate == nil {
		m.byDate = make(map[string][]signals.Signal)
	}
	m.byDate[tradeDate] = list
	return nil
}

func newTestServer(t *testing.T, store *engine.SnapshotStore, sigs *memorySignals, now time.Time) *Server {
	t.Helper()
	return New(store, sigs, market.FixedClock{T: now}, zaptest.NewLogger(t))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestMonitorMarketClosed(t *testing.T) {
	s := newTestServer(t, engine.NewSnapshotStore(), &memorySignals{}, closedTime)

	w := get(t, s, "/api/monitor")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Market closed")
	assert.Contains(t, w.Body.String(), "18:00:00")
}

func TestMonitorNoSignals(t *testing.T) {
	s := newTestServer(t, engine.NewSnapshotStore(), &memorySignals{}, openTime)

	w := get(t, s, "/api/monitor")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No BUY signals recorded yet")
}

func TestMonitorWaitingForPrices(t *testing.T) {
	sigs := &memorySignals{byDate: map[string][]signals.Signal{
		"2025-06-16": {{Symbol: "RELIANCE", Entry: 100, Target: 110, Stoploss: 95, Quantity: 10}},
	}}
	s := newTestServer(t, engine.NewSnapshotStore(), sigs, openTime)

	w := get(t, s, "/api/monitor")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "waiting for price data")
}

func TestMonitorServesSnapshot(t *testing.T) {
	store := engine.NewSnapshotStore()
	store.Upsert(engine.Record{Symbol: "RELIANCE", Entry: 100, LTP: 105, Status: engine.StatusEntered})

	sigs := &memorySignals{byDate: map[string][]signals.Signal{
		"2025-06-16": {{Symbol: "RELIANCE", Entry: 100, Target: 110, Stoploss: 95, Quantity: 10}},
	}}
	s := newTestServer(t, store, sigs, openTime)

	w := get(t, s, "/api/monitor")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "application/json"))

	var records []engine.Record
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "RELIANCE", records[0].Symbol)
	assert.Equal(t, engine.StatusEntered, records[0].Status)
}

func TestSaveSignals(t *testing.T) {
	sigs := &memorySignals{}
	s := newTestServer(t, engine.NewSnapshotStore(), sigs, openTime)

	body, _ := json.Marshal(map[string]interface{}{
		"buy_signals": []signals.Signal{
			{Symbol: "NSE:TCS", Entry: 3500, Target: 3600, Stoploss: 3400, Quantity: 5},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/signals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, sigs.byDate["2025-06-16"], 1, "trade date must default to today")
}

func TestSaveSignalsRejectsInvalid(t *testing.T) {
	s := newTestServer(t, engine.NewSnapshotStore(), &memorySignals{}, openTime)

	body, _ := json.Marshal(map[string]interface{}{
		"buy_signals": []signals.Signal{
			{Symbol: "TCS", Entry: 0, Target: 3600, Stoploss: 3400, Quantity: 5},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/signals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, engine.NewSnapshotStore(), &memorySignals{}, openTime)

	w := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
