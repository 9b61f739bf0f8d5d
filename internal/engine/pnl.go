// internal/engine/pnl.go
package engine

import (
	"math"
	"time"

	"signalmonitor/internal/market"
	"signalmonitor/internal/signals"
)

// Record is the published snapshot for one symbol, fully replaced each cycle.
// Consumers receive copies, never references into the live table.
type Record struct {
	Symbol         string     `json:"symbol"`
	Entry          float64    `json:"entry"`
	LTP            float64    `json:"ltp"`
	Status         Status     `json:"status"`
	EntryTime      *time.Time `json:"entry_time"`
	ExitPrice      *float64   `json:"exit_price"`
	ExitTime       *time.Time `json:"exit_time"`
	OneShareValue  float64    `json:"one_share_value"`
	Quantity       int        `json:"qty"`
	CapitalUsed    float64    `json:"capital_used"`
	MarginRequired float64    `json:"margin_required"`
	PnLPercent     float64    `json:"pnl_pct"`
	PnLCapital     float64    `json:"pnl_capital"`
	PnLMargin      float64    `json:"pnl_margin"`
	UpdatedAt      string     `json:"updated_at"`
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildRecord derives the displayable snapshot from a signal, its trade state
// and the latest traded price. Once a trade has exited, all P&L is computed
// against the frozen exit price, never against fresh fetches. The caller
// guarantees sig.Entry > 0 (validated upstream).
func BuildRecord(sig signals.Signal, symbol string, state TradeState, ltp float64, marginDivisor float64, now time.Time) Record {
	effective := ltp
	if state.Status.Terminal() && state.ExitPrice != nil {
		effective = *state.ExitPrice
	}

	perUnit := effective - sig.Entry
	capitalUsed := round2(sig.Entry * float64(sig.Quantity))
	pnlCapital := round2(perUnit * float64(sig.Quantity))

	return Record{
		Symbol:         symbol,
		Entry:          sig.Entry,
		LTP:            ltp,
		Status:         state.Status,
		EntryTime:      state.EntryTime,
		ExitPrice:      state.ExitPrice,
		ExitTime:       state.ExitTime,
		OneShareValue:  sig.Entry,
		Quantity:       sig.Quantity,
		CapitalUsed:    capitalUsed,
		MarginRequired: round2(capitalUsed / marginDivisor),
		PnLPercent:     round2(perUnit / sig.Entry * 100),
		PnLCapital:     pnlCapital,
		PnLMargin:      pnlCapital,
		UpdatedAt:      market.ClockTime(now),
	}
}
