// internal/engine/state.go
package engine

import "time"

// Status is the per-symbol trade lifecycle state.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusEntered      Status = "ENTERED"
	StatusExitedTarget Status = "EXITED_TARGET"
	StatusExitedSL     Status = "EXITED_SL"
)

// Terminal reports whether the status is absorbing: an exited trade never
// re-enters or re-exits.
func (s Status) Terminal() bool {
	return s == StatusExitedTarget || s == StatusExitedSL
}

// TradeState tracks one symbol's lifecycle. Created lazily on first
// observation with StatusPending; mutated only by the monitor loop.
type TradeState struct {
	Status    Status
	EntryTime *time.Time
	ExitTime  *time.Time
	ExitPrice *float64
}

// NewTradeState returns the initial pending state.
func NewTradeState() TradeState {
	return TradeState{Status: StatusPending}
}

// Transition advances state given the latest traded price and the signal's
// entry/target/stoploss levels. It is a pure function: the input state is not
// mutated. Target is checked before stoploss, so a price satisfying both
// exits at target. Terminal states are returned unchanged, which also makes
// re-applying the same price a no-op.
func Transition(state TradeState, price, entry, target, stoploss float64, now time.Time) TradeState {
	switch state.Status {
	case StatusPending:
		if price >= entry {
			t := now
			state.Status = StatusEntered
			state.EntryTime = &t
		}
	case StatusEntered:
		switch {
		case price >= target:
			t := now
			p := target
			state.Status = StatusExitedTarget
			state.ExitTime = &t
			state.ExitPrice = &p
		case price <= stoploss:
			t := now
			p := stoploss
			state.Status = StatusExitedSL
			state.ExitTime = &t
			state.ExitPrice = &p
		}
	}
	return state
}
