// internal/signals/signal.go
package signals

import (
	"errors"
	"fmt"
)

// ErrInvalidSignal marks a malformed signal. Loop code skips the symbol for
// the cycle instead of aborting.
var ErrInvalidSignal = errors.New("invalid signal")

// Signal is one BUY trade signal from the daily list. Immutable per cycle.
type Signal struct {
	Symbol   string  `json:"symbol"`
	Entry    float64 `json:"entry"`
	Target   float64 `json:"target"`
	Stoploss float64 `json:"stoploss"`
	Quantity int     `json:"qty"`
}

// Validate checks the signal against the invariants the PnL math depends on.
// Entry must be strictly positive so percentage P&L never divides by zero.
func (s Signal) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidSignal)
	}
	if s.Entry <= 0 {
		return fmt.Errorf("%w: entry must be positive, got %v", ErrInvalidSignal, s.Entry)
	}
	if s.Target <= 0 {
		return fmt.Errorf("%w: target must be positive, got %v", ErrInvalidSignal, s.Target)
	}
	if s.Stoploss <= 0 {
		return fmt.Errorf("%w: stoploss must be positive, got %v", ErrInvalidSignal, s.Stoploss)
	}
	if s.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidSignal, s.Quantity)
	}
	return nil
}
