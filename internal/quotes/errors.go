// internal/quotes/errors.go
package quotes

import (
	"errors"
	"fmt"
)

// ErrNoData means the provider answered but had no usable price for the
// symbol (missing series, or a non-positive/invalid value). Retrying within
// the same cycle will not help, so the fetcher returns it immediately.
var ErrNoData = errors.New("no price data")

// TransientError wraps transport, timeout and upstream 5xx failures. These
// are retried up to the fetcher's attempt budget.
type TransientError struct {
	Symbol string
	Err    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fetch failure for %s: %v", e.Symbol, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }
