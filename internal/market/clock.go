// internal/market/clock.go
package market

import "time"

// IST is the fixed exchange timezone (UTC+5:30). No holiday calendar is
// applied; the gate is purely the daily open/close window.
var IST = time.FixedZone("IST", 5*3600+30*60)

// Market session boundaries, minutes from midnight IST.
const (
	openMinute  = 9*60 + 15  // 09:15
	closeMinute = 15*60 + 30 // 15:30
)

// Clock abstracts time.Now so the engine and tests can inject a fixed time.
type Clock interface {
	Now() time.Time
}

// SystemClock returns the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

func (f FixedClock) Now() time.Time { return f.T }

// IsOpen reports whether t falls inside the 09:15-15:30 IST session,
// boundaries inclusive.
func IsOpen(t time.Time) bool {
	ist := t.In(IST)
	m := ist.Hour()*60 + ist.Minute()
	return m >= openMinute && m <= closeMinute
}

// TradeDate formats t as the exchange trading date (YYYY-MM-DD in IST),
// the key used by the daily signal store.
func TradeDate(t time.Time) string {
	return t.In(IST).Format("2006-01-02")
}

// ClockTime formats t as HH:MM:SS in IST for the status messages served by
// the read API.
func ClockTime(t time.Time) string {
	return t.In(IST).Format("15:04:05")
}
