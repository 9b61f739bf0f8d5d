package market

import (
	"testing"
	"time"
)

func istTime(hour, minute int) time.Time {
	return time.Date(2025, 6, 16, hour, minute, 0, 0, IST)
}

func TestIsOpen(t *testing.T) {
	cases := []struct {
		name string
		t    time.Time
		open bool
	}{
		{"before open", istTime(9, 14), false},
		{"at open", istTime(9, 15), true},
		{"mid session", istTime(12, 30), true},
		{"at close", istTime(15, 30), true},
		{"after close", istTime(15, 31), false},
		{"midnight", istTime(0, 0), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsOpen(tc.t); got != tc.open {
				t.Fatalf("IsOpen(%s) = %v, want %v", tc.t, got, tc.open)
			}
		})
	}
}

func TestIsOpenConvertsZones(t *testing.T) {
	// 04:00 UTC is 09:30 IST, inside the session.
	utc := time.Date(2025, 6, 16, 4, 0, 0, 0, time.UTC)
	if !IsOpen(utc) {
		t.Fatal("expected 04:00 UTC (09:30 IST) to be inside the session")
	}

	// 10:30 UTC is 16:00 IST, after close.
	utc = time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC)
	if IsOpen(utc) {
		t.Fatal("expected 10:30 UTC (16:00 IST) to be outside the session")
	}
}

func TestTradeDate(t *testing.T) {
	// 20:00 UTC on the 16th is already the 17th in IST.
	utc := time.Date(2025, 6, 16, 20, 0, 0, 0, time.UTC)
	if got := TradeDate(utc); got != "2025-06-17" {
		t.Fatalf("TradeDate = %q, want 2025-06-17", got)
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"NSE:RELIANCE":  "RELIANCE",
		"RELIANCE.NS":   "RELIANCE",
		"RELIANCE-EQ":   "RELIANCE",
		"  tcs  ":       "TCS",
		"nse:infy":      "INFY",
		"HDFCBANK":      "HDFCBANK",
		"NSE:SBIN-EQ":   "SBIN",
		"NIFTY2561925000CE": "NIFTY2561925000CE",
	}

	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"NSE:RELIANCE", "tcs.ns", "SBIN-EQ", " infy "}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}
