// internal/market/symbol.go
package market

import "strings"

// Normalize converts a raw exchange-qualified symbol into the canonical key
// used for the trade-state and snapshot tables. Exchange prefixes and series
// suffixes are stripped and the result is uppercased. Normalize is
// idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	s = strings.TrimPrefix(s, "NSE:")
	s = strings.TrimSuffix(s, ".NS")
	s = strings.TrimSuffix(s, "-EQ")
	return strings.TrimSpace(s)
}
