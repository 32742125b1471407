package utils

// -----------------------------------------------------------------------------

const (
	// Ticks kept in memory per symbol when sizing cannot be derived.
	DefaultMaxTicksPerSymbol = 2000

	maxTicksPerSymbol = 20000
	minTicksPerSymbol = 50
)

// -----------------------------------------------------------------------------

// CalculateMaxDataPoints sizes the per-symbol tick buffer to hold one day of
// polls at the given interval.
func CalculateMaxDataPoints(updateIntervalSeconds int) int {
	if updateIntervalSeconds <= 0 {
		return DefaultMaxTicksPerSymbol
	}
	n := 24 * 60 * 60 / updateIntervalSeconds
	switch {
	case n > maxTicksPerSymbol:
		return maxTicksPerSymbol
	case n < minTicksPerSymbol:
		return minTicksPerSymbol
	}
	return n
}
