package repository

// Interval represents a candle resolution bucket.
type Interval string

const (
	Interval1m  Interval = "1m"
	Interval15m Interval = "15m"
	Interval1h  Interval = "1h"
	Interval4h  Interval = "4h"
	Interval1d  Interval = "1d"
)

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval1m, Interval15m, Interval1h, Interval4h, Interval1d:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the resolution analysis runs at. The volatility
// annualization factor assumes hourly sampling, so this stays 1h.
func DefaultInterval() Interval { return Interval1h }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
