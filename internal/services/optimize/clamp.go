package optimize

import "TradeTuner/internal/domain/models"

// Bounds is the absolute allowed range for one parameter.
type Bounds struct {
	Min float64
	Max float64
}

// ClampPolicy is the process-wide safety table: absolute bounds per
// parameter plus the per-cycle rate-of-change limit. Read-only at run time.
type ClampPolicy struct {
	ProfitMargin      Bounds
	TradeSize         Bounds
	MaxOpenTime       Bounds
	StopLoss          Bounds
	MaxRelativeChange float64
}

// DefaultClampPolicy mirrors the limits the strategy has always run with:
// profit margin 0.1 to 5%, size 0.001 to 0.1, open time 1h to 7d, stop loss 1 to 15%,
// and at most a 30% move per optimization cycle.
var DefaultClampPolicy = ClampPolicy{
	ProfitMargin:      Bounds{Min: 0.1, Max: 5.0},
	TradeSize:         Bounds{Min: 0.001, Max: 0.1},
	MaxOpenTime:       Bounds{Min: 1, Max: 168},
	StopLoss:          Bounds{Min: 1.0, Max: 15.0},
	MaxRelativeChange: 0.3,
}

// Sanitize bounds a candidate ParameterSet. Absolute bounds apply first;
// then profit margin, trade size and max open time are pulled to within
// MaxRelativeChange of the previous set's value. Stop loss is exempt from
// the rate limiter so it can appear or disappear in one step. Out-of-range
// candidates are corrected, never rejected: the result is always a fully
// valid set regardless of what the upstream strategy produced.
func (cp ClampPolicy) Sanitize(candidate, previous models.ParameterSet) models.ParameterSet {
	out := candidate.Clone()

	out.ProfitMargin = clampAbs(out.ProfitMargin, cp.ProfitMargin)
	out.TradeSize = clampAbs(out.TradeSize, cp.TradeSize)
	out.MaxOpenTime = clampAbs(out.MaxOpenTime, cp.MaxOpenTime)
	if out.StopLoss != nil {
		out.StopLoss = models.Float(clampAbs(*out.StopLoss, cp.StopLoss))
	}

	out.ProfitMargin = cp.clampRate(out.ProfitMargin, previous.ProfitMargin)
	out.TradeSize = cp.clampRate(out.TradeSize, previous.TradeSize)
	out.MaxOpenTime = cp.clampRate(out.MaxOpenTime, previous.MaxOpenTime)

	return out
}

func clampAbs(v float64, b Bounds) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// clampRate restricts v to within ±MaxRelativeChange of the previous value.
// A zero previous value carries no rate information and passes v through.
func (cp ClampPolicy) clampRate(v, previous float64) float64 {
	if previous == 0 || v == 0 {
		return v
	}
	maxDelta := previous * cp.MaxRelativeChange
	if v > previous+maxDelta {
		return previous + maxDelta
	}
	if v < previous-maxDelta {
		return previous - maxDelta
	}
	return v
}
