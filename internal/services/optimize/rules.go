package optimize

import (
	"math"
	"strings"

	"TradeTuner/internal/domain/models"
)

// RuleBased adjusts the current ParameterSet against the market snapshot
// using the fixed rule table. Each rule is independent and appends its own
// sentence to the reasoning. The result is NOT clamped here; callers route
// it through ClampPolicy.Sanitize like every other candidate.
func RuleBased(current models.ParameterSet, snapshot *models.MarketSnapshot) (models.ParameterSet, string) {
	params := current.Clone()
	reasons := make([]string, 0, 4)

	direction := snapshot.Trend.Direction
	strength := snapshot.Trend.Strength
	volatility := snapshot.Indicators.Volatility

	// Profit margin follows trend conviction.
	if direction == models.TrendUp && strength > 0.7 {
		params.ProfitMargin = math.Min(2.0, params.ProfitMargin*1.2)
		reasons = append(reasons, "Increased profit margin due to strong uptrend")
	} else if direction == models.TrendDown && strength > 0.7 {
		params.ProfitMargin = math.Max(0.1, params.ProfitMargin*0.8)
		reasons = append(reasons, "Decreased profit margin due to strong downtrend")
	}

	// Trade size shrinks in choppy markets, grows in quiet ones.
	if volatility > 20 {
		params.TradeSize = math.Max(0.001, params.TradeSize*0.9)
		reasons = append(reasons, "Decreased trade size due to high volatility")
	} else if volatility < 5 {
		params.TradeSize = math.Min(0.1, params.TradeSize*1.1)
		reasons = append(reasons, "Increased trade size due to low volatility")
	}

	// Max open time stretches sideways, tightens in uptrends. The whole-hour
	// truncation matches the recorded tuning history.
	if direction == models.TrendSideways {
		params.MaxOpenTime = math.Min(96, math.Trunc(params.MaxOpenTime*1.2))
		reasons = append(reasons, "Increased max open time due to sideways market")
	} else if direction == models.TrendUp && strength > 0.5 {
		params.MaxOpenTime = math.Max(12, math.Trunc(params.MaxOpenTime*0.8))
		reasons = append(reasons, "Decreased max open time due to uptrend")
	}

	// Downtrends get a stop loss if none is set.
	if direction == models.TrendDown && params.StopLoss == nil {
		params.StopLoss = models.Float(5.0)
		reasons = append(reasons, "Added stop loss due to downtrend")
	}

	return params, strings.Join(reasons, " ")
}
