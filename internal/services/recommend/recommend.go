package recommend

import (
	"fmt"
	"strings"

	"TradeTuner/internal/domain/models"
)

// Decide applies the favorability rules in a fixed order; later rules
// override earlier ones, and the extreme-volatility veto always runs last.
func Decide(t models.TrendAssessment, volatility float64, rsi *float64, macd *models.MACDValues) bool {
	recommended := false

	if t.Direction == models.TrendUp && t.Strength > 0.6 {
		recommended = true
	}
	if t.Direction == models.TrendSideways && volatility < 15 {
		recommended = true
	}
	if t.Direction == models.TrendDown && t.Strength > 0.6 {
		recommended = false
	}

	if rsi != nil {
		if *rsi < 30 {
			recommended = true
		} else if *rsi > 70 {
			recommended = false
		}
	}

	if macd != nil {
		if macd.Histogram > macd.PrevHistogram && macd.Histogram > 0 {
			recommended = true
		} else if macd.Histogram < macd.PrevHistogram && macd.Histogram < 0 {
			recommended = false
		}
	}

	if volatility > 30 {
		recommended = false
	}

	return recommended
}

// Reasoning renders the deterministic narrative for a decision: one sentence
// per signal, numeric values to two decimals, joined with single spaces.
func Reasoning(t models.TrendAssessment, volatility float64, rsi *float64, macd *models.MACDValues, recommended bool) string {
	reasons := make([]string, 0, 5)

	switch t.Direction {
	case models.TrendUp:
		reasons = append(reasons, fmt.Sprintf("Market is in a %s uptrend (strength: %.2f).", strengthWord(t.Strength), t.Strength))
	case models.TrendDown:
		reasons = append(reasons, fmt.Sprintf("Market is in a %s downtrend (strength: %.2f).", strengthWord(t.Strength), t.Strength))
	default:
		reasons = append(reasons, fmt.Sprintf("Market is moving sideways with no clear trend (strength: %.2f).", t.Strength))
	}

	switch {
	case volatility > 25:
		reasons = append(reasons, fmt.Sprintf("Market volatility is very high (%.2f%%), indicating potential for large price swings.", volatility))
	case volatility > 15:
		reasons = append(reasons, fmt.Sprintf("Market volatility is moderate (%.2f%%).", volatility))
	default:
		reasons = append(reasons, fmt.Sprintf("Market volatility is low (%.2f%%), indicating relative stability.", volatility))
	}

	if rsi != nil {
		switch {
		case *rsi > 70:
			reasons = append(reasons, fmt.Sprintf("RSI is overbought (%.2f), suggesting potential for a downward correction.", *rsi))
		case *rsi < 30:
			reasons = append(reasons, fmt.Sprintf("RSI is oversold (%.2f), suggesting potential for an upward correction.", *rsi))
		default:
			reasons = append(reasons, fmt.Sprintf("RSI is in neutral territory (%.2f).", *rsi))
		}
	}

	if macd != nil {
		switch {
		case macd.Histogram > 0 && macd.Histogram > macd.PrevHistogram:
			reasons = append(reasons, "MACD histogram is positive and increasing, indicating strengthening bullish momentum.")
		case macd.Histogram > 0 && macd.Histogram < macd.PrevHistogram:
			reasons = append(reasons, "MACD histogram is positive but decreasing, indicating weakening bullish momentum.")
		case macd.Histogram < 0 && macd.Histogram < macd.PrevHistogram:
			reasons = append(reasons, "MACD histogram is negative and decreasing, indicating strengthening bearish momentum.")
		case macd.Histogram < 0 && macd.Histogram > macd.PrevHistogram:
			reasons = append(reasons, "MACD histogram is negative but increasing, indicating weakening bearish momentum.")
		}
	}

	if recommended {
		reasons = append(reasons, "Based on the overall analysis, market conditions appear favorable for trading.")
	} else {
		reasons = append(reasons, "Based on the overall analysis, market conditions suggest caution before placing trades.")
	}

	return strings.Join(reasons, " ")
}

func strengthWord(strength float64) string {
	switch {
	case strength > 0.8:
		return "strong"
	case strength > 0.5:
		return "moderate"
	default:
		return "weak"
	}
}
