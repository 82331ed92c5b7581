package recommend

import (
	"strings"
	"testing"

	"TradeTuner/internal/domain/models"
)

func f(v float64) *float64 { return &v }

func up(strength float64) models.TrendAssessment {
	return models.TrendAssessment{Direction: models.TrendUp, Strength: strength}
}

func down(strength float64) models.TrendAssessment {
	return models.TrendAssessment{Direction: models.TrendDown, Strength: strength}
}

func sideways(strength float64) models.TrendAssessment {
	return models.TrendAssessment{Direction: models.TrendSideways, Strength: strength}
}

func TestDecideStrongUptrend(t *testing.T) {
	if !Decide(up(0.7), 10, nil, nil) {
		t.Fatalf("strong uptrend should recommend")
	}
	if Decide(up(0.6), 10, nil, nil) {
		t.Fatalf("strength exactly 0.6 is not enough")
	}
}

func TestDecideQuietSideways(t *testing.T) {
	if !Decide(sideways(0.3), 10, nil, nil) {
		t.Fatalf("quiet sideways market should recommend")
	}
	if Decide(sideways(0.3), 15, nil, nil) {
		t.Fatalf("volatility exactly 15 is not quiet")
	}
}

func TestDecideStrongDowntrend(t *testing.T) {
	if Decide(down(0.8), 10, nil, nil) {
		t.Fatalf("strong downtrend should not recommend")
	}
}

func TestDecideOversoldRSIOverrides(t *testing.T) {
	if !Decide(down(0.8), 10, f(25), nil) {
		t.Fatalf("oversold rsi should override the downtrend")
	}
}

func TestDecideOverboughtRSIOverrides(t *testing.T) {
	if Decide(up(0.9), 10, f(75), nil) {
		t.Fatalf("overbought rsi should override the uptrend")
	}
}

func TestDecideMACDMomentumOverridesRSI(t *testing.T) {
	macd := &models.MACDValues{Histogram: 2, PrevHistogram: 1}
	if !Decide(down(0.8), 10, f(75), macd) {
		t.Fatalf("rising positive histogram runs after the rsi rule")
	}
	macd = &models.MACDValues{Histogram: -2, PrevHistogram: -1}
	if Decide(up(0.9), 10, f(25), macd) {
		t.Fatalf("falling negative histogram runs after the rsi rule")
	}
}

func TestDecideExtremeVolatilityVeto(t *testing.T) {
	macd := &models.MACDValues{Histogram: 2, PrevHistogram: 1}
	if Decide(up(0.9), 31, f(25), macd) {
		t.Fatalf("volatility above 30 vetoes every other signal")
	}
	if !Decide(up(0.9), 30, f(25), macd) {
		t.Fatalf("volatility exactly 30 does not veto")
	}
}

func TestDecideWeakeningMomentumIsNeutral(t *testing.T) {
	// Positive but falling, and negative but rising, change nothing.
	macd := &models.MACDValues{Histogram: 1, PrevHistogram: 2}
	if !Decide(up(0.7), 10, nil, macd) {
		t.Fatalf("weakening bullish momentum should not flip the uptrend call")
	}
	macd = &models.MACDValues{Histogram: -1, PrevHistogram: -2}
	if Decide(down(0.8), 10, nil, macd) {
		t.Fatalf("weakening bearish momentum should not flip the downtrend call")
	}
}

func TestReasoningTrendSentence(t *testing.T) {
	got := Reasoning(up(0.9), 10, nil, nil, true)
	want := "Market is in a strong uptrend (strength: 0.90). " +
		"Market volatility is low (10.00%), indicating relative stability. " +
		"Based on the overall analysis, market conditions appear favorable for trading."
	if got != want {
		t.Fatalf("unexpected reasoning:\n got: %s\nwant: %s", got, want)
	}
}

func TestReasoningFullNarrative(t *testing.T) {
	macd := &models.MACDValues{Histogram: -2, PrevHistogram: -1}
	got := Reasoning(down(0.7), 27.5, f(75.5), macd, false)
	parts := []string{
		"Market is in a moderate downtrend (strength: 0.70).",
		"Market volatility is very high (27.50%), indicating potential for large price swings.",
		"RSI is overbought (75.50), suggesting potential for a downward correction.",
		"MACD histogram is negative and decreasing, indicating strengthening bearish momentum.",
		"Based on the overall analysis, market conditions suggest caution before placing trades.",
	}
	if got != strings.Join(parts, " ") {
		t.Fatalf("unexpected reasoning: %s", got)
	}
}

func TestReasoningOmitsMissingSignals(t *testing.T) {
	got := Reasoning(sideways(0.3), 20, nil, nil, false)
	if strings.Contains(got, "RSI") || strings.Contains(got, "MACD") {
		t.Fatalf("missing signals must not be narrated: %s", got)
	}
	if !strings.Contains(got, "Market is moving sideways with no clear trend (strength: 0.30).") {
		t.Fatalf("missing sideways sentence: %s", got)
	}
	if !strings.Contains(got, "Market volatility is moderate (20.00%).") {
		t.Fatalf("missing volatility sentence: %s", got)
	}
}

func TestReasoningFlatMACDOmitted(t *testing.T) {
	macd := &models.MACDValues{Histogram: 0, PrevHistogram: 0}
	got := Reasoning(up(0.9), 10, nil, macd, true)
	if strings.Contains(got, "MACD") {
		t.Fatalf("a flat histogram has no momentum sentence: %s", got)
	}
}

func TestReasoningStrengthWords(t *testing.T) {
	if !strings.Contains(Reasoning(up(0.81), 10, nil, nil, true), "strong uptrend") {
		t.Fatalf("expected strong above 0.8")
	}
	if !strings.Contains(Reasoning(up(0.6), 10, nil, nil, false), "moderate uptrend") {
		t.Fatalf("expected moderate above 0.5")
	}
	if !strings.Contains(Reasoning(down(0.5), 10, nil, nil, false), "weak downtrend") {
		t.Fatalf("expected weak at 0.5")
	}
}
