package indicators

import (
	"math"

	"TradeTuner/internal/domain/models"
)

// MinCandles is the minimum series length for a full analysis pass.
const MinCandles = 24

// Default windows.
const (
	rsiWindow       = 14
	macdFast        = 12
	macdSlow        = 26
	macdSignal      = 9
	bollingerWindow = 20
	bollingerStd    = 2.0
)

// SMA returns the arithmetic mean of the most recent window closes,
// or nil if the series is shorter than the window.
func SMA(prices []float64, window int) *float64 {
	if len(prices) < window || window <= 0 {
		return nil
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return models.Float(sum / float64(window))
}

// RSI computes Wilder's Relative Strength Index over 14-period deltas.
// The seed averages the first 15 deltas (one more than the window, kept for
// parity with the historical series), then each remaining delta is folded in
// as avg = (avg*13 + new)/14. A zero average loss maps to RSI 100.
// Returns nil if fewer than 15 prices are present.
func RSI(prices []float64) *float64 {
	if len(prices) < rsiWindow+1 {
		return nil
	}
	deltas := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		deltas[i-1] = prices[i] - prices[i-1]
	}

	seedLen := rsiWindow + 1
	if seedLen > len(deltas) {
		seedLen = len(deltas)
	}
	up, down := 0.0, 0.0
	for _, d := range deltas[:seedLen] {
		if d >= 0 {
			up += d
		} else {
			down -= d
		}
	}
	up /= float64(rsiWindow)
	down /= float64(rsiWindow)

	rsi := rsiFromAverages(up, down)
	// The smoothing loop starts at the window index and re-reads the delta
	// one behind it, so the 14th delta contributes twice. Kept as-is for
	// numeric parity with the recorded indicator history.
	for i := rsiWindow; i < len(prices); i++ {
		d := deltas[i-1]
		upval, downval := 0.0, 0.0
		if d > 0 {
			upval = d
		} else {
			downval = -d
		}
		up = (up*float64(rsiWindow-1) + upval) / float64(rsiWindow)
		down = (down*float64(rsiWindow-1) + downval) / float64(rsiWindow)
		rsi = rsiFromAverages(up, down)
	}
	return models.Float(rsi)
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// EMA computes the exponentially weighted series used by MACD: weights
// exp(linspace(-1,0,window)) normalized to sum 1, applied as a sliding
// convolution, with the first window points backfilled from index window.
// This is a known approximation, not a textbook EMA recurrence; it must stay
// bit-for-bit stable because every MACD and recommendation output downstream
// depends on it.
func EMA(series []float64, window int) []float64 {
	n := len(series)
	if n <= window || window <= 0 {
		return nil
	}
	weights := make([]float64, window)
	sum := 0.0
	for i := range weights {
		x := -1.0
		if window > 1 {
			x = -1.0 + float64(i)/float64(window-1)
		}
		weights[i] = math.Exp(x)
		sum += weights[i]
	}
	for i := range weights {
		weights[i] /= sum
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		acc := 0.0
		for j := 0; j < window && j <= i; j++ {
			acc += series[i-j] * weights[j]
		}
		out[i] = acc
	}
	// Backfill the partial-window head.
	for i := 0; i < window; i++ {
		out[i] = out[window]
	}
	return out
}

// MACD computes the MACD(12,26,9) line/signal/histogram at the latest
// candle, along with the previous histogram point for momentum checks.
// Returns nil if fewer than 35 prices are present.
func MACD(prices []float64) *models.MACDValues {
	if len(prices) < macdSlow+macdSignal {
		return nil
	}
	fast := EMA(prices, macdFast)
	slow := EMA(prices, macdSlow)
	line := make([]float64, len(prices))
	for i := range line {
		line[i] = fast[i] - slow[i]
	}
	signal := EMA(line, macdSignal)
	n := len(prices)
	return &models.MACDValues{
		Line:          line[n-1],
		Signal:        signal[n-1],
		Histogram:     line[n-1] - signal[n-1],
		PrevHistogram: line[n-2] - signal[n-2],
	}
}

// Bollinger computes the 20-period, 2-sigma bands at the latest candle.
// The middle band is the rolling mean, edge-padded over the first 19 points;
// the deviation uses whatever history is available up to 20 points. The
// rolling windows are offset by one relative to each other, preserved from
// the reference series. Returns nil if fewer than 20 prices are present.
func Bollinger(prices []float64) *models.BollingerBands {
	n := len(prices)
	if n < bollingerWindow {
		return nil
	}
	// Rolling mean of the trailing window, inclusive of the current point.
	middle := 0.0
	for _, p := range prices[n-bollingerWindow:] {
		middle += p
	}
	middle /= float64(bollingerWindow)

	// The deviation window lags the mean window by one point: at the tail it
	// covers the 20 prices ending at the previous candle. At exactly 20
	// candles it degrades to the whole series. Preserved from the recorded
	// indicator history.
	var sigma float64
	if n > bollingerWindow {
		sigma = populationStd(prices[n-1-bollingerWindow : n-1])
	} else {
		sigma = populationStd(prices)
	}

	return &models.BollingerBands{
		Upper:  middle + bollingerStd*sigma,
		Middle: middle,
		Lower:  middle - bollingerStd*sigma,
	}
}

// Volatility is the population standard deviation of simple
// period-over-period returns, scaled by 100*sqrt(24) to annualize hourly
// sampling to a daily figure.
func Volatility(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	returns := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		returns[i-1] = (prices[i] - prices[i-1]) / prices[i-1]
	}
	return populationStd(returns) * 100 * math.Sqrt(24)
}

// PriceChange24h is the percent change against the close 24 periods back.
// Unlike other indicators it always has a value: 0 below 24 candles.
func PriceChange24h(prices []float64) float64 {
	if len(prices) < 24 {
		return 0
	}
	return (prices[len(prices)-1]/prices[len(prices)-24] - 1) * 100
}

// PriceHistory returns the last 24 closes oldest-first, or nil below 24.
func PriceHistory(prices []float64) []float64 {
	if len(prices) < 24 {
		return nil
	}
	out := make([]float64, 24)
	copy(out, prices[len(prices)-24:])
	return out
}

// Compute derives the full IndicatorSet from a candle series.
// Individual indicators whose lookback is unmet come back nil.
func Compute(candles []models.Candle) models.IndicatorSet {
	prices := models.Closes(candles)
	return models.IndicatorSet{
		MA7:            SMA(prices, 7),
		MA25:           SMA(prices, 25),
		MA99:           SMA(prices, 99),
		RSI:            RSI(prices),
		MACD:           MACD(prices),
		Bollinger:      Bollinger(prices),
		Volatility:     Volatility(prices),
		PriceChange24h: PriceChange24h(prices),
		PriceHistory:   PriceHistory(prices),
	}
}

func populationStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	variance /= float64(len(xs))
	return math.Sqrt(variance)
}
