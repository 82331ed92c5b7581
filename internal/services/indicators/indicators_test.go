package indicators

import (
	"math"
	"testing"
	"time"

	"TradeTuner/internal/domain/models"
)

func candleSeries(closes []float64) []models.Candle {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1,
		}
	}
	return out
}

func linear(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5, 6, 7}
	got := SMA(prices, 3)
	if got == nil {
		t.Fatalf("expected value")
	}
	if *got != 6 {
		t.Fatalf("unexpected sma %v", *got)
	}
}

func TestSMATooShort(t *testing.T) {
	if got := SMA([]float64{1, 2}, 3); got != nil {
		t.Fatalf("expected nil, got %v", *got)
	}
}

func TestRSITooShort(t *testing.T) {
	if got := RSI(linear(14, 100, 1)); got != nil {
		t.Fatalf("expected nil below 15 prices, got %v", *got)
	}
}

func TestRSIAllGains(t *testing.T) {
	got := RSI(linear(40, 100, 1))
	if got == nil {
		t.Fatalf("expected value")
	}
	if *got != 100 {
		t.Fatalf("expected 100 with no losses, got %v", *got)
	}
}

func TestRSIAllLosses(t *testing.T) {
	got := RSI(linear(40, 100, -1))
	if got == nil {
		t.Fatalf("expected value")
	}
	if math.Abs(*got) > 1e-9 {
		t.Fatalf("expected 0 with no gains, got %v", *got)
	}
}

func TestRSIRange(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	got := RSI(prices)
	if got == nil {
		t.Fatalf("expected value")
	}
	if *got < 0 || *got > 100 {
		t.Fatalf("rsi out of range: %v", *got)
	}
}

func TestEMATooShort(t *testing.T) {
	if got := EMA(linear(12, 1, 1), 12); got != nil {
		t.Fatalf("expected nil when series not longer than window")
	}
}

func TestEMAConstantSeries(t *testing.T) {
	got := EMA(linear(30, 5, 0), 12)
	if got == nil {
		t.Fatalf("expected series")
	}
	if len(got) != 30 {
		t.Fatalf("unexpected length %d", len(got))
	}
	// Normalized weights reproduce a constant input exactly.
	for i, v := range got {
		if math.Abs(v-5) > 1e-9 {
			t.Fatalf("point %d: expected 5, got %v", i, v)
		}
	}
}

func TestEMAHeadBackfill(t *testing.T) {
	got := EMA(linear(30, 100, 1), 12)
	if got == nil {
		t.Fatalf("expected series")
	}
	for i := 0; i < 12; i++ {
		if got[i] != got[12] {
			t.Fatalf("head point %d not backfilled: %v != %v", i, got[i], got[12])
		}
	}
}

func TestMACDTooShort(t *testing.T) {
	if got := MACD(linear(34, 100, 1)); got != nil {
		t.Fatalf("expected nil below 35 prices")
	}
}

func TestMACDConstantSeries(t *testing.T) {
	got := MACD(linear(40, 100, 0))
	if got == nil {
		t.Fatalf("expected value")
	}
	if math.Abs(got.Line) > 1e-9 || math.Abs(got.Signal) > 1e-9 {
		t.Fatalf("flat series should give zero macd: %+v", got)
	}
	if math.Abs(got.Histogram-got.PrevHistogram) > 1e-9 {
		t.Fatalf("flat series histogram should not move: %+v", got)
	}
}

func TestMACDUptrendPositive(t *testing.T) {
	got := MACD(linear(60, 100, 1))
	if got == nil {
		t.Fatalf("expected value")
	}
	if got.Line <= 0 {
		t.Fatalf("steady uptrend should give positive macd line, got %v", got.Line)
	}
}

func TestBollingerTooShort(t *testing.T) {
	if got := Bollinger(linear(19, 100, 1)); got != nil {
		t.Fatalf("expected nil below 20 prices")
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	got := Bollinger(linear(30, 50, 0))
	if got == nil {
		t.Fatalf("expected value")
	}
	if got.Upper != 50 || got.Middle != 50 || got.Lower != 50 {
		t.Fatalf("flat series should collapse the bands: %+v", got)
	}
}

func TestBollingerSigmaWindowLagsMean(t *testing.T) {
	// 21 prices: the mean covers the last 20, the deviation covers the 20
	// prices ending one candle earlier.
	prices := linear(21, 100, 1)
	got := Bollinger(prices)
	if got == nil {
		t.Fatalf("expected value")
	}
	wantMiddle := 0.0
	for _, p := range prices[1:] {
		wantMiddle += p
	}
	wantMiddle /= 20
	if math.Abs(got.Middle-wantMiddle) > 1e-9 {
		t.Fatalf("middle band: expected %v, got %v", wantMiddle, got.Middle)
	}

	sigma := stdOf(prices[:20])
	if math.Abs(got.Upper-(wantMiddle+2*sigma)) > 1e-9 {
		t.Fatalf("upper band: expected %v, got %v", wantMiddle+2*sigma, got.Upper)
	}
	if math.Abs(got.Lower-(wantMiddle-2*sigma)) > 1e-9 {
		t.Fatalf("lower band: expected %v, got %v", wantMiddle-2*sigma, got.Lower)
	}
}

func TestBollingerExactWindow(t *testing.T) {
	prices := linear(20, 100, 1)
	got := Bollinger(prices)
	if got == nil {
		t.Fatalf("expected value")
	}
	sigma := stdOf(prices)
	if math.Abs(got.Upper-got.Middle-2*sigma) > 1e-9 {
		t.Fatalf("at exactly 20 prices the deviation should use the whole series")
	}
}

func TestVolatilityConstantSeries(t *testing.T) {
	if got := Volatility(linear(30, 100, 0)); got != 0 {
		t.Fatalf("flat series should have zero volatility, got %v", got)
	}
}

func TestVolatilityKnownSeries(t *testing.T) {
	// Alternating +10% / -10% returns around 100.
	prices := []float64{100, 110, 99, 108.9, 98.01}
	got := Volatility(prices)
	returns := []float64{0.1, -0.1, 0.1, -0.1}
	want := stdOf(returns) * 100 * math.Sqrt(24)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestPriceChange24h(t *testing.T) {
	prices := linear(30, 100, 0)
	prices[len(prices)-24] = 100
	prices[len(prices)-1] = 110
	got := PriceChange24h(prices)
	if math.Abs(got-10) > 1e-9 {
		t.Fatalf("expected 10%%, got %v", got)
	}
}

func TestPriceChange24hShortSeries(t *testing.T) {
	if got := PriceChange24h(linear(23, 100, 1)); got != 0 {
		t.Fatalf("expected 0 below 24 prices, got %v", got)
	}
}

func TestPriceHistory(t *testing.T) {
	prices := linear(30, 0, 1)
	got := PriceHistory(prices)
	if len(got) != 24 {
		t.Fatalf("expected 24 points, got %d", len(got))
	}
	if got[0] != 6 || got[23] != 29 {
		t.Fatalf("unexpected window bounds: %v .. %v", got[0], got[23])
	}
}

func TestPriceHistoryShortSeries(t *testing.T) {
	if got := PriceHistory(linear(23, 0, 1)); got != nil {
		t.Fatalf("expected nil below 24 prices")
	}
}

func TestComputeShortSeries(t *testing.T) {
	set := Compute(candleSeries(linear(24, 100, 1)))
	if set.MA7 == nil || set.RSI == nil || set.Bollinger == nil {
		t.Fatalf("24 candles should satisfy the short windows")
	}
	if set.MA25 != nil || set.MA99 != nil || set.MACD != nil {
		t.Fatalf("24 candles should not satisfy the long windows")
	}
	if set.PriceHistory == nil {
		t.Fatalf("expected price history at 24 candles")
	}
}

func TestComputeFullSeries(t *testing.T) {
	set := Compute(candleSeries(linear(168, 100, 0.5)))
	if set.MA7 == nil || set.MA25 == nil || set.MA99 == nil {
		t.Fatalf("expected all moving averages")
	}
	if set.RSI == nil || set.MACD == nil || set.Bollinger == nil {
		t.Fatalf("expected full indicator set")
	}
}

func TestComputeDeterministic(t *testing.T) {
	candles := candleSeries(linear(60, 100, 0.25))
	a := Compute(candles)
	b := Compute(candles)
	if *a.RSI != *b.RSI || a.MACD.Histogram != b.MACD.Histogram || a.Volatility != b.Volatility {
		t.Fatalf("identical inputs must produce identical outputs")
	}
}

func stdOf(xs []float64) float64 {
	mean := 0.0
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	v := 0.0
	for _, x := range xs {
		d := x - mean
		v += d * d
	}
	return math.Sqrt(v / float64(len(xs)))
}
