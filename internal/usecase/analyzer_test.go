package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TradeTuner/internal/domain/models"
	icache "TradeTuner/internal/service/cache"
	xlogger "TradeTuner/pkg/logger"
)

type fakeProvider struct {
	candles    []models.Candle
	candleErr  error
	trades     []models.Trade
	tradesErr  error
	book       *models.OrderBook
	bookErr    error
	ticker     *models.Ticker
	tickerErr  error
	candleReqs int
}

func (f *fakeProvider) FetchCandles(ctx context.Context, pair, interval string, limit int) ([]models.Candle, error) {
	f.candleReqs++
	return f.candles, f.candleErr
}

func (f *fakeProvider) FetchRecentTrades(ctx context.Context, pair string, limit int) ([]models.Trade, error) {
	return f.trades, f.tradesErr
}

func (f *fakeProvider) FetchOrderBook(ctx context.Context, pair string, limit int) (*models.OrderBook, error) {
	return f.book, f.bookErr
}

func (f *fakeProvider) FetchTicker(ctx context.Context, pair string) (*models.Ticker, error) {
	return f.ticker, f.tickerErr
}

type fakeMetrics struct {
	mu        sync.Mutex
	errors    map[string]int
	snapshots int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{errors: make(map[string]int)}
}

func (m *fakeMetrics) RecordSnapshot(pair string, recommended bool) {
	m.mu.Lock()
	m.snapshots++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordOptimization(pair, strategy string) {}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastPrice(pair string, price float64) {}
func (m *fakeMetrics) RecordLatency(op string, seconds float64)   {}

func testLogger(t *testing.T) *xlogger.Logger {
	t.Helper()
	l, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

func marketCandles(n int) []models.Candle {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		price := 100 + float64(i)*0.1
		out[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1,
		}
	}
	return out
}

func healthyProvider(n int) *fakeProvider {
	book := &models.OrderBook{
		Bids: make([]models.BookLevel, 10),
		Asks: make([]models.BookLevel, 10),
	}
	for i := range book.Bids {
		book.Bids[i] = models.BookLevel{Price: 99 - float64(i)*0.1, Size: 1}
		book.Asks[i] = models.BookLevel{Price: 100 + float64(i)*0.1, Size: 1}
	}
	return &fakeProvider{
		candles: marketCandles(n),
		trades:  []models.Trade{{BuyerMaker: false}, {BuyerMaker: true}},
		book:    book,
		ticker:  &models.Ticker{Symbol: "BTCUSDT", LastPrice: 105, Volume: 1000},
	}
}

func newTestAnalyzer(t *testing.T, p *fakeProvider, cache icache.BytesCache, ttl time.Duration) (*MarketAnalyzer, *fakeMetrics) {
	t.Helper()
	m := newFakeMetrics()
	return NewMarketAnalyzer(p, nil, cache, ttl, nil, m, testLogger(t)), m
}

func TestAnalyzeHappyPath(t *testing.T) {
	p := healthyProvider(168)
	a, _ := newTestAnalyzer(t, p, nil, 0)

	snap, err := a.Analyze(context.Background(), "BTCUSDT", 168)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if snap.Pair != "BTCUSDT" || snap.CurrentPrice != 105 {
		t.Fatalf("unexpected snapshot header %+v", snap)
	}
	if !snap.AsOf.Equal(p.candles[len(p.candles)-1].Timestamp) {
		t.Fatalf("as-of must be the last candle timestamp, got %v", snap.AsOf)
	}
	if snap.Indicators.MA7 == nil || snap.Indicators.MA99 == nil || snap.Indicators.MACD == nil {
		t.Fatalf("168 candles should yield the full indicator set")
	}
	if snap.Flow.Activity.Status != models.AvailabilityOK || snap.Flow.Depth.Status != models.AvailabilityOK {
		t.Fatalf("healthy inputs yield ok flow: %+v", snap.Flow)
	}
	if snap.Reasoning == "" {
		t.Fatalf("missing reasoning")
	}
}

// pullbackCandles rises two ticks and gives one back, so the trend stays up
// while RSI holds below the overbought threshold.
func pullbackCandles(n int) []models.Candle {
	base := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	price := 100.0
	for i := range out {
		if i > 0 {
			if i%2 == 1 {
				price += 0.3
			} else {
				price -= 0.15
			}
		}
		out[i] = models.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    1,
		}
	}
	return out
}

func TestAnalyzeRecommendsUptrendWithPullbacks(t *testing.T) {
	p := healthyProvider(30)
	p.candles = pullbackCandles(30)
	a, _ := newTestAnalyzer(t, p, nil, 0)

	snap, err := a.Analyze(context.Background(), "BTCUSDT", 30)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if snap.Trend.Direction != models.TrendUp || snap.Trend.Strength != 0.9 {
		t.Fatalf("expected strong uptrend, got %+v", snap.Trend)
	}
	if snap.Indicators.RSI == nil || *snap.Indicators.RSI >= 70 || *snap.Indicators.RSI <= 30 {
		t.Fatalf("expected neutral RSI, got %v", snap.Indicators.RSI)
	}
	if !snap.TradingRecommended {
		t.Fatalf("uptrend with neutral signals must recommend trading: %+v", snap)
	}
}

func TestAnalyzeInsufficientCandles(t *testing.T) {
	a, _ := newTestAnalyzer(t, healthyProvider(23), nil, 0)

	_, err := a.Analyze(context.Background(), "BTCUSDT", 168)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeCandleFetchError(t *testing.T) {
	p := healthyProvider(168)
	p.candleErr = errors.New("exchange down")
	a, m := newTestAnalyzer(t, p, nil, 0)

	if _, err := a.Analyze(context.Background(), "BTCUSDT", 168); err == nil {
		t.Fatalf("expected error")
	}
	if m.errors["fetch_candles"] != 1 {
		t.Fatalf("expected a recorded fetch error, got %v", m.errors)
	}
}

func TestAnalyzeDegradedTrades(t *testing.T) {
	p := healthyProvider(168)
	p.trades = nil
	p.tradesErr = errors.New("timeout")
	a, _ := newTestAnalyzer(t, p, nil, 0)

	snap, err := a.Analyze(context.Background(), "BTCUSDT", 168)
	if err != nil {
		t.Fatalf("degraded trades must not fail the snapshot: %v", err)
	}
	if snap.Flow.Activity.Status != models.AvailabilityUnavailable {
		t.Fatalf("expected unavailable activity, got %+v", snap.Flow.Activity)
	}
	if snap.Flow.Activity.BuyRatio != 0.5 {
		t.Fatalf("expected neutral ratio, got %v", snap.Flow.Activity.BuyRatio)
	}
}

func TestAnalyzeDegradedBook(t *testing.T) {
	p := healthyProvider(168)
	p.book = nil
	p.bookErr = errors.New("timeout")
	a, _ := newTestAnalyzer(t, p, nil, 0)

	snap, err := a.Analyze(context.Background(), "BTCUSDT", 168)
	if err != nil {
		t.Fatalf("degraded book must not fail the snapshot: %v", err)
	}
	if snap.Flow.Depth.Status != models.AvailabilityUnavailable {
		t.Fatalf("expected unavailable depth, got %+v", snap.Flow.Depth)
	}
}

func TestAnalyzeTickerError(t *testing.T) {
	p := healthyProvider(168)
	p.ticker = nil
	p.tickerErr = errors.New("timeout")
	a, _ := newTestAnalyzer(t, p, nil, 0)

	if _, err := a.Analyze(context.Background(), "BTCUSDT", 168); err == nil {
		t.Fatalf("a missing ticker fails the snapshot")
	}
}

func TestAnalyzeCacheHit(t *testing.T) {
	p := healthyProvider(168)
	a, _ := newTestAnalyzer(t, p, icache.NewTTLCache(), time.Minute)

	first, err := a.Analyze(context.Background(), "BTCUSDT", 168)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	second, err := a.Analyze(context.Background(), "BTCUSDT", 168)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p.candleReqs != 1 {
		t.Fatalf("second call should hit the cache, provider called %d times", p.candleReqs)
	}
	if !second.AsOf.Equal(first.AsOf) || second.CurrentPrice != first.CurrentPrice {
		t.Fatalf("cached snapshot differs: %+v vs %+v", second, first)
	}
}

func TestAnalyzeCacheKeyedByLookback(t *testing.T) {
	p := healthyProvider(168)
	a, _ := newTestAnalyzer(t, p, icache.NewTTLCache(), time.Minute)

	if _, err := a.Analyze(context.Background(), "BTCUSDT", 168); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := a.Analyze(context.Background(), "BTCUSDT", 100); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p.candleReqs != 2 {
		t.Fatalf("a different lookback is a different cache entry, provider called %d times", p.candleReqs)
	}
}

func TestAnalyzeInvalidSeriesRejected(t *testing.T) {
	p := healthyProvider(168)
	p.candles[50].Close = -1
	a, _ := newTestAnalyzer(t, p, nil, 0)

	if _, err := a.Analyze(context.Background(), "BTCUSDT", 168); err == nil {
		t.Fatalf("a non-positive price must fail validation")
	}
}

func TestAnalyzeDefaultLookback(t *testing.T) {
	p := healthyProvider(168)
	a, _ := newTestAnalyzer(t, p, icache.NewTTLCache(), time.Minute)

	if _, err := a.Analyze(context.Background(), "BTCUSDT", 0); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if _, err := a.Analyze(context.Background(), "BTCUSDT", DefaultLookback); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if p.candleReqs != 1 {
		t.Fatalf("lookback 0 normalizes to the default, provider called %d times", p.candleReqs)
	}
}
