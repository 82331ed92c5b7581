package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
	domsvc "TradeTuner/internal/domain/service"
	icache "TradeTuner/internal/service/cache"
	"TradeTuner/internal/services/flow"
	"TradeTuner/internal/services/indicators"
	"TradeTuner/internal/services/recommend"
	"TradeTuner/internal/services/trend"
	xlogger "TradeTuner/pkg/logger"
)

const (
	// DefaultLookback is the candle window analyzed when the caller does not
	// specify one: one week of hourly candles.
	DefaultLookback = 168

	recentTradesLimit = 100
	orderBookLimit    = 50
)

// MarketAnalyzer assembles one immutable MarketSnapshot per (pair, lookback)
// query: indicators, trend, flow, recommendation and reasoning. All
// computation is synchronous and deterministic for identical inputs; the
// only state it touches is the optional snapshot cache and audit trail.
type MarketAnalyzer struct {
	provider domsvc.MarketDataProvider
	tape     drepo.TradeTape
	cache    icache.BytesCache
	cacheTTL time.Duration
	audit    drepo.AuditStore
	metrics  drepo.Metrics
	logger   *xlogger.Logger
	interval drepo.Interval
}

// NewMarketAnalyzer creates the analyzer. tape, cache and audit are
// optional; nil disables the corresponding behavior.
func NewMarketAnalyzer(
	provider domsvc.MarketDataProvider,
	tape drepo.TradeTape,
	cache icache.BytesCache,
	cacheTTL time.Duration,
	audit drepo.AuditStore,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
) *MarketAnalyzer {
	return &MarketAnalyzer{
		provider: provider,
		tape:     tape,
		cache:    cache,
		cacheTTL: cacheTTL,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		interval: drepo.DefaultInterval(),
	}
}

// SetInterval overrides the candle interval requested from the provider.
func (a *MarketAnalyzer) SetInterval(iv drepo.Interval) { a.interval = iv }

// Analyze produces a fresh MarketSnapshot for the pair over the lookback
// window. Fails with models.ErrInsufficientData below 24 candles; degraded
// trade or order-book inputs downgrade the flow sub-assessment only.
func (a *MarketAnalyzer) Analyze(ctx context.Context, pair string, lookback int) (*models.MarketSnapshot, error) {
	if lookback <= 0 {
		lookback = DefaultLookback
	}

	if cached := a.cachedSnapshot(pair, lookback); cached != nil {
		return cached, nil
	}

	start := time.Now()

	candles, err := a.provider.FetchCandles(ctx, pair, string(a.interval), lookback)
	if err != nil {
		a.metrics.RecordError("fetch_candles")
		return nil, fmt.Errorf("fetch candles %s: %w", pair, err)
	}
	if len(candles) < indicators.MinCandles {
		return nil, fmt.Errorf("%s: %d candles: %w", pair, len(candles), models.ErrInsufficientData)
	}
	if err := models.ValidateCandles(candles); err != nil {
		return nil, fmt.Errorf("candle series %s: %w", pair, err)
	}

	set := indicators.Compute(candles)
	lastClose := candles[len(candles)-1].Close
	assessment := trend.Classify(lastClose, set.MA7, set.MA25, set.MA99)

	trades := a.recentTrades(ctx, pair)
	book := a.orderBook(ctx, pair)
	flowAssessment := flow.Analyze(trades, book)

	ticker, err := a.provider.FetchTicker(ctx, pair)
	if err != nil {
		a.metrics.RecordError("fetch_ticker")
		return nil, fmt.Errorf("fetch ticker %s: %w", pair, err)
	}

	recommended := recommend.Decide(assessment, set.Volatility, set.RSI, set.MACD)

	snapshot := &models.MarketSnapshot{
		Pair:               pair,
		AsOf:               candles[len(candles)-1].Timestamp,
		CurrentPrice:       ticker.LastPrice,
		Volume24h:          ticker.Volume,
		Indicators:         set,
		Trend:              assessment,
		Flow:               flowAssessment,
		TradingRecommended: recommended,
		Reasoning:          recommend.Reasoning(assessment, set.Volatility, set.RSI, set.MACD, recommended),
	}

	a.metrics.RecordSnapshot(pair, recommended)
	a.metrics.RecordLastPrice(pair, ticker.LastPrice)
	a.metrics.RecordLatency("analyze", time.Since(start).Seconds())

	if a.audit != nil {
		if err := a.audit.RecordSnapshot(ctx, snapshot); err != nil {
			a.metrics.RecordError("audit_snapshot")
			a.logger.Warn("snapshot audit failed", xlogger.String("pair", pair), xlogger.Error(err))
		}
	}
	a.storeSnapshot(pair, lookback, snapshot)

	return snapshot, nil
}

// recentTrades prefers the live tape when it has data for the pair and
// falls back to the REST provider. nil means the input is unavailable.
func (a *MarketAnalyzer) recentTrades(ctx context.Context, pair string) []models.Trade {
	if a.tape != nil {
		if trades := a.tape.Recent(pair, recentTradesLimit); trades != nil {
			return trades
		}
	}
	trades, err := a.provider.FetchRecentTrades(ctx, pair, recentTradesLimit)
	if err != nil {
		a.metrics.RecordError("fetch_trades")
		a.logger.Warn("recent trades degraded", xlogger.String("pair", pair), xlogger.Error(err))
		return nil
	}
	return trades
}

func (a *MarketAnalyzer) orderBook(ctx context.Context, pair string) *models.OrderBook {
	book, err := a.provider.FetchOrderBook(ctx, pair, orderBookLimit)
	if err != nil {
		a.metrics.RecordError("fetch_book")
		a.logger.Warn("order book degraded", xlogger.String("pair", pair), xlogger.Error(err))
		return nil
	}
	return book
}

func (a *MarketAnalyzer) cachedSnapshot(pair string, lookback int) *models.MarketSnapshot {
	if a.cache == nil {
		return nil
	}
	b, ok, err := a.cache.GetBytes(snapshotKey(pair, lookback))
	if err != nil || !ok {
		return nil
	}
	var s models.MarketSnapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	return &s
}

func (a *MarketAnalyzer) storeSnapshot(pair string, lookback int, s *models.MarketSnapshot) {
	if a.cache == nil || a.cacheTTL <= 0 {
		return
	}
	b, err := json.Marshal(s)
	if err != nil {
		return
	}
	if err := a.cache.SetBytes(snapshotKey(pair, lookback), b, a.cacheTTL); err != nil {
		a.logger.Debug("snapshot cache write failed", xlogger.String("pair", pair), xlogger.Error(err))
	}
}

func snapshotKey(pair string, lookback int) string {
	return fmt.Sprintf("snapshot:%s:%d", pair, lookback)
}
