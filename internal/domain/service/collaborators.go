package service

import (
	"context"

	"TradeTuner/internal/domain/models"
)

// MarketDataProvider supplies the raw market inputs for one analysis pass.
// Implementations do the I/O; the engine itself never touches the network.
type MarketDataProvider interface {
	// FetchCandles returns ascending-ordered candles; may return fewer than
	// limit when history is short.
	FetchCandles(ctx context.Context, pair, interval string, limit int) ([]models.Candle, error)
	FetchRecentTrades(ctx context.Context, pair string, limit int) ([]models.Trade, error)
	FetchOrderBook(ctx context.Context, pair string, limit int) (*models.OrderBook, error)
	FetchTicker(ctx context.Context, pair string) (*models.Ticker, error)
}

// ExternalProposal is the raw candidate an external optimizer returns.
// Params must be a parameter mapping; the optimizer usecase validates the
// shape and falls back to the current set when it is malformed. Keys absent
// from the mapping inherit the current value.
type ExternalProposal struct {
	Params              map[string]float64 `json:"params"`
	Reasoning           string             `json:"reasoning"`
	ExpectedImprovement string             `json:"expected_improvement"`
}

// ExternalOptimizer is the opaque strategy collaborator used once enough
// trade history exists. Its output is routed through the same safety clamp
// as the rule-based path.
type ExternalOptimizer interface {
	Optimize(ctx context.Context, pair string, current models.ParameterSet, history []models.FlatTrade, snapshot *models.MarketSnapshot) (*ExternalProposal, error)
}
