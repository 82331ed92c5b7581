package analytics

import (
	"context"
	"fmt"

	"TradeTuner/internal/domain/models"
	domsvc "TradeTuner/internal/domain/service"
	"TradeTuner/pkg/config"
)

// HTTPExternalOptimizer asks a remote optimization service for parameter
// proposals based on recent trade performance and market conditions.
type HTTPExternalOptimizer struct {
	base     *HTTPServiceBase
	attempts int
}

func NewHTTPExternalOptimizer(cfg *config.Config) *HTTPExternalOptimizer {
	attempts := cfg.Optimizer.RetryAttempts
	if attempts <= 0 {
		attempts = 3
	}
	return &HTTPExternalOptimizer{base: NewHTTPServiceBase(cfg), attempts: attempts}
}

type optimizeRequest struct {
	Pair          string                 `json:"pair"`
	CurrentParams models.ParameterSet    `json:"current_params"`
	TradeHistory  []models.FlatTrade     `json:"trade_history"`
	MarketData    *models.MarketSnapshot `json:"market_data"`
}

type optimizeResponse struct {
	NewParameters       map[string]float64 `json:"new_parameters"`
	Reasoning           string             `json:"reasoning"`
	ExpectedImprovement string             `json:"expected_improvement"`
}

func (o *HTTPExternalOptimizer) Optimize(
	ctx context.Context,
	pair string,
	current models.ParameterSet,
	history []models.FlatTrade,
	snapshot *models.MarketSnapshot,
) (*domsvc.ExternalProposal, error) {
	req := optimizeRequest{
		Pair:          pair,
		CurrentParams: current,
		TradeHistory:  history,
		MarketData:    snapshot,
	}
	var resp optimizeResponse
	if err := o.base.PostJSONWithRetry(ctx, "/optimize", req, &resp, o.attempts); err != nil {
		return nil, fmt.Errorf("external optimize %s: %w", pair, err)
	}
	return &domsvc.ExternalProposal{
		Params:              resp.NewParameters,
		Reasoning:           resp.Reasoning,
		ExpectedImprovement: resp.ExpectedImprovement,
	}, nil
}

var _ domsvc.ExternalOptimizer = (*HTTPExternalOptimizer)(nil)
