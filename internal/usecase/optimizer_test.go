package usecase

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
	domsvc "TradeTuner/internal/domain/service"
	"TradeTuner/internal/services/optimize"
)

type fakeExternal struct {
	proposal *domsvc.ExternalProposal
	err      error
	calls    int
	gotPair  string
	gotHist  []models.FlatTrade
}

func (f *fakeExternal) Optimize(ctx context.Context, pair string, current models.ParameterSet, history []models.FlatTrade, snapshot *models.MarketSnapshot) (*domsvc.ExternalProposal, error) {
	f.calls++
	f.gotPair = pair
	f.gotHist = history
	return f.proposal, f.err
}

type fakePublisher struct {
	results []*models.OptimizationResult
	err     error
}

func (f *fakePublisher) PublishDecision(ctx context.Context, res *models.OptimizationResult) error {
	f.results = append(f.results, res)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func optimizerSnapshot(dir models.TrendDirection, strength, volatility float64) *models.MarketSnapshot {
	return &models.MarketSnapshot{
		Pair:       "BTCUSDT",
		AsOf:       time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC),
		Trend:      models.TrendAssessment{Direction: dir, Strength: strength},
		Indicators: models.IndicatorSet{Volatility: volatility},
	}
}

func outcomes(n int) []models.TradeOutcome {
	out := make([]models.TradeOutcome, n)
	opened := time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = models.TradeOutcome{Status: "closed", EntryPrice: 100, TargetPrice: 101, Size: 0.01, OpenedAt: opened}
	}
	return out
}

func newTestOptimizer(t *testing.T, external domsvc.ExternalOptimizer, pub *fakePublisher) (*ParameterOptimizer, *fakeMetrics) {
	t.Helper()
	m := newFakeMetrics()
	var p drepo.Publisher
	if pub != nil {
		p = pub
	}
	return NewParameterOptimizer(external, optimize.DefaultClampPolicy, p, nil, m, testLogger(t)), m
}

func TestOptimizeNilSnapshot(t *testing.T) {
	o, _ := newTestOptimizer(t, nil, nil)
	if _, err := o.Optimize(context.Background(), "BTCUSDT", models.ParameterSet{}, nil, nil); err == nil {
		t.Fatalf("expected error without a snapshot")
	}
}

func TestOptimizeRuleBasedBelowThreshold(t *testing.T) {
	ext := &fakeExternal{}
	o, _ := newTestOptimizer(t, ext, nil)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, outcomes(9), optimizerSnapshot(models.TrendUp, 0.8, 10))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.StrategyUsed != models.StrategyRuleBased {
		t.Fatalf("9 trades stay on the rule path, got %s", res.StrategyUsed)
	}
	if ext.calls != 0 {
		t.Fatalf("external strategy must not be consulted")
	}
	if math.Abs(res.NewParams.ProfitMargin-1.2) > 1e-9 {
		t.Fatalf("expected margin 1.2 from the uptrend rule, got %v", res.NewParams.ProfitMargin)
	}
	if res.Previous != current {
		t.Fatalf("previous set must be echoed back unchanged")
	}
}

func TestOptimizeExternalAtThreshold(t *testing.T) {
	ext := &fakeExternal{
		proposal: &domsvc.ExternalProposal{
			Params:    map[string]float64{"profit_margin": 1.25, "stop_loss": 4.0},
			Reasoning: "Tighter target based on realized outcomes",
		},
	}
	o, _ := newTestOptimizer(t, ext, nil)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, outcomes(10), optimizerSnapshot(models.TrendUp, 0.8, 10))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.StrategyUsed != models.StrategyExternal {
		t.Fatalf("10 trades switch to the external path, got %s", res.StrategyUsed)
	}
	if ext.calls != 1 || len(ext.gotHist) != 10 {
		t.Fatalf("external strategy should see the flattened history")
	}
	if math.Abs(res.NewParams.ProfitMargin-1.25) > 1e-9 {
		t.Fatalf("expected proposed margin 1.25, got %v", res.NewParams.ProfitMargin)
	}
	// Keys absent from the proposal inherit the current values.
	if res.NewParams.TradeSize != 0.01 || res.NewParams.MaxOpenTime != 48 {
		t.Fatalf("missing keys must inherit: %+v", res.NewParams)
	}
	if res.NewParams.StopLoss == nil || *res.NewParams.StopLoss != 4.0 {
		t.Fatalf("expected stop loss 4.0, got %+v", res.NewParams.StopLoss)
	}
	if res.Reasoning != "Tighter target based on realized outcomes" {
		t.Fatalf("unexpected reasoning: %s", res.Reasoning)
	}
}

func TestOptimizeExternalProposalClamped(t *testing.T) {
	ext := &fakeExternal{
		proposal: &domsvc.ExternalProposal{
			Params: map[string]float64{"profit_margin": 9.0},
		},
	}
	o, _ := newTestOptimizer(t, ext, nil)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, outcomes(20), optimizerSnapshot(models.TrendUp, 0.4, 10))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if math.Abs(res.NewParams.ProfitMargin-1.3) > 1e-9 {
		t.Fatalf("out-of-range proposal must be clamped to 1.3, got %v", res.NewParams.ProfitMargin)
	}
	if res.Reasoning != "No reasoning provided" {
		t.Fatalf("empty reasoning gets the placeholder, got %q", res.Reasoning)
	}
}

func TestOptimizeExternalFailureFallsBack(t *testing.T) {
	ext := &fakeExternal{err: errors.New("connection refused")}
	o, m := newTestOptimizer(t, ext, nil)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, outcomes(12), optimizerSnapshot(models.TrendUp, 0.8, 10))
	if err != nil {
		t.Fatalf("an external failure degrades, it does not fail: %v", err)
	}
	if res.NewParams.ProfitMargin != current.ProfitMargin || res.NewParams.TradeSize != current.TradeSize {
		t.Fatalf("fallback keeps the current set: %+v", res.NewParams)
	}
	if res.StrategyUsed != models.StrategyExternal {
		t.Fatalf("the attempted strategy is still recorded, got %s", res.StrategyUsed)
	}
	if m.errors["external_optimizer"] != 1 {
		t.Fatalf("expected a recorded external error, got %v", m.errors)
	}
}

func TestOptimizeMalformedProposalFallsBack(t *testing.T) {
	ext := &fakeExternal{proposal: &domsvc.ExternalProposal{Params: nil}}
	o, m := newTestOptimizer(t, ext, nil)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, outcomes(10), optimizerSnapshot(models.TrendUp, 0.8, 10))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.NewParams.ProfitMargin != 1.0 {
		t.Fatalf("malformed proposal keeps the current set: %+v", res.NewParams)
	}
	if res.Reasoning != "External optimizer returned an invalid response; keeping current parameters." {
		t.Fatalf("unexpected reasoning: %s", res.Reasoning)
	}
	if m.errors["external_response"] != 1 {
		t.Fatalf("expected a recorded response error, got %v", m.errors)
	}
}

func TestOptimizeNilExternalUsesRules(t *testing.T) {
	o, _ := newTestOptimizer(t, nil, nil)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, outcomes(50), optimizerSnapshot(models.TrendDown, 0.8, 10))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if res.StrategyUsed != models.StrategyRuleBased {
		t.Fatalf("without an external strategy the rule path handles any history size, got %s", res.StrategyUsed)
	}
	if res.NewParams.StopLoss == nil || *res.NewParams.StopLoss != 5.0 {
		t.Fatalf("expected the downtrend stop loss, got %+v", res.NewParams.StopLoss)
	}
}

func TestOptimizePublishesDecision(t *testing.T) {
	pub := &fakePublisher{}
	o, _ := newTestOptimizer(t, nil, pub)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	res, err := o.Optimize(context.Background(), "BTCUSDT", current, nil, optimizerSnapshot(models.TrendUp, 0.8, 10))
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if len(pub.results) != 1 || pub.results[0] != res {
		t.Fatalf("the decision must be published once")
	}
}

func TestOptimizePublishFailureIsNonFatal(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	o, m := newTestOptimizer(t, nil, pub)

	current := models.ParameterSet{ProfitMargin: 1.0, TradeSize: 0.01, MaxOpenTime: 48}
	if _, err := o.Optimize(context.Background(), "BTCUSDT", current, nil, optimizerSnapshot(models.TrendUp, 0.8, 10)); err != nil {
		t.Fatalf("publish failures must not fail the optimization: %v", err)
	}
	if m.errors["publish_decision"] != 1 {
		t.Fatalf("expected a recorded publish error, got %v", m.errors)
	}
}
