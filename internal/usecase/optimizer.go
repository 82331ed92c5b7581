package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
	domsvc "TradeTuner/internal/domain/service"
	"TradeTuner/internal/services/optimize"
	xlogger "TradeTuner/pkg/logger"
)

// ParameterOptimizer produces a new, clamped ParameterSet from a market
// snapshot, the current set and recent trade history. With fewer than 10
// historical trades it runs the rule table; with enough history it
// delegates to the external strategy. Both paths end in the same clamp, so
// the result is always fully specified and in bounds.
type ParameterOptimizer struct {
	external domsvc.ExternalOptimizer
	clamp    optimize.ClampPolicy
	pub      drepo.Publisher
	audit    drepo.AuditStore
	metrics  drepo.Metrics
	logger   *xlogger.Logger
}

// NewParameterOptimizer creates the optimizer. external, pub and audit are
// optional; with a nil external the rule path handles any history size.
func NewParameterOptimizer(
	external domsvc.ExternalOptimizer,
	clamp optimize.ClampPolicy,
	pub drepo.Publisher,
	audit drepo.AuditStore,
	metrics drepo.Metrics,
	logger *xlogger.Logger,
) *ParameterOptimizer {
	return &ParameterOptimizer{
		external: external,
		clamp:    clamp,
		pub:      pub,
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
	}
}

// Optimize runs one optimization cycle. It never fails on an out-of-range
// or malformed candidate: bad values are clamped, a malformed external
// response falls back to the unmodified current set.
func (o *ParameterOptimizer) Optimize(ctx context.Context, pair string, current models.ParameterSet, history []models.TradeOutcome, snapshot *models.MarketSnapshot) (*models.OptimizationResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("optimize %s: snapshot is required", pair)
	}

	start := time.Now()

	var candidate models.ParameterSet
	var reasoning, strategy string
	if len(history) >= optimize.MinTradesForExternal && o.external != nil {
		candidate, reasoning = o.externalCandidate(ctx, pair, current, history, snapshot)
		strategy = models.StrategyExternal
	} else {
		candidate, reasoning = optimize.RuleBased(current, snapshot)
		strategy = models.StrategyRuleBased
	}

	result := &models.OptimizationResult{
		Pair:         pair,
		Previous:     current,
		NewParams:    o.clamp.Sanitize(candidate, current),
		Reasoning:    reasoning,
		StrategyUsed: strategy,
	}

	o.metrics.RecordOptimization(pair, strategy)
	o.metrics.RecordLatency("optimize", time.Since(start).Seconds())

	if o.pub != nil {
		if err := o.pub.PublishDecision(ctx, result); err != nil {
			o.metrics.RecordError("publish_decision")
			o.logger.Warn("decision publish failed", xlogger.String("pair", pair), xlogger.Error(err))
		}
	}
	if o.audit != nil {
		if err := o.audit.RecordOptimization(ctx, result); err != nil {
			o.metrics.RecordError("audit_optimization")
			o.logger.Warn("optimization audit failed", xlogger.String("pair", pair), xlogger.Error(err))
		}
	}

	return result, nil
}

// externalCandidate asks the external strategy for a proposal and merges it
// over the current set. Any malformed response degrades to the unmodified
// current set with reasoning noting the failure.
func (o *ParameterOptimizer) externalCandidate(ctx context.Context, pair string, current models.ParameterSet, history []models.TradeOutcome, snapshot *models.MarketSnapshot) (models.ParameterSet, string) {
	proposal, err := o.external.Optimize(ctx, pair, current, optimize.FlattenHistory(history), snapshot)
	if err != nil {
		o.metrics.RecordError("external_optimizer")
		o.logger.Warn("external optimizer failed", xlogger.String("pair", pair), xlogger.Error(err))
		return current.Clone(), fmt.Sprintf("External optimization failed (%v); keeping current parameters.", err)
	}
	if proposal == nil || proposal.Params == nil {
		o.metrics.RecordError("external_response")
		return current.Clone(), "External optimizer returned an invalid response; keeping current parameters."
	}

	candidate := current.Clone()
	if v, ok := proposal.Params["profit_margin"]; ok {
		candidate.ProfitMargin = v
	}
	if v, ok := proposal.Params["trade_size"]; ok {
		candidate.TradeSize = v
	}
	if v, ok := proposal.Params["max_open_time"]; ok {
		candidate.MaxOpenTime = v
	}
	if v, ok := proposal.Params["stop_loss"]; ok {
		candidate.StopLoss = models.Float(v)
	}

	reasoning := proposal.Reasoning
	if reasoning == "" {
		reasoning = "No reasoning provided"
	}
	return candidate, reasoning
}
