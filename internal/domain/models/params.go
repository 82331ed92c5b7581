package models

import "time"

// Optimization strategies.
const (
	StrategyRuleBased = "rule_based"
	StrategyExternal  = "external"
)

// ParameterSet is a trading strategy's tunable knobs. The optimization
// policy always produces a new, fully-specified set; it never mutates the
// set it was given. StopLoss is nil when no stop-loss is configured.
type ParameterSet struct {
	ProfitMargin float64  `json:"profit_margin"`
	TradeSize    float64  `json:"trade_size"`
	MaxOpenTime  float64  `json:"max_open_time"` // hours
	StopLoss     *float64 `json:"stop_loss"`
}

// Clone returns a deep copy so adjustments never alias the input.
func (p ParameterSet) Clone() ParameterSet {
	out := p
	if p.StopLoss != nil {
		v := *p.StopLoss
		out.StopLoss = &v
	}
	return out
}

// TradeOutcome is one historical trade, used only as optimizer input.
type TradeOutcome struct {
	Status      string     `json:"status"`
	EntryPrice  float64    `json:"entry_price"`
	TargetPrice float64    `json:"target_price"`
	Size        float64    `json:"size"`
	ProfitLoss  *float64   `json:"profit_loss"`
	OpenedAt    time.Time  `json:"opened_at"`
	ClosedAt    *time.Time `json:"closed_at"`
}

// FlatTrade is a TradeOutcome flattened for the external optimizer:
// duration is precomputed so the collaborator never sees raw timestamps.
type FlatTrade struct {
	Status        string   `json:"status"`
	EntryPrice    float64  `json:"entry_price"`
	TargetPrice   float64  `json:"target_price"`
	Size          float64  `json:"size"`
	ProfitLoss    *float64 `json:"profit_loss"`
	DurationHours *float64 `json:"duration_hours"`
}

// OptimizationResult is the outcome of one optimization call.
type OptimizationResult struct {
	Pair         string       `json:"pair"`
	Previous     ParameterSet `json:"previous_config"`
	NewParams    ParameterSet `json:"new_config"`
	Reasoning    string       `json:"reasoning"`
	StrategyUsed string       `json:"strategy_used"`
}
