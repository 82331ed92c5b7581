package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Pair     string `query:"pair" json:"pair" validate:"required"`
	Lookback int    `query:"lookback" json:"lookback" default:"168" validate:"gte=1,lte=1000"`
}

type OptimizeRequest struct {
	Pair     string         `json:"pair" validate:"required"`
	Lookback int            `json:"lookback" default:"168" validate:"gte=1,lte=1000"`
	Params   ParameterSet   `json:"params" validate:"required"`
	Trades   []TradeOutcome `json:"trades" validate:"max=1000"`
}
