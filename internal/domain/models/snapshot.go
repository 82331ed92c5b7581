package models

import (
	"encoding/json"
	"math"
	"time"
)

// TrendDirection classifies the market trend.
type TrendDirection string

const (
	TrendUp       TrendDirection = "up"
	TrendDown     TrendDirection = "down"
	TrendSideways TrendDirection = "sideways"
	TrendUnknown  TrendDirection = "unknown"
)

// Availability marks whether a sub-assessment could be computed.
// Degraded means the input was present but partially unusable.
type Availability string

const (
	AvailabilityOK          Availability = "ok"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityDegraded    Availability = "degraded"
)

// MACDValues holds the latest MACD line/signal/histogram values plus the
// previous histogram point, which the recommendation rules compare against.
type MACDValues struct {
	Line          float64 `json:"macd_line"`
	Signal        float64 `json:"signal_line"`
	Histogram     float64 `json:"histogram"`
	PrevHistogram float64 `json:"prev_histogram"`
}

// BollingerBands is the upper/middle/lower envelope at the latest candle.
type BollingerBands struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorSet carries every derived indicator for one analysis call.
// Pointer fields are nil when the lookback window for that indicator is not
// satisfied; callers must treat nil as "unavailable", never as zero.
// PriceChange24h is the deliberate exception: it always has a value and
// falls back to 0 below 24 candles.
type IndicatorSet struct {
	MA7            *float64        `json:"ma_7"`
	MA25           *float64        `json:"ma_25"`
	MA99           *float64        `json:"ma_99"`
	RSI            *float64        `json:"rsi"`
	MACD           *MACDValues     `json:"macd"`
	Bollinger      *BollingerBands `json:"bollinger_bands"`
	Volatility     float64         `json:"volatility"`
	PriceChange24h float64         `json:"price_change_24h"`
	PriceHistory   []float64       `json:"price_history"`
}

// TrendAssessment is the classified direction with a [0,1] confidence score.
type TrendAssessment struct {
	Direction TrendDirection `json:"direction"`
	Strength  float64        `json:"strength"`
}

// TradeActivity summarizes buy/sell pressure from recent executed trades.
type TradeActivity struct {
	Status           Availability `json:"status"`
	StatusReason     string       `json:"status_reason,omitempty"`
	Buys             int          `json:"buys"`
	Sells            int          `json:"sells"`
	Total            int          `json:"total"`
	BuyRatio         float64      `json:"buy_ratio"`
	Pressure         string       `json:"pressure"` // buying, selling, neutral
	PressureStrength float64      `json:"pressure_strength"`
}

// Ratio is a float that serializes +Inf as the string "inf", since JSON has
// no infinity literal. Ratios against an empty side are +Inf by contract.
type Ratio float64

func (r Ratio) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(r), 1) {
		return []byte(`"inf"`), nil
	}
	return json.Marshal(float64(r))
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == `"inf"` {
		*r = Ratio(math.Inf(1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*r = Ratio(f)
	return nil
}

// BookDepth summarizes resting liquidity around the touch.
// Ratio fields are +Inf when the ask side carries no volume.
type BookDepth struct {
	Status       Availability `json:"status"`
	StatusReason string       `json:"status_reason,omitempty"`
	BidAskRatio  Ratio        `json:"bid_ask_ratio"`
	SpreadPct    float64      `json:"spread_pct"`
	BidDepth     float64      `json:"bid_depth"`
	AskDepth     float64      `json:"ask_depth"`
	DepthBalance Ratio        `json:"depth_balance"`
}

// FlowAssessment combines trade-flow and order-book liquidity views.
type FlowAssessment struct {
	Activity TradeActivity `json:"trade_activity"`
	Depth    BookDepth     `json:"order_book"`
}

// MarketSnapshot is the immutable per-(pair, timestamp) analysis result.
// It is created fresh on every analyze call and never mutated afterwards.
type MarketSnapshot struct {
	Pair               string          `json:"pair"`
	AsOf               time.Time       `json:"as_of"`
	CurrentPrice       float64         `json:"current_price"`
	Volume24h          float64         `json:"volume_24h"`
	Indicators         IndicatorSet    `json:"indicators"`
	Trend              TrendAssessment `json:"trend"`
	Flow               FlowAssessment  `json:"flow"`
	TradingRecommended bool            `json:"trading_recommended"`
	Reasoning          string          `json:"reasoning"`
}

// Float returns a pointer to v. Convenience for optional indicator fields.
func Float(v float64) *float64 { return &v }
