package models

import (
	"fmt"
	"time"
)

// Candle represents one OHLCV bucket of market history. Sequences are
// ordered ascending by timestamp and are never mutated after retrieval.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// ValidateCandles checks the series invariants: strictly increasing
// timestamps, positive prices, non-negative volume.
func ValidateCandles(cs []Candle) error {
	for i, c := range cs {
		if c.Open <= 0 || c.High <= 0 || c.Low <= 0 || c.Close <= 0 {
			return fmt.Errorf("candle %d: non-positive price", i)
		}
		if c.Volume < 0 {
			return fmt.Errorf("candle %d: negative volume", i)
		}
		if i > 0 && !c.Timestamp.After(cs[i-1].Timestamp) {
			return fmt.Errorf("candle %d: timestamp not increasing", i)
		}
	}
	return nil
}

// Closes extracts the close-price series.
func Closes(cs []Candle) []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Trade is one executed trade, tagged with the maker side flag the way
// exchanges report it: BuyerMaker=true means the aggressor sold.
type Trade struct {
	Symbol     string    `json:"symbol"`
	Price      float64   `json:"price"`
	Quantity   float64   `json:"qty"`
	Time       time.Time `json:"time"`
	BuyerMaker bool      `json:"is_buyer_maker"`
}

// BookLevel is one (price, size) level of an order book side.
type BookLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook is a snapshot of resting liquidity, both sides sorted best-first.
type OrderBook struct {
	Bids []BookLevel `json:"bids"`
	Asks []BookLevel `json:"asks"`
}

// Ticker carries the latest price and rolling 24h volume for a pair.
type Ticker struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"last_price"`
	Volume    float64 `json:"volume"`
}
