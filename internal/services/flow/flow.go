package flow

import (
	"math"

	"TradeTuner/internal/domain/models"
)

const topLevels = 10

// AnalyzeTrades derives buy/sell pressure from recent executed trades.
// A trade with BuyerMaker=false counts as a buy (taker lifted the ask).
// A nil trade list degrades the assessment instead of failing the snapshot.
func AnalyzeTrades(trades []models.Trade) models.TradeActivity {
	if trades == nil {
		return models.TradeActivity{
			Status:       models.AvailabilityUnavailable,
			StatusReason: "recent trades unavailable",
			BuyRatio:     0.5,
		}
	}

	buys, sells := 0, 0
	for _, t := range trades {
		if t.BuyerMaker {
			sells++
		} else {
			buys++
		}
	}

	total := len(trades)
	ratio := 0.5
	if total > 0 {
		ratio = float64(buys) / float64(total)
	}

	pressure := "neutral"
	strength := 0.0
	switch {
	case ratio > 0.6:
		pressure = "buying"
		strength = (ratio - 0.5) * 2
	case ratio < 0.4:
		pressure = "selling"
		strength = (0.5 - ratio) * 2
	}

	return models.TradeActivity{
		Status:           models.AvailabilityOK,
		Buys:             buys,
		Sells:            sells,
		Total:            total,
		BuyRatio:         ratio,
		Pressure:         pressure,
		PressureStrength: strength,
	}
}

// AnalyzeBook derives depth-balance metrics from an order book snapshot.
// Top-of-book volume sums the best 10 levels per side and floors to 0 when
// fewer levels are present; depth-within-5% walks every level within 5% of
// the touch. Ratios against an empty ask side come back +Inf.
func AnalyzeBook(book *models.OrderBook) models.BookDepth {
	if book == nil {
		return models.BookDepth{
			Status:       models.AvailabilityUnavailable,
			StatusReason: "order book unavailable",
		}
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return models.BookDepth{
			Status:       models.AvailabilityDegraded,
			StatusReason: "order book side empty",
		}
	}

	bidVolume := topVolume(book.Bids)
	askVolume := topVolume(book.Asks)
	ratio := math.Inf(1)
	if askVolume > 0 {
		ratio = bidVolume / askVolume
	}

	bestBid := book.Bids[0].Price
	bestAsk := book.Asks[0].Price
	spread := 0.0
	if bestBid > 0 {
		spread = (bestAsk/bestBid - 1) * 100
	}

	bidDepth := 0.0
	for _, lvl := range book.Bids {
		if (bestBid-lvl.Price)/bestBid <= 0.05 {
			bidDepth += lvl.Size
		}
	}
	askDepth := 0.0
	for _, lvl := range book.Asks {
		if (lvl.Price-bestAsk)/bestAsk <= 0.05 {
			askDepth += lvl.Size
		}
	}

	balance := math.Inf(1)
	if askDepth > 0 {
		balance = bidDepth / askDepth
	}

	return models.BookDepth{
		Status:       models.AvailabilityOK,
		BidAskRatio:  models.Ratio(ratio),
		SpreadPct:    spread,
		BidDepth:     bidDepth,
		AskDepth:     askDepth,
		DepthBalance: models.Ratio(balance),
	}
}

// Analyze combines the trade-flow and order-book views.
func Analyze(trades []models.Trade, book *models.OrderBook) models.FlowAssessment {
	return models.FlowAssessment{
		Activity: AnalyzeTrades(trades),
		Depth:    AnalyzeBook(book),
	}
}

// topVolume sums the size of the best 10 levels. With fewer than 10 levels
// the sum floors to 0, a deliberate conservative reading of thin books.
func topVolume(levels []models.BookLevel) float64 {
	if len(levels) < topLevels {
		return 0
	}
	sum := 0.0
	for _, lvl := range levels[:topLevels] {
		sum += lvl.Size
	}
	return sum
}
