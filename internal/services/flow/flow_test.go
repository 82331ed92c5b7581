package flow

import (
	"math"
	"testing"

	"TradeTuner/internal/domain/models"
)

func trades(buys, sells int) []models.Trade {
	out := make([]models.Trade, 0, buys+sells)
	for i := 0; i < buys; i++ {
		out = append(out, models.Trade{BuyerMaker: false})
	}
	for i := 0; i < sells; i++ {
		out = append(out, models.Trade{BuyerMaker: true})
	}
	return out
}

func levels(start, step float64, sizes ...float64) []models.BookLevel {
	out := make([]models.BookLevel, len(sizes))
	for i, s := range sizes {
		out[i] = models.BookLevel{Price: start + float64(i)*step, Size: s}
	}
	return out
}

func tenOnes(start, step float64) []models.BookLevel {
	sizes := make([]float64, 10)
	for i := range sizes {
		sizes[i] = 1
	}
	return levels(start, step, sizes...)
}

func TestAnalyzeTradesNil(t *testing.T) {
	got := AnalyzeTrades(nil)
	if got.Status != models.AvailabilityUnavailable {
		t.Fatalf("expected unavailable, got %+v", got)
	}
	if got.BuyRatio != 0.5 {
		t.Fatalf("expected neutral ratio 0.5, got %v", got.BuyRatio)
	}
}

func TestAnalyzeTradesEmpty(t *testing.T) {
	got := AnalyzeTrades([]models.Trade{})
	if got.Status != models.AvailabilityOK {
		t.Fatalf("an empty but present list is not a missing input: %+v", got)
	}
	if got.BuyRatio != 0.5 || got.Pressure != "neutral" {
		t.Fatalf("expected neutral defaults, got %+v", got)
	}
}

func TestAnalyzeTradesBuyingPressure(t *testing.T) {
	got := AnalyzeTrades(trades(8, 2))
	if got.Buys != 8 || got.Sells != 2 {
		t.Fatalf("unexpected counts %+v", got)
	}
	if got.BuyRatio != 0.8 || got.Pressure != "buying" {
		t.Fatalf("expected buying at 0.8, got %+v", got)
	}
	if math.Abs(got.PressureStrength-0.6) > 1e-9 {
		t.Fatalf("expected strength 0.6, got %v", got.PressureStrength)
	}
}

func TestAnalyzeTradesSellingPressure(t *testing.T) {
	got := AnalyzeTrades(trades(1, 9))
	if got.Pressure != "selling" {
		t.Fatalf("expected selling, got %+v", got)
	}
	if math.Abs(got.PressureStrength-0.8) > 1e-9 {
		t.Fatalf("expected strength 0.8, got %v", got.PressureStrength)
	}
}

func TestAnalyzeTradesNeutralBand(t *testing.T) {
	got := AnalyzeTrades(trades(5, 5))
	if got.Pressure != "neutral" || got.PressureStrength != 0 {
		t.Fatalf("50/50 should be neutral, got %+v", got)
	}
	// The band is exclusive on both edges.
	got = AnalyzeTrades(trades(6, 4))
	if got.Pressure != "neutral" {
		t.Fatalf("exactly 0.6 should still be neutral, got %+v", got)
	}
}

func TestAnalyzeBookNil(t *testing.T) {
	got := AnalyzeBook(nil)
	if got.Status != models.AvailabilityUnavailable {
		t.Fatalf("expected unavailable, got %+v", got)
	}
}

func TestAnalyzeBookEmptySide(t *testing.T) {
	got := AnalyzeBook(&models.OrderBook{Bids: tenOnes(99, -1)})
	if got.Status != models.AvailabilityDegraded {
		t.Fatalf("expected degraded with an empty ask side, got %+v", got)
	}
}

func TestAnalyzeBookBalanced(t *testing.T) {
	book := &models.OrderBook{
		Bids: tenOnes(99, -0.1),
		Asks: tenOnes(100, 0.1),
	}
	got := AnalyzeBook(book)
	if got.Status != models.AvailabilityOK {
		t.Fatalf("expected ok, got %+v", got)
	}
	if float64(got.BidAskRatio) != 1 {
		t.Fatalf("expected ratio 1, got %v", got.BidAskRatio)
	}
	wantSpread := (100.0/99.0 - 1) * 100
	if math.Abs(got.SpreadPct-wantSpread) > 1e-9 {
		t.Fatalf("expected spread %v, got %v", wantSpread, got.SpreadPct)
	}
	if got.BidDepth != 10 || got.AskDepth != 10 {
		t.Fatalf("all levels sit within 5%% of the touch: %+v", got)
	}
	if float64(got.DepthBalance) != 1 {
		t.Fatalf("expected balance 1, got %v", got.DepthBalance)
	}
}

func TestAnalyzeBookThinSideZeroVolume(t *testing.T) {
	book := &models.OrderBook{
		Bids: levels(99, -0.1, 1, 1, 1),
		Asks: tenOnes(100, 0.1),
	}
	got := AnalyzeBook(book)
	if float64(got.BidAskRatio) != 0 {
		t.Fatalf("fewer than 10 bid levels should read as zero volume, got %v", got.BidAskRatio)
	}
}

func TestAnalyzeBookZeroAskVolumeInfRatio(t *testing.T) {
	zeros := make([]float64, 10)
	book := &models.OrderBook{
		Bids: tenOnes(99, -0.1),
		Asks: levels(100, 0.1, zeros...),
	}
	got := AnalyzeBook(book)
	if !math.IsInf(float64(got.BidAskRatio), 1) {
		t.Fatalf("expected +Inf ratio against zero ask volume, got %v", got.BidAskRatio)
	}
	if !math.IsInf(float64(got.DepthBalance), 1) {
		t.Fatalf("expected +Inf depth balance, got %v", got.DepthBalance)
	}
}

func TestAnalyzeBookDepthWindow(t *testing.T) {
	// One ask level 10% away from the touch stays out of the 5% window.
	asks := tenOnes(100, 0.1)
	asks = append(asks, models.BookLevel{Price: 110, Size: 50})
	book := &models.OrderBook{Bids: tenOnes(99, -0.1), Asks: asks}
	got := AnalyzeBook(book)
	if got.AskDepth != 10 {
		t.Fatalf("far level must not count toward depth, got %v", got.AskDepth)
	}
}

func TestAnalyzeCombines(t *testing.T) {
	got := Analyze(nil, nil)
	if got.Activity.Status != models.AvailabilityUnavailable {
		t.Fatalf("expected unavailable activity, got %+v", got.Activity)
	}
	if got.Depth.Status != models.AvailabilityUnavailable {
		t.Fatalf("expected unavailable depth, got %+v", got.Depth)
	}
}

func TestRatioJSON(t *testing.T) {
	b, err := models.Ratio(math.Inf(1)).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"inf"` {
		t.Fatalf("expected \"inf\", got %s", b)
	}
	var r models.Ratio
	if err := r.UnmarshalJSON([]byte(`"inf"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !math.IsInf(float64(r), 1) {
		t.Fatalf("expected +Inf, got %v", r)
	}
	if err := r.UnmarshalJSON([]byte(`1.5`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if float64(r) != 1.5 {
		t.Fatalf("expected 1.5, got %v", r)
	}
}
