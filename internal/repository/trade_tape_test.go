package repository

import (
	"sync"
	"testing"
	"time"

	"TradeTuner/internal/domain/models"
)

func tapeTrade(pair string, i int) *models.Trade {
	return &models.Trade{
		Symbol:   pair,
		Price:    100 + float64(i),
		Quantity: 1,
		Time:     time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Second),
	}
}

func TestTapeRecentEmptyPair(t *testing.T) {
	tape := NewMemoryTradeTape(10)
	if got := tape.Recent("BTCUSDT", 5); got != nil {
		t.Fatalf("expected nil for an unseen pair, got %v", got)
	}
}

func TestTapeRecentOldestFirst(t *testing.T) {
	tape := NewMemoryTradeTape(10)
	for i := 0; i < 5; i++ {
		tape.Append(tapeTrade("BTCUSDT", i))
	}
	got := tape.Recent("BTCUSDT", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 trades, got %d", len(got))
	}
	if got[0].Price != 102 || got[2].Price != 104 {
		t.Fatalf("expected the last 3 trades oldest first, got %v..%v", got[0].Price, got[2].Price)
	}
}

func TestTapeWrapAround(t *testing.T) {
	tape := NewMemoryTradeTape(4)
	for i := 0; i < 10; i++ {
		tape.Append(tapeTrade("BTCUSDT", i))
	}
	got := tape.Recent("BTCUSDT", 10)
	if len(got) != 4 {
		t.Fatalf("capacity bounds the result, got %d", len(got))
	}
	for i, tr := range got {
		if tr.Price != 100+float64(6+i) {
			t.Fatalf("trade %d: expected price %v, got %v", i, 100+float64(6+i), tr.Price)
		}
	}
}

func TestTapeLimitZeroReturnsAll(t *testing.T) {
	tape := NewMemoryTradeTape(10)
	for i := 0; i < 5; i++ {
		tape.Append(tapeTrade("BTCUSDT", i))
	}
	if got := tape.Recent("BTCUSDT", 0); len(got) != 5 {
		t.Fatalf("expected all 5 trades, got %d", len(got))
	}
}

func TestTapePairsIsolated(t *testing.T) {
	tape := NewMemoryTradeTape(10)
	tape.Append(tapeTrade("BTCUSDT", 1))
	tape.Append(tapeTrade("ETHUSDT", 2))
	if got := tape.Recent("ETHUSDT", 10); len(got) != 1 || got[0].Price != 102 {
		t.Fatalf("pairs must not share buffers: %v", got)
	}
	if len(tape.Pairs()) != 2 {
		t.Fatalf("expected 2 pairs, got %v", tape.Pairs())
	}
}

func TestTapeIgnoresInvalidTrades(t *testing.T) {
	tape := NewMemoryTradeTape(10)
	tape.Append(nil)
	tape.Append(&models.Trade{Price: 100})
	if got := tape.Pairs(); len(got) != 0 {
		t.Fatalf("invalid trades must be dropped, got %v", got)
	}
}

func TestTapeConcurrentAppendRecent(t *testing.T) {
	tape := NewMemoryTradeTape(100)
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				tape.Append(tapeTrade("BTCUSDT", w*200+i))
				tape.Recent("BTCUSDT", 10)
			}
		}(w)
	}
	wg.Wait()
	if got := tape.Recent("BTCUSDT", 100); len(got) != 100 {
		t.Fatalf("expected a full buffer, got %d", len(got))
	}
}
