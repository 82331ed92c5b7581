package repository

import (
	"sync"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
)

// MemoryTradeTape is a bounded in-memory ring of recent trades per pair.
// Append is safe for concurrent use with Recent.
type MemoryTradeTape struct {
	mu     sync.RWMutex
	cap    int
	byPair map[string][]models.Trade
	heads  map[string]int
	counts map[string]int
}

// NewMemoryTradeTape creates a tape keeping up to capacity trades per pair.
func NewMemoryTradeTape(capacity int) *MemoryTradeTape {
	if capacity <= 0 {
		capacity = 1000
	}
	return &MemoryTradeTape{
		cap:    capacity,
		byPair: make(map[string][]models.Trade),
		heads:  make(map[string]int),
		counts: make(map[string]int),
	}
}

func (m *MemoryTradeTape) Append(t *models.Trade) {
	if t == nil || t.Symbol == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	buf, ok := m.byPair[t.Symbol]
	if !ok {
		buf = make([]models.Trade, m.cap)
		m.byPair[t.Symbol] = buf
	}
	head := m.heads[t.Symbol]
	buf[head] = *t
	m.heads[t.Symbol] = (head + 1) % m.cap
	if m.counts[t.Symbol] < m.cap {
		m.counts[t.Symbol]++
	}
}

// Recent returns up to limit trades for the pair, oldest first, or nil when
// the pair has no recorded trades.
func (m *MemoryTradeTape) Recent(pair string, limit int) []models.Trade {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := m.counts[pair]
	if count == 0 {
		return nil
	}
	if limit <= 0 || limit > count {
		limit = count
	}
	buf := m.byPair[pair]
	head := m.heads[pair]

	out := make([]models.Trade, 0, limit)
	start := head - limit
	if start < 0 {
		start += m.cap
	}
	for i := 0; i < limit; i++ {
		out = append(out, buf[(start+i)%m.cap])
	}
	return out
}

func (m *MemoryTradeTape) Pairs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.byPair))
	for p := range m.byPair {
		out = append(out, p)
	}
	return out
}

var _ drepo.TradeTape = (*MemoryTradeTape)(nil)
