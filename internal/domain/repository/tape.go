package repository

import "TradeTuner/internal/domain/models"

// TradeTape is a bounded per-pair buffer of recently executed trades,
// usable as a flow-analysis input when a live stream is running.
type TradeTape interface {
	Append(t *models.Trade)
	// Recent returns up to limit trades for the pair, oldest first.
	// A pair with no recorded trades returns nil.
	Recent(pair string, limit int) []models.Trade
	Pairs() []string
}
