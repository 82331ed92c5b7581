package optimize

import "TradeTuner/internal/domain/models"

// MinTradesForExternal is the history size at which the optimizer switches
// from the rule table to the external strategy.
const MinTradesForExternal = 10

// FlattenHistory converts raw trade outcomes into the flat records the
// external optimizer consumes. Duration is only computable for trades that
// carry both timestamps; open trades keep a nil duration.
func FlattenHistory(trades []models.TradeOutcome) []models.FlatTrade {
	out := make([]models.FlatTrade, 0, len(trades))
	for _, t := range trades {
		flat := models.FlatTrade{
			Status:      t.Status,
			EntryPrice:  t.EntryPrice,
			TargetPrice: t.TargetPrice,
			Size:        t.Size,
			ProfitLoss:  t.ProfitLoss,
		}
		if !t.OpenedAt.IsZero() && t.ClosedAt != nil {
			hours := t.ClosedAt.Sub(t.OpenedAt).Hours()
			flat.DurationHours = &hours
		}
		out = append(out, flat)
	}
	return out
}
