package repository

import (
	"context"

	"TradeTuner/internal/domain/models"
)

// TradeStream is a live feed of executed trades for the monitored pairs.
type TradeStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Trade, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher emits parameter-change decision events for downstream consumers.
type Publisher interface {
	PublishDecision(ctx context.Context, res *models.OptimizationResult) error
	Close() error
}

// AuditStore is the append-only record of produced snapshots and
// optimization decisions.
type AuditStore interface {
	Init(ctx context.Context) error
	RecordSnapshot(ctx context.Context, s *models.MarketSnapshot) error
	RecordOptimization(ctx context.Context, res *models.OptimizationResult) error
	Health(ctx context.Context) error
	Close() error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordSnapshot(pair string, recommended bool)
	RecordOptimization(pair, strategy string)
	RecordError(kind string)
	RecordLastPrice(pair string, price float64)
	RecordLatency(op string, seconds float64)
}
