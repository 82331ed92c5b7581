package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"TradeTuner/internal/domain/models"
	domrepo "TradeTuner/internal/domain/repository"
	pkgch "TradeTuner/pkg/clickhouse"
	applogger "TradeTuner/pkg/logger"
)

// CHAuditStore implements AuditStore backed by ClickHouse. Each produced
// snapshot and optimization decision is appended with its full JSON payload
// so past engine output can be replayed.
type CHAuditStore struct {
	db *sql.DB
	ch *pkgch.Client
	l  *applogger.Logger
}

func NewCHAuditStore(ch *pkgch.Client) *CHAuditStore {
	return &CHAuditStore{db: ch.DB(), ch: ch}
}

// SetLogger injects a structured logger.
func (s *CHAuditStore) SetLogger(l *applogger.Logger) { s.l = l }

var auditSchema = []string{
	`CREATE TABLE IF NOT EXISTS tradetuner.market_snapshots (
        ts DateTime64(3),
        pair String,
        price Float64,
        trend String,
        strength Float64,
        recommended UInt8,
        payload String
    ) ENGINE = MergeTree ORDER BY (pair, ts)`,
	`CREATE TABLE IF NOT EXISTS tradetuner.optimizations (
        ts DateTime64(3),
        pair String,
        strategy String,
        profit_margin Float64,
        trade_size Float64,
        max_open_time Float64,
        stop_loss Nullable(Float64),
        reasoning String,
        payload String
    ) ENGINE = MergeTree ORDER BY (pair, ts)`,
}

func (s *CHAuditStore) Init(ctx context.Context) error {
	if err := s.ch.InitSchema(ctx, auditSchema); err != nil {
		return fmt.Errorf("init audit schema: %w", err)
	}
	return nil
}

func (s *CHAuditStore) RecordSnapshot(ctx context.Context, snap *models.MarketSnapshot) error {
	start := time.Now()
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	recommended := uint8(0)
	if snap.TradingRecommended {
		recommended = 1
	}
	const q = `INSERT INTO tradetuner.market_snapshots
        (ts, pair, price, trend, strength, recommended, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		snap.AsOf,
		snap.Pair,
		snap.CurrentPrice,
		string(snap.Trend.Direction),
		snap.Trend.Strength,
		recommended,
		string(payload),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse record_snapshot error",
				applogger.String("pair", snap.Pair),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("record snapshot: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse record_snapshot ok",
			applogger.String("pair", snap.Pair),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHAuditStore) RecordOptimization(ctx context.Context, res *models.OptimizationResult) error {
	start := time.Now()
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal optimization: %w", err)
	}
	var stopLoss interface{}
	if res.NewParams.StopLoss != nil {
		stopLoss = *res.NewParams.StopLoss
	}
	const q = `INSERT INTO tradetuner.optimizations
        (ts, pair, strategy, profit_margin, trade_size, max_open_time, stop_loss, reasoning, payload)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, q,
		time.Now().UTC(),
		res.Pair,
		res.StrategyUsed,
		res.NewParams.ProfitMargin,
		res.NewParams.TradeSize,
		res.NewParams.MaxOpenTime,
		stopLoss,
		res.Reasoning,
		string(payload),
	)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse record_optimization error",
				applogger.String("pair", res.Pair),
				applogger.String("strategy", res.StrategyUsed),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("record optimization: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse record_optimization ok",
			applogger.String("pair", res.Pair),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

func (s *CHAuditStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *CHAuditStore) Close() error {
	return nil // Managed by pkg
}

var _ domrepo.AuditStore = (*CHAuditStore)(nil)
