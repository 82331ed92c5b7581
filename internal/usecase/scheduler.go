package usecase

import (
	"context"
	"fmt"
	"time"

	"TradeTuner/pkg/queue"

	xlogger "TradeTuner/pkg/logger"
)

const analysisJobType = "analysis.pair"

// AnalysisJobPayload is the queued request for one pair analysis pass.
type AnalysisJobPayload struct {
	Pair     string `json:"pair"`
	Lookback int    `json:"lookback"`
}

// AnalysisJob consumes queued analysis requests and runs the analyzer.
type AnalysisJob struct {
	analyzer *MarketAnalyzer
	logger   *xlogger.Logger
}

func NewAnalysisJob(analyzer *MarketAnalyzer, lgr *xlogger.Logger) *AnalysisJob {
	return &AnalysisJob{analyzer: analyzer, logger: lgr}
}

func (j *AnalysisJob) Name() string { return "market_analysis" }
func (j *AnalysisJob) Type() string { return analysisJobType }

func (j *AnalysisJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[AnalysisJobPayload](payload)
	if err != nil {
		return fmt.Errorf("analysis payload: %w", err)
	}
	snap, err := j.analyzer.Analyze(ctx, p.Pair, p.Lookback)
	if err != nil {
		return fmt.Errorf("scheduled analysis %s: %w", p.Pair, err)
	}
	j.logger.Info("scheduled analysis complete",
		xlogger.String("pair", p.Pair),
		xlogger.String("trend", string(snap.Trend.Direction)),
		xlogger.Bool("recommended", snap.TradingRecommended),
	)
	return nil
}

var _ queue.Job = (*AnalysisJob)(nil)

// Scheduler enqueues periodic analysis jobs for every monitored pair.
type Scheduler struct {
	q        queue.QueueService
	pairs    []string
	interval time.Duration
	lookback int
	logger   *xlogger.Logger
}

func NewScheduler(q queue.QueueService, pairs []string, interval time.Duration, lookback int, lgr *xlogger.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if lookback <= 0 {
		lookback = DefaultLookback
	}
	return &Scheduler{q: q, pairs: pairs, interval: interval, lookback: lookback, logger: lgr}
}

// Start blocks, enqueueing one analysis job per pair each tick until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.enqueueAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueueAll(ctx)
		}
	}
}

func (s *Scheduler) enqueueAll(ctx context.Context) {
	for _, pair := range s.pairs {
		payload := AnalysisJobPayload{Pair: pair, Lookback: s.lookback}
		if err := s.q.PublishMessage(ctx, analysisJobType, payload); err != nil {
			s.logger.Error("enqueue analysis failed",
				xlogger.String("pair", pair),
				xlogger.Error(err),
			)
			continue
		}
		s.logger.Debug("analysis job enqueued", xlogger.String("pair", pair))
	}
}
