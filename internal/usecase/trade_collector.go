package usecase

import (
	"context"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
)

// TradeSink receives trades drained from the stream.
type TradeSink interface {
	Process(ctx context.Context, t *models.Trade) error
}

// TradeCollector drains a live trade stream into the trade tape so the flow
// analyzer can work from fresher data than the REST endpoint provides.
type TradeCollector struct {
	stream  drepo.TradeStream
	sink    TradeSink
	metrics drepo.Metrics
}

// NewTradeCollector creates a new TradeCollector instance.
func NewTradeCollector(stream drepo.TradeStream, sink TradeSink, metrics drepo.Metrics) *TradeCollector {
	return &TradeCollector{stream: stream, sink: sink, metrics: metrics}
}

// IsConnected returns true if the trade stream is connected.
func (c *TradeCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *TradeCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	trCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, trCh, errCh)
	return nil
}

func (c *TradeCollector) consume(ctx context.Context, trCh <-chan *models.Trade, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case t := <-trCh:
			if t == nil {
				continue
			}
			if err := c.sink.Process(ctx, t); err != nil {
				c.metrics.RecordError("collector_sink")
				continue
			}
			c.metrics.RecordLastPrice(t.Symbol, t.Price)
		}
	}
}

func (c *TradeCollector) Stop() error { return c.stream.Close() }
