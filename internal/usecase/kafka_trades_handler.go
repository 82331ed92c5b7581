package usecase

import (
	"context"
	"encoding/json"
	"time"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
	pkgkafka "TradeTuner/pkg/kafka"
)

// KafkaTradesHandler consumes executed-trade events and feeds the tape.
// It is an alternative to the websocket stream for deployments where trades
// already flow through Kafka.
type KafkaTradesHandler struct {
	topic   string
	tape    drepo.TradeTape
	metrics drepo.Metrics
}

func NewKafkaTradesHandler(topic string, tape drepo.TradeTape, metrics drepo.Metrics) *KafkaTradesHandler {
	return &KafkaTradesHandler{topic: topic, tape: tape, metrics: metrics}
}

func (h *KafkaTradesHandler) Topic() string { return h.topic }

// incoming message schema: {symbol, t, p, q, m}
func (h *KafkaTradesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Symbol     string  `json:"symbol"`
		T          int64   `json:"t"`
		Price      float64 `json:"p"`
		Quantity   float64 `json:"q"`
		BuyerMaker bool    `json:"m"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	h.metrics.RecordLatency("trade_event_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	h.tape.Append(&models.Trade{
		Symbol:     m.Symbol,
		Price:      m.Price,
		Quantity:   m.Quantity,
		Time:       time.Unix(m.T, 0),
		BuyerMaker: m.BuyerMaker,
	})
	h.metrics.RecordLastPrice(m.Symbol, m.Price)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaTradesHandler)(nil)
