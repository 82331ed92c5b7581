package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"TradeTuner/internal/domain/models"
	drepo "TradeTuner/internal/domain/repository"
	xlogger "TradeTuner/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements a TradeStream backed by the exchange trade WebSocket.
type Stream struct {
	websocketURL   string
	pairs          []string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *xlogger.Logger

	conn      *websocket.Conn
	connected bool
}

// NewStream creates a live trade stream for the given pairs.
func NewStream(websocketURL string, pairs []string, reconnectDelay, pingInterval time.Duration, lgr *xlogger.Logger) drepo.TradeStream {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Stream{
		websocketURL:   websocketURL,
		pairs:          pairs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         lgr,
	}
}

// Connect establishes the WebSocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.websocketURL, nil)
	if err != nil {
		return fmt.Errorf("exchange ws connect: %w", err)
	}
	s.conn = conn
	s.connected = true
	s.logger.Info("exchange stream connected", xlogger.String("url", s.websocketURL))
	return nil
}

// Subscribe subscribes to the trade channel of each configured pair.
func (s *Stream) Subscribe(ctx context.Context) error {
	if s.conn == nil || !s.connected {
		return fmt.Errorf("exchange ws not connected")
	}
	channels := make([]string, 0, len(s.pairs))
	for _, p := range s.pairs {
		channels = append(channels, strings.ToLower(p)+"@trade")
	}
	msg := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": channels,
		"id":     1,
	}
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info("exchange stream subscribed", xlogger.Int("pairs", len(s.pairs)))
	return nil
}

type wsTrade struct {
	EventType  string `json:"e"`
	Symbol     string `json:"s"`
	Price      string `json:"p"`
	Quantity   string `json:"q"`
	TradeTime  int64  `json:"T"`
	BuyerMaker bool   `json:"m"`
}

// Read streams Trade events and errors until ctx is done or the socket fails.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Trade, <-chan error) {
	trades := make(chan *models.Trade, 1024)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if s.conn != nil {
					_ = s.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(trades)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if s.conn == nil {
					errs <- fmt.Errorf("exchange ws conn nil")
					return
				}
				_, b, err := s.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("exchange ws read: %w", err)
					return
				}
				var m wsTrade
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore control frames and subscription acks
					continue
				}
				if m.EventType != "trade" {
					continue
				}
				price, perr := strconv.ParseFloat(m.Price, 64)
				qty, qerr := strconv.ParseFloat(m.Quantity, 64)
				if perr != nil || qerr != nil {
					continue
				}
				trade := &models.Trade{
					Symbol:     m.Symbol,
					Price:      price,
					Quantity:   qty,
					Time:       time.UnixMilli(m.TradeTime).UTC(),
					BuyerMaker: m.BuyerMaker,
				}
				select {
				case trades <- trade:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return trades, errs
}

// Reconnect closes and reconnects.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	time.Sleep(s.reconnectDelay)
	if err := s.Connect(ctx); err != nil {
		return err
	}
	return s.Subscribe(ctx)
}

// Close closes the WS connection.
func (s *Stream) Close() error {
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool { return s.connected }
