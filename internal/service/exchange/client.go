package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"TradeTuner/internal/domain/models"
	domsvc "TradeTuner/internal/domain/service"
	"TradeTuner/internal/service/ratelimit"
	xhttp "TradeTuner/pkg/http"
)

// Client fetches market data over the exchange spot REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
	limiter *ratelimit.Limiter

	// token bucket settings for outbound request pacing
	rateCapacity float64
	ratePerSec   float64
}

// New builds a REST market data client.
func New(baseURL, apiKey string, timeout time.Duration, limiter *ratelimit.Limiter, capacity, refillPerSec float64) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      baseURL,
		apiKey:       apiKey,
		http:         xhttp.NewClient(xhttp.WithTimeout(timeout)),
		limiter:      limiter,
		rateCapacity: capacity,
		ratePerSec:   refillPerSec,
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx, "exchange_rest", c.rateCapacity, c.ratePerSec)
}

func (c *Client) get(ctx context.Context, path string, params map[string][]string, dest interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	opts := &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         c.baseURL + path,
		QueryParams: params,
	}
	if c.apiKey != "" {
		opts.Headers = map[string]string{"X-MBX-APIKEY": c.apiKey}
	}
	if err := c.http.SendAndParse(ctx, opts, dest); err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return nil
}

// FetchCandles returns up to limit klines for pair, ascending by open time.
func (c *Client) FetchCandles(ctx context.Context, pair, interval string, limit int) ([]models.Candle, error) {
	var raw [][]json.RawMessage
	params := map[string][]string{
		"symbol":   {pair},
		"interval": {interval},
		"limit":    {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, "/klines", params, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Candle, 0, len(raw))
	for i, k := range raw {
		if len(k) < 6 {
			return nil, fmt.Errorf("kline %d: short row", i)
		}
		var ms int64
		if err := json.Unmarshal(k[0], &ms); err != nil {
			return nil, fmt.Errorf("kline %d open time: %w", i, err)
		}
		var cdl models.Candle
		cdl.Timestamp = time.UnixMilli(ms).UTC()
		for j, dst := range []*float64{&cdl.Open, &cdl.High, &cdl.Low, &cdl.Close, &cdl.Volume} {
			v, err := quotedFloat(k[j+1])
			if err != nil {
				return nil, fmt.Errorf("kline %d field %d: %w", i, j+1, err)
			}
			*dst = v
		}
		out = append(out, cdl)
	}
	return out, nil
}

type restTrade struct {
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

// FetchRecentTrades returns the most recent executed trades, oldest first.
func (c *Client) FetchRecentTrades(ctx context.Context, pair string, limit int) ([]models.Trade, error) {
	var raw []restTrade
	params := map[string][]string{
		"symbol": {pair},
		"limit":  {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, "/trades", params, &raw); err != nil {
		return nil, err
	}
	out := make([]models.Trade, 0, len(raw))
	for i, t := range raw {
		price, err := strconv.ParseFloat(t.Price, 64)
		if err != nil {
			return nil, fmt.Errorf("trade %d price: %w", i, err)
		}
		qty, err := strconv.ParseFloat(t.Qty, 64)
		if err != nil {
			return nil, fmt.Errorf("trade %d qty: %w", i, err)
		}
		out = append(out, models.Trade{
			Symbol:     pair,
			Price:      price,
			Quantity:   qty,
			Time:       time.UnixMilli(t.Time).UTC(),
			BuyerMaker: t.IsBuyerMaker,
		})
	}
	return out, nil
}

type restDepth struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// FetchOrderBook returns an order book snapshot with both sides best-first.
func (c *Client) FetchOrderBook(ctx context.Context, pair string, limit int) (*models.OrderBook, error) {
	var raw restDepth
	params := map[string][]string{
		"symbol": {pair},
		"limit":  {strconv.Itoa(limit)},
	}
	if err := c.get(ctx, "/depth", params, &raw); err != nil {
		return nil, err
	}
	book := &models.OrderBook{}
	var err error
	if book.Bids, err = parseLevels(raw.Bids); err != nil {
		return nil, fmt.Errorf("bids: %w", err)
	}
	if book.Asks, err = parseLevels(raw.Asks); err != nil {
		return nil, fmt.Errorf("asks: %w", err)
	}
	return book, nil
}

type restTicker struct {
	Symbol    string `json:"symbol"`
	LastPrice string `json:"lastPrice"`
	Volume    string `json:"volume"`
}

// FetchTicker returns the rolling 24h ticker for pair.
func (c *Client) FetchTicker(ctx context.Context, pair string) (*models.Ticker, error) {
	var raw restTicker
	params := map[string][]string{"symbol": {pair}}
	if err := c.get(ctx, "/ticker/24hr", params, &raw); err != nil {
		return nil, err
	}
	price, err := strconv.ParseFloat(raw.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("lastPrice: %w", err)
	}
	vol, err := strconv.ParseFloat(raw.Volume, 64)
	if err != nil {
		return nil, fmt.Errorf("volume: %w", err)
	}
	return &models.Ticker{Symbol: raw.Symbol, LastPrice: price, Volume: vol}, nil
}

func parseLevels(rows [][2]string) ([]models.BookLevel, error) {
	out := make([]models.BookLevel, 0, len(rows))
	for i, r := range rows {
		price, err := strconv.ParseFloat(r[0], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d price: %w", i, err)
		}
		size, err := strconv.ParseFloat(r[1], 64)
		if err != nil {
			return nil, fmt.Errorf("level %d size: %w", i, err)
		}
		out = append(out, models.BookLevel{Price: price, Size: size})
	}
	return out, nil
}

// quotedFloat parses a JSON value that exchanges encode as a quoted number.
func quotedFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseFloat(s, 64)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, err
	}
	return f, nil
}

var _ domsvc.MarketDataProvider = (*Client)(nil)
