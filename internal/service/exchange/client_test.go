package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testServer(t *testing.T, path, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != path {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestFetchCandles(t *testing.T) {
	body := `[
		[1728518400000, "100.1", "101.0", "99.5", "100.8", "12.5", 1728521999999, "0", 0, "0", "0", "0"],
		[1728522000000, "100.8", "102.0", "100.2", "101.4", "9.1", 1728525599999, "0", 0, "0", "0", "0"]
	]`
	srv := testServer(t, "/klines", body)
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil, 0, 0)
	got, err := c.FetchCandles(context.Background(), "BTCUSDT", "1h", 2)
	if err != nil {
		t.Fatalf("fetch candles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(got))
	}
	want := time.UnixMilli(1728518400000).UTC()
	if !got[0].Timestamp.Equal(want) {
		t.Fatalf("expected timestamp %v, got %v", want, got[0].Timestamp)
	}
	if got[0].Open != 100.1 || got[0].Close != 100.8 || got[0].Volume != 12.5 {
		t.Fatalf("unexpected candle %+v", got[0])
	}
	if got[1].High != 102.0 || got[1].Low != 100.2 {
		t.Fatalf("unexpected candle %+v", got[1])
	}
}

func TestFetchCandlesShortRow(t *testing.T) {
	srv := testServer(t, "/klines", `[[1728518400000, "100.1"]]`)
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil, 0, 0)
	if _, err := c.FetchCandles(context.Background(), "BTCUSDT", "1h", 1); err == nil {
		t.Fatalf("expected error on a short kline row")
	}
}

func TestFetchRecentTrades(t *testing.T) {
	body := `[
		{"id": 1, "price": "100.5", "qty": "0.25", "time": 1728518400000, "isBuyerMaker": false},
		{"id": 2, "price": "100.6", "qty": "0.10", "time": 1728518401000, "isBuyerMaker": true}
	]`
	srv := testServer(t, "/trades", body)
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil, 0, 0)
	got, err := c.FetchRecentTrades(context.Background(), "BTCUSDT", 2)
	if err != nil {
		t.Fatalf("fetch trades: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(got))
	}
	if got[0].Symbol != "BTCUSDT" || got[0].Price != 100.5 || got[0].Quantity != 0.25 {
		t.Fatalf("unexpected trade %+v", got[0])
	}
	if got[0].BuyerMaker || !got[1].BuyerMaker {
		t.Fatalf("maker flags lost in decoding")
	}
}

func TestFetchOrderBook(t *testing.T) {
	body := `{"bids": [["99.9", "1.5"], ["99.8", "2.0"]], "asks": [["100.1", "0.5"]]}`
	srv := testServer(t, "/depth", body)
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil, 0, 0)
	got, err := c.FetchOrderBook(context.Background(), "BTCUSDT", 50)
	if err != nil {
		t.Fatalf("fetch book: %v", err)
	}
	if len(got.Bids) != 2 || len(got.Asks) != 1 {
		t.Fatalf("unexpected book %+v", got)
	}
	if got.Bids[0].Price != 99.9 || got.Bids[0].Size != 1.5 {
		t.Fatalf("unexpected best bid %+v", got.Bids[0])
	}
}

func TestFetchTicker(t *testing.T) {
	body := `{"symbol": "BTCUSDT", "lastPrice": "100.25", "volume": "3500.75"}`
	srv := testServer(t, "/ticker/24hr", body)
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil, 0, 0)
	got, err := c.FetchTicker(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("fetch ticker: %v", err)
	}
	if got.Symbol != "BTCUSDT" || got.LastPrice != 100.25 || got.Volume != 3500.75 {
		t.Fatalf("unexpected ticker %+v", got)
	}
}

func TestFetchTickerBadNumber(t *testing.T) {
	srv := testServer(t, "/ticker/24hr", `{"symbol": "BTCUSDT", "lastPrice": "abc", "volume": "1"}`)
	defer srv.Close()

	c := New(srv.URL, "", time.Second, nil, 0, 0)
	if _, err := c.FetchTicker(context.Background(), "BTCUSDT"); err == nil {
		t.Fatalf("expected error on an unparsable price")
	}
}

func TestQuotedFloatAcceptsBareNumbers(t *testing.T) {
	v, err := quotedFloat([]byte(`"1.5"`))
	if err != nil || v != 1.5 {
		t.Fatalf("quoted: %v %v", v, err)
	}
	v, err = quotedFloat([]byte(`2.5`))
	if err != nil || v != 2.5 {
		t.Fatalf("bare: %v %v", v, err)
	}
	if _, err = quotedFloat([]byte(`true`)); err == nil {
		t.Fatalf("expected error on a non-number")
	}
}
