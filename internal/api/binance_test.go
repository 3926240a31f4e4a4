package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"futures-trading-binance/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	fc := futures.NewClient("test-key", "test-secret")
	fc.BaseURL = srv.URL
	return &Client{
		futures: fc,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

const exchangeInfoBody = `{"symbols":[
	{"symbol":"BTCUSDT","filters":[
		{"filterType":"PRICE_FILTER","tickSize":"0.10"},
		{"filterType":"LOT_SIZE","minQty":"0.001","maxQty":"1000","stepSize":"0.001"}
	]},
	{"symbol":"ETHUSDT","filters":[]}
]}`

func TestLotSize(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "exchangeInfo") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(exchangeInfoBody))
	})

	lot, err := c.LotSize(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("LotSize() error = %v", err)
	}
	if !lot.Step.Equal(decimal.RequireFromString("0.001")) {
		t.Fatalf("step = %s, want 0.001", lot.Step)
	}
	if !lot.MinQty.Equal(decimal.RequireFromString("0.001")) {
		t.Fatalf("min qty = %s, want 0.001", lot.MinQty)
	}

	// A symbol without a LOT_SIZE filter yields a zero step.
	lot, err = c.LotSize(context.Background(), "ETHUSDT")
	if err != nil {
		t.Fatalf("LotSize(no filter) error = %v", err)
	}
	if !lot.Step.IsZero() {
		t.Fatalf("step = %s, want 0", lot.Step)
	}

	_, err = c.LotSize(context.Background(), "DOGEUSDT")
	if !core.IsRemote(err) {
		t.Fatalf("unknown symbol error = %v, want remote error", err)
	}
}

func TestCreateOrderStopLimitParams(t *testing.T) {
	var form map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "order") || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() error = %v", err)
		}
		form = map[string]string{}
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		_, _ = w.Write([]byte(`{
			"symbol":"BTCUSDT","orderId":5001,"status":"NEW","side":"SELL","type":"STOP",
			"price":"104500","stopPrice":"105000","origQty":"0.5","timeInForce":"GTC",
			"updateTime":1700000000000
		}`))
	})

	req := core.OrderRequest{
		Symbol:      "BTCUSDT",
		Side:        core.Sell,
		Type:        core.StopLimit,
		Quantity:    "0.5",
		Price:       decimal.RequireFromString("104500"),
		StopPrice:   decimal.RequireFromString("105000"),
		TimeInForce: core.GTC,
	}
	order, err := c.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if form["type"] != "STOP" {
		t.Fatalf("type param = %q, want STOP", form["type"])
	}
	if form["price"] != "104500" || form["stopPrice"] != "105000" {
		t.Fatalf("price/stopPrice params = %q/%q", form["price"], form["stopPrice"])
	}
	if form["quantity"] != "0.5" {
		t.Fatalf("quantity param = %q, want 0.5", form["quantity"])
	}
	if form["timeInForce"] != "GTC" {
		t.Fatalf("timeInForce param = %q, want GTC", form["timeInForce"])
	}
	if form["signature"] == "" {
		t.Fatalf("request is not signed")
	}

	if order.ID != 5001 || order.Type != "STOP" {
		t.Fatalf("order = %+v", order)
	}
	if !order.StopPrice.Equal(decimal.RequireFromString("105000")) {
		t.Fatalf("order stop price = %s, want 105000", order.StopPrice)
	}
}

func TestCreateOrderMarketOmitsPriceFields(t *testing.T) {
	var form map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		form = map[string]string{}
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","orderId":5002,"status":"FILLED","side":"BUY","type":"MARKET","origQty":"1.234","updateTime":1700000000000}`))
	})

	req := core.OrderRequest{Symbol: "BTCUSDT", Side: core.Buy, Type: core.Market, Quantity: "1.234"}
	if _, err := c.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if _, ok := form["price"]; ok {
		t.Fatalf("market order sent a price param: %q", form["price"])
	}
	if _, ok := form["stopPrice"]; ok {
		t.Fatalf("market order sent a stopPrice param: %q", form["stopPrice"])
	}
	if _, ok := form["timeInForce"]; ok {
		t.Fatalf("market order sent a timeInForce param: %q", form["timeInForce"])
	}
}

func TestCreateOrderAPIErrorWrapped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":-2019,"msg":"Margin is insufficient."}`))
	})

	req := core.OrderRequest{Symbol: "BTCUSDT", Side: core.Buy, Type: core.Market, Quantity: "100"}
	_, err := c.CreateOrder(context.Background(), req)
	if err == nil {
		t.Fatalf("CreateOrder() expected error")
	}
	var remote *core.RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("error type = %T, want *core.RemoteError", err)
	}
	if remote.Op != "create order" || remote.Symbol != "BTCUSDT" {
		t.Fatalf("remote error context = %q/%q", remote.Op, remote.Symbol)
	}
	apiErr, ok := AsAPIError(err)
	if !ok {
		t.Fatalf("AsAPIError() = false, want binance error")
	}
	if apiErr.Code != -2019 {
		t.Fatalf("api error code = %d, want -2019", apiErr.Code)
	}
}

func TestOpenOrdersSymbolFilter(t *testing.T) {
	var seenSymbols []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "openOrders") {
			http.NotFound(w, r)
			return
		}
		seenSymbols = append(seenSymbols, r.URL.Query().Get("symbol"))
		_, _ = w.Write([]byte(`[
			{"symbol":"BTCUSDT","orderId":1,"price":"104000","origQty":"0.5","side":"BUY","type":"LIMIT","status":"NEW","time":1700000000000}
		]`))
	})

	orders, err := c.OpenOrders(context.Background(), "")
	if err != nil {
		t.Fatalf("OpenOrders() error = %v", err)
	}
	if len(orders) != 1 || orders[0].ID != 1 {
		t.Fatalf("orders = %+v", orders)
	}

	if _, err := c.OpenOrders(context.Background(), "BTCUSDT"); err != nil {
		t.Fatalf("OpenOrders(symbol) error = %v", err)
	}
	if len(seenSymbols) != 2 || seenSymbols[0] != "" || seenSymbols[1] != "BTCUSDT" {
		t.Fatalf("symbol params = %v, want [\"\" BTCUSDT]", seenSymbols)
	}
}

func TestAccountSnapshotKeepsPositiveBalances(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "account") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{
			"totalWalletBalance":"1000.50",
			"availableBalance":"900.25",
			"assets":[
				{"asset":"USDT","walletBalance":"1000.50"},
				{"asset":"BTC","walletBalance":"0.00000000"},
				{"asset":"BNB","walletBalance":"2.5"}
			]
		}`))
	})

	snap, err := c.AccountSnapshot(context.Background())
	if err != nil {
		t.Fatalf("AccountSnapshot() error = %v", err)
	}
	if !snap.TotalBalance.Equal(decimal.RequireFromString("1000.50")) {
		t.Fatalf("total = %s, want 1000.50", snap.TotalBalance)
	}
	if !snap.AvailableBalance.Equal(decimal.RequireFromString("900.25")) {
		t.Fatalf("available = %s, want 900.25", snap.AvailableBalance)
	}
	if len(snap.Assets) != 2 {
		t.Fatalf("assets = %+v, want USDT and BNB only", snap.Assets)
	}
	for _, a := range snap.Assets {
		if a.Asset == "BTC" {
			t.Fatalf("zero balance asset retained: %+v", a)
		}
	}
}

func TestSymbolPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "ticker/price") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"symbol":"BTCUSDT","price":"104000.50"}`))
	})

	price, err := c.SymbolPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("SymbolPrice() error = %v", err)
	}
	if !price.Equal(decimal.RequireFromString("104000.50")) {
		t.Fatalf("price = %s, want 104000.50", price)
	}
}

func TestServerTime(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "time") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"serverTime":1700000000000}`))
	})

	ts, err := c.ServerTime(context.Background())
	if err != nil {
		t.Fatalf("ServerTime() error = %v", err)
	}
	if ts.UnixMilli() != 1700000000000 {
		t.Fatalf("server time = %d, want 1700000000000", ts.UnixMilli())
	}
}
