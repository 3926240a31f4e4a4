package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/adshao/go-binance/v2/common"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"futures-trading-binance/internal/config"
	"futures-trading-binance/internal/core"
	"futures-trading-binance/internal/model"
)

const (
	MainnetBaseURL = "https://fapi.binance.com"
	TestnetBaseURL = "https://testnet.binancefuture.com"
)

// Client adapts the go-binance futures client to the capability set the bot
// consumes. Every failure is wrapped as a core.RemoteError so callers can
// tell a refused request apart from a request the exchange may have seen.
type Client struct {
	futures *futures.Client
	log     *slog.Logger
}

func NewClient(cfg *config.Config, log *slog.Logger) *Client {
	fc := futures.NewClient(cfg.APIKey, cfg.SecretKey)
	fc.BaseURL = TestnetBaseURL
	if cfg.Mainnet {
		fc.BaseURL = MainnetBaseURL
	}
	fc.HTTPClient = &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second}
	return &Client{futures: fc, log: log}
}

// SyncTime aligns request timestamps with the exchange clock so signed calls
// are not rejected for clock drift.
func (c *Client) SyncTime(ctx context.Context) error {
	offset, err := c.futures.NewSetServerTimeService().Do(ctx)
	if err != nil {
		return &core.RemoteError{Op: "sync time", Err: err}
	}
	c.log.Debug("time synchronized with binance", "offset_ms", offset)
	return nil
}

func (c *Client) ServerTime(ctx context.Context) (time.Time, error) {
	ms, err := c.futures.NewServerTimeService().Do(ctx)
	if err != nil {
		return time.Time{}, &core.RemoteError{Op: "server time", Err: err}
	}
	return time.UnixMilli(ms), nil
}

func (c *Client) AccountSnapshot(ctx context.Context) (model.AccountSnapshot, error) {
	acct, err := c.futures.NewGetAccountService().Do(ctx)
	if err != nil {
		return model.AccountSnapshot{}, &core.RemoteError{Op: "account snapshot", Err: err}
	}
	snap := model.AccountSnapshot{
		TotalBalance:     parseDecimal(acct.TotalWalletBalance),
		AvailableBalance: parseDecimal(acct.AvailableBalance),
	}
	for _, asset := range acct.Assets {
		balance := parseDecimal(asset.WalletBalance)
		if balance.Cmp(decimal.Zero) > 0 {
			snap.Assets = append(snap.Assets, model.AssetBalance{Asset: asset.Asset, Balance: balance})
		}
	}
	return snap, nil
}

// LotSize fetches the LOT_SIZE filter for symbol from the exchange metadata.
// The metadata is requested fresh on every call.
func (c *Client) LotSize(ctx context.Context, symbol string) (model.LotSize, error) {
	info, err := c.futures.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return model.LotSize{}, &core.RemoteError{Op: "exchange info", Symbol: symbol, Err: err}
	}
	for _, s := range info.Symbols {
		if s.Symbol != symbol {
			continue
		}
		if f := s.LotSizeFilter(); f != nil {
			return model.LotSize{
				MinQty: parseDecimal(f.MinQuantity),
				Step:   parseDecimal(f.StepSize),
			}, nil
		}
		return model.LotSize{}, nil
	}
	return model.LotSize{}, &core.RemoteError{Op: "exchange info", Symbol: symbol, Err: errors.New("symbol not found")}
}

func (c *Client) SymbolPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	prices, err := c.futures.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return decimal.Zero, &core.RemoteError{Op: "ticker price", Symbol: symbol, Err: err}
	}
	if len(prices) == 0 {
		return decimal.Zero, &core.RemoteError{Op: "ticker price", Symbol: symbol, Err: errors.New("no price returned")}
	}
	price, err := decimal.NewFromString(prices[0].Price)
	if err != nil {
		return decimal.Zero, &core.RemoteError{Op: "ticker price", Symbol: symbol, Err: err}
	}
	return price, nil
}

func (c *Client) CreateOrder(ctx context.Context, req core.OrderRequest) (model.Order, error) {
	svc := c.futures.NewCreateOrderService().
		Symbol(req.Symbol).
		Side(futures.SideType(req.Side)).
		Type(futures.OrderType(req.Type)).
		Quantity(req.Quantity)
	if req.Price.Cmp(decimal.Zero) > 0 {
		svc = svc.Price(req.Price.String())
	}
	if req.StopPrice.Cmp(decimal.Zero) > 0 {
		svc = svc.StopPrice(req.StopPrice.String())
	}
	if req.TimeInForce != "" {
		svc = svc.TimeInForce(futures.TimeInForceType(req.TimeInForce))
	}
	resp, err := svc.Do(ctx)
	if err != nil {
		return model.Order{}, &core.RemoteError{Op: "create order", Symbol: req.Symbol, Err: err}
	}
	return model.Order{
		ID:        resp.OrderID,
		Symbol:    resp.Symbol,
		Side:      string(resp.Side),
		Type:      string(resp.Type),
		Status:    string(resp.Status),
		Price:     parseDecimal(resp.Price),
		StopPrice: parseDecimal(resp.StopPrice),
		OrigQty:   parseDecimal(resp.OrigQuantity),
		Time:      time.UnixMilli(resp.UpdateTime),
	}, nil
}

func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	if _, err := c.futures.NewCancelOrderService().Symbol(symbol).OrderID(orderID).Do(ctx); err != nil {
		return &core.RemoteError{Op: "cancel order", Symbol: symbol, Err: err}
	}
	return nil
}

// OpenOrders lists open orders. An empty symbol returns orders for all
// symbols; the filter argument is passed through unchanged.
func (c *Client) OpenOrders(ctx context.Context, symbol string) ([]model.Order, error) {
	svc := c.futures.NewListOpenOrdersService()
	if symbol != "" {
		svc = svc.Symbol(symbol)
	}
	raw, err := svc.Do(ctx)
	if err != nil {
		return nil, &core.RemoteError{Op: "open orders", Symbol: symbol, Err: err}
	}
	orders := make([]model.Order, 0, len(raw))
	for _, o := range raw {
		orders = append(orders, model.Order{
			ID:        o.OrderID,
			Symbol:    o.Symbol,
			Side:      string(o.Side),
			Type:      string(o.Type),
			Status:    string(o.Status),
			Price:     parseDecimal(o.Price),
			StopPrice: parseDecimal(o.StopPrice),
			OrigQty:   parseDecimal(o.OrigQuantity),
			Time:      time.UnixMilli(o.Time),
		})
	}
	return orders, nil
}

// AsAPIError unwraps err down to the Binance API error when the exchange
// refused the request with a code and message.
func AsAPIError(err error) (*common.APIError, bool) {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func parseDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
