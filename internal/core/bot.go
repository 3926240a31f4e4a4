package core

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"futures-trading-binance/internal/config"
	"futures-trading-binance/internal/model"
)

// Exchange is the capability set the bot consumes from the futures API.
type Exchange interface {
	ServerTime(ctx context.Context) (time.Time, error)
	AccountSnapshot(ctx context.Context) (model.AccountSnapshot, error)
	LotSize(ctx context.Context, symbol string) (model.LotSize, error)
	SymbolPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
	CreateOrder(ctx context.Context, req OrderRequest) (model.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	OpenOrders(ctx context.Context, symbol string) ([]model.Order, error)
}

// Notifier receives order lifecycle events. Implementations must not block.
type Notifier interface {
	OrderPlaced(order model.Order)
	OrderCanceled(symbol string, orderID int64)
}

// Bot validates, shapes and submits orders and account queries. Every
// operation is a single synchronous round trip; there are no retries and no
// state shared between calls.
type Bot struct {
	cfg      *config.Config
	log      *slog.Logger
	exchange Exchange
	notifier Notifier
}

func NewBot(cfg *config.Config, log *slog.Logger, exchange Exchange, notifier Notifier) *Bot {
	return &Bot{
		cfg:      cfg,
		log:      log,
		exchange: exchange,
		notifier: notifier,
	}
}

// TestConnection verifies credentials and connectivity by fetching the server
// time and the account snapshot.
func (b *Bot) TestConnection(ctx context.Context) error {
	serverTime, err := b.exchange.ServerTime(ctx)
	if err != nil {
		b.log.Error("api connection failed", "error", err)
		return err
	}
	b.log.Info("connected to binance futures", "server_time", serverTime.UTC().Format(time.RFC3339))

	snapshot, err := b.exchange.AccountSnapshot(ctx)
	if err != nil {
		b.log.Error("connection test failed", "error", err)
		return err
	}
	b.log.Info("account balance", "total_usdt", snapshot.TotalBalance.String())
	return nil
}

func (b *Bot) PlaceMarketOrder(ctx context.Context, symbol, side string, qty decimal.Decimal) (model.Order, error) {
	req, err := BuildMarketOrder(symbol, side, qty.String())
	if err != nil {
		return model.Order{}, err
	}
	b.log.Info("placing market order", "symbol", req.Symbol, "side", req.Side, "qty", req.Quantity)
	return b.placeOrder(ctx, req, qty)
}

func (b *Bot) PlaceLimitOrder(ctx context.Context, symbol, side string, qty, price decimal.Decimal, timeInForce string) (model.Order, error) {
	req, err := BuildLimitOrder(symbol, side, qty.String(), price, timeInForce)
	if err != nil {
		return model.Order{}, err
	}
	b.log.Info("placing limit order", "symbol", req.Symbol, "side", req.Side, "qty", req.Quantity, "price", price.String(), "tif", req.TimeInForce)
	return b.placeOrder(ctx, req, qty)
}

func (b *Bot) PlaceStopLimitOrder(ctx context.Context, symbol, side string, qty, price, stopPrice decimal.Decimal) (model.Order, error) {
	req, err := BuildStopLimitOrder(symbol, side, qty.String(), price, stopPrice, "")
	if err != nil {
		return model.Order{}, err
	}
	b.log.Info("placing stop-limit order", "symbol", req.Symbol, "side", req.Side, "qty", req.Quantity, "stop", stopPrice.String(), "limit", price.String())
	return b.placeOrder(ctx, req, qty)
}

// placeOrder formats the quantity against the symbol's lot-size step and
// submits the request. All field validation happened in the builder, so a
// failure here is either the metadata lookup or the exchange itself.
func (b *Bot) placeOrder(ctx context.Context, req OrderRequest, qty decimal.Decimal) (model.Order, error) {
	formatted, err := b.formatQuantity(ctx, req.Symbol, qty)
	if err != nil {
		return model.Order{}, err
	}
	if rounded, err := decimal.NewFromString(formatted); err == nil && rounded.Cmp(decimal.Zero) <= 0 {
		b.log.Warn("quantity truncated below one lot step", "symbol", req.Symbol, "qty", qty.String())
		return model.Order{}, ErrInvalidQuantity
	}
	req.Quantity = formatted

	order, err := b.exchange.CreateOrder(ctx, req)
	if err != nil {
		b.log.Error("order placement failed", "symbol", req.Symbol, "type", req.Type, "error", err)
		return model.Order{}, err
	}
	b.log.Info("order placed", "symbol", order.Symbol, "order_id", order.ID, "type", req.Type, "side", req.Side, "qty", req.Quantity, "status", order.Status)
	if b.notifier != nil {
		b.notifier.OrderPlaced(order)
	}
	return order, nil
}

// formatQuantity rounds qty down to the symbol's lot-size step. When the
// lookup fails the order is rejected unless ALLOW_UNROUNDED_QTY opts into
// submitting the original quantity string.
func (b *Bot) formatQuantity(ctx context.Context, symbol string, qty decimal.Decimal) (string, error) {
	lot, err := b.exchange.LotSize(ctx, symbol)
	if err != nil {
		if b.cfg.AllowUnroundedQty {
			b.log.Warn("quantity formatting degraded to unrounded value", "symbol", symbol, "qty", qty.String(), "error", err)
			return qty.String(), nil
		}
		b.log.Error("failed to fetch lot size", "symbol", symbol, "error", err)
		return "", err
	}
	return FormatQuantity(qty, lot.Step), nil
}

func (b *Bot) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return err
	}
	if err := b.exchange.CancelOrder(ctx, sym, orderID); err != nil {
		b.log.Error("failed to cancel order", "symbol", sym, "order_id", orderID, "error", err)
		return err
	}
	b.log.Info("order cancelled", "symbol", sym, "order_id", orderID)
	if b.notifier != nil {
		b.notifier.OrderCanceled(sym, orderID)
	}
	return nil
}

// OpenOrders lists open orders, all symbols when symbol is empty. The filter
// is passed through unchanged apart from normalization.
func (b *Bot) OpenOrders(ctx context.Context, symbol string) ([]model.Order, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	orders, err := b.exchange.OpenOrders(ctx, sym)
	if err != nil {
		b.log.Error("failed to get open orders", "symbol", sym, "error", err)
		return nil, err
	}
	b.log.Info("retrieved open orders", "count", len(orders))
	return orders, nil
}

// AccountBalance fetches a fresh wallet snapshot; nothing is cached.
func (b *Bot) AccountBalance(ctx context.Context) (model.AccountSnapshot, error) {
	snapshot, err := b.exchange.AccountSnapshot(ctx)
	if err != nil {
		b.log.Error("failed to get account balance", "error", err)
		return model.AccountSnapshot{}, err
	}
	b.log.Info("account snapshot", "total", snapshot.TotalBalance.String(), "available", snapshot.AvailableBalance.String(), "assets", len(snapshot.Assets))
	return snapshot, nil
}

func (b *Bot) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return decimal.Zero, err
	}
	price, err := b.exchange.SymbolPrice(ctx, sym)
	if err != nil {
		b.log.Error("failed to get price", "symbol", sym, "error", err)
		return decimal.Zero, err
	}
	b.log.Debug("current price", "symbol", sym, "price", price.String())
	return price, nil
}
