package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"futures-trading-binance/internal/metrics"
	"futures-trading-binance/internal/model"
)

// Trader is the command surface the shell drives.
type Trader interface {
	PlaceMarketOrder(ctx context.Context, symbol, side string, qty decimal.Decimal) (model.Order, error)
	PlaceLimitOrder(ctx context.Context, symbol, side string, qty, price decimal.Decimal, timeInForce string) (model.Order, error)
	PlaceStopLimitOrder(ctx context.Context, symbol, side string, qty, price, stopPrice decimal.Decimal) (model.Order, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	OpenOrders(ctx context.Context, symbol string) ([]model.Order, error)
	AccountBalance(ctx context.Context) (model.AccountSnapshot, error)
	CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Shell is the interactive menu loop. Every command runs in isolation: a
// failed handler prints its error and control returns to the prompt.
type Shell struct {
	trader  Trader
	in      *bufio.Scanner
	out     io.Writer
	log     *slog.Logger
	tracker *metrics.Tracker
}

func NewShell(trader Trader, in io.Reader, out io.Writer, log *slog.Logger, tracker *metrics.Tracker) *Shell {
	return &Shell{
		trader:  trader,
		in:      bufio.NewScanner(in),
		out:     out,
		log:     log,
		tracker: tracker,
	}
}

// Run reads commands until quit or end of input.
func (s *Shell) Run(ctx context.Context) {
	s.printMenu()

	handlers := map[string]func(context.Context) error{
		"market":  s.handleMarketOrder,
		"1":       s.handleMarketOrder,
		"limit":   s.handleLimitOrder,
		"2":       s.handleLimitOrder,
		"stop":    s.handleStopOrder,
		"3":       s.handleStopOrder,
		"cancel":  s.handleCancelOrder,
		"4":       s.handleCancelOrder,
		"orders":  s.handleShowOrders,
		"5":       s.handleShowOrders,
		"balance": s.handleShowBalance,
		"6":       s.handleShowBalance,
		"price":   s.handleGetPrice,
		"7":       s.handleGetPrice,
	}

	for {
		command, ok := s.prompt("\nEnter command: ")
		if !ok {
			fmt.Fprintln(s.out, "\nGoodbye!")
			return
		}
		command = strings.ToLower(command)
		if command == "" {
			continue
		}
		if command == "quit" || command == "8" {
			fmt.Fprintln(s.out, "Goodbye!")
			return
		}
		handler, ok := handlers[command]
		if !ok {
			fmt.Fprintln(s.out, "Unknown command. Try again.")
			continue
		}
		start := time.Now()
		err := handler(ctx)
		if s.tracker != nil {
			s.tracker.Track(command, time.Since(start), err)
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "\n=== Binance Futures Trading Bot ===")
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out, "1. market - Place market order")
	fmt.Fprintln(s.out, "2. limit - Place limit order")
	fmt.Fprintln(s.out, "3. stop - Place stop-limit order")
	fmt.Fprintln(s.out, "4. cancel - Cancel order")
	fmt.Fprintln(s.out, "5. orders - Show open orders")
	fmt.Fprintln(s.out, "6. balance - Show account balance")
	fmt.Fprintln(s.out, "7. price - Get current price")
	fmt.Fprintln(s.out, "8. quit - Exit")
	fmt.Fprintln(s.out, strings.Repeat("=", 40))
}

func (s *Shell) handleMarketOrder(ctx context.Context) error {
	symbol, ok := s.prompt("Symbol (e.g., BTCUSDT): ")
	if !ok {
		return io.EOF
	}
	side, ok := s.prompt("Side (BUY/SELL): ")
	if !ok {
		return io.EOF
	}
	qty, err := s.promptDecimal("Quantity: ")
	if err != nil {
		return s.fail("place market order", err)
	}
	order, err := s.trader.PlaceMarketOrder(ctx, symbol, side, qty)
	if err != nil {
		return s.fail("place market order", err)
	}
	fmt.Fprintf(s.out, "Market order placed: %d\n", order.ID)
	return nil
}

func (s *Shell) handleLimitOrder(ctx context.Context) error {
	symbol, ok := s.prompt("Symbol (e.g., BTCUSDT): ")
	if !ok {
		return io.EOF
	}
	side, ok := s.prompt("Side (BUY/SELL): ")
	if !ok {
		return io.EOF
	}
	qty, err := s.promptDecimal("Quantity: ")
	if err != nil {
		return s.fail("place limit order", err)
	}
	price, err := s.promptDecimal("Price: ")
	if err != nil {
		return s.fail("place limit order", err)
	}
	timeInForce, ok := s.prompt("Time in force (GTC/IOC/FOK, default GTC): ")
	if !ok {
		return io.EOF
	}
	order, err := s.trader.PlaceLimitOrder(ctx, symbol, side, qty, price, timeInForce)
	if err != nil {
		return s.fail("place limit order", err)
	}
	fmt.Fprintf(s.out, "Limit order placed: %d\n", order.ID)
	return nil
}

func (s *Shell) handleStopOrder(ctx context.Context) error {
	symbol, ok := s.prompt("Symbol (e.g., BTCUSDT): ")
	if !ok {
		return io.EOF
	}
	side, ok := s.prompt("Side (BUY/SELL): ")
	if !ok {
		return io.EOF
	}
	qty, err := s.promptDecimal("Quantity: ")
	if err != nil {
		return s.fail("place stop-limit order", err)
	}
	stopPrice, err := s.promptDecimal("Stop price: ")
	if err != nil {
		return s.fail("place stop-limit order", err)
	}
	limitPrice, err := s.promptDecimal("Limit price: ")
	if err != nil {
		return s.fail("place stop-limit order", err)
	}
	order, err := s.trader.PlaceStopLimitOrder(ctx, symbol, side, qty, limitPrice, stopPrice)
	if err != nil {
		return s.fail("place stop-limit order", err)
	}
	fmt.Fprintf(s.out, "Stop-limit order placed: %d\n", order.ID)
	return nil
}

func (s *Shell) handleCancelOrder(ctx context.Context) error {
	symbol, ok := s.prompt("Symbol: ")
	if !ok {
		return io.EOF
	}
	raw, ok := s.prompt("Order ID: ")
	if !ok {
		return io.EOF
	}
	orderID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return s.fail("cancel order", fmt.Errorf("invalid order id %q", raw))
	}
	if err := s.trader.CancelOrder(ctx, symbol, orderID); err != nil {
		return s.fail("cancel order", err)
	}
	fmt.Fprintf(s.out, "Order %d cancelled successfully\n", orderID)
	return nil
}

func (s *Shell) handleShowOrders(ctx context.Context) error {
	symbol, ok := s.prompt("Symbol (or press Enter for all): ")
	if !ok {
		return io.EOF
	}
	orders, err := s.trader.OpenOrders(ctx, symbol)
	if err != nil {
		return s.fail("get orders", err)
	}
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "No open orders")
		return nil
	}
	fmt.Fprintf(s.out, "\nOpen orders (%d):\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(s.out, "ID: %d, Symbol: %s, Side: %s, Type: %s, Quantity: %s, Price: %s\n",
			o.ID, o.Symbol, o.Side, o.Type, o.OrigQty.String(), o.Price.String())
	}
	return nil
}

func (s *Shell) handleShowBalance(ctx context.Context) error {
	snapshot, err := s.trader.AccountBalance(ctx)
	if err != nil {
		return s.fail("get balance", err)
	}
	fmt.Fprintf(s.out, "\nTotal Balance: %s USDT\n", snapshot.TotalBalance.String())
	fmt.Fprintf(s.out, "Available Balance: %s USDT\n", snapshot.AvailableBalance.String())
	if len(snapshot.Assets) > 0 {
		fmt.Fprintln(s.out, "\nAsset Balances:")
		for _, a := range snapshot.Assets {
			fmt.Fprintf(s.out, "%s: %s\n", a.Asset, a.Balance.String())
		}
	}
	return nil
}

func (s *Shell) handleGetPrice(ctx context.Context) error {
	symbol, ok := s.prompt("Symbol (e.g., BTCUSDT): ")
	if !ok {
		return io.EOF
	}
	price, err := s.trader.CurrentPrice(ctx, symbol)
	if err != nil {
		return s.fail("get price", err)
	}
	fmt.Fprintf(s.out, "Current price for %s: %s\n", strings.ToUpper(strings.TrimSpace(symbol)), price.String())
	return nil
}

func (s *Shell) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Shell) promptDecimal(label string) (decimal.Decimal, error) {
	raw, ok := s.prompt(label)
	if !ok {
		return decimal.Zero, io.EOF
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", raw)
	}
	return d, nil
}

// fail prints the per-command error and hands it back for tracking. End of
// input is not worth a message; the main loop exits on the next prompt.
func (s *Shell) fail(action string, err error) error {
	if !errors.Is(err, io.EOF) {
		fmt.Fprintf(s.out, "Failed to %s: %v\n", action, err)
	}
	return err
}
