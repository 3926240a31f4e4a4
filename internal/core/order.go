package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Side string

type OrderType string

type TimeInForce string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
	// StopLimit is the request type marker the futures API uses for
	// stop-limit orders. It is distinct from plain LIMIT: the order only
	// becomes an active limit order once the stop price is reached.
	StopLimit OrderType = "STOP"
)

const (
	GTC TimeInForce = "GTC"
	IOC TimeInForce = "IOC"
	FOK TimeInForce = "FOK"
)

// OrderRequest is a fully validated order ready for submission.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    string
	Price       decimal.Decimal
	StopPrice   decimal.Decimal
	TimeInForce TimeInForce
}

// NormalizeSide uppercases s and checks it is one of BUY or SELL.
func NormalizeSide(s string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(s))) {
	case Buy:
		return Buy, nil
	case Sell:
		return Sell, nil
	}
	return "", ErrInvalidSide
}

// NormalizeSymbol uppercases s and rejects an empty symbol.
func NormalizeSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", ErrInvalidSymbol
	}
	return s, nil
}

func normalizeTimeInForce(s string) (TimeInForce, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return GTC, nil
	}
	switch tif := TimeInForce(s); tif {
	case GTC, IOC, FOK:
		return tif, nil
	}
	return "", ErrInvalidTimeInForce
}

func checkQuantity(qty string) error {
	d, err := decimal.NewFromString(qty)
	if err != nil || d.Cmp(decimal.Zero) <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// BuildMarketOrder assembles a market order request. qty must already be an
// exchange-compliant quantity string.
func BuildMarketOrder(symbol, side, qty string) (OrderRequest, error) {
	return buildBase(symbol, side, qty, Market)
}

// BuildLimitOrder assembles a limit order request. An empty timeInForce
// defaults to GTC.
func BuildLimitOrder(symbol, side, qty string, price decimal.Decimal, timeInForce string) (OrderRequest, error) {
	req, err := buildBase(symbol, side, qty, Limit)
	if err != nil {
		return OrderRequest{}, err
	}
	if price.Cmp(decimal.Zero) <= 0 {
		return OrderRequest{}, ErrMissingPrice
	}
	req.Price = price
	if req.TimeInForce, err = normalizeTimeInForce(timeInForce); err != nil {
		return OrderRequest{}, err
	}
	return req, nil
}

// BuildStopLimitOrder assembles a stop-limit order request carrying both the
// limit price and the trigger price.
func BuildStopLimitOrder(symbol, side, qty string, price, stopPrice decimal.Decimal, timeInForce string) (OrderRequest, error) {
	req, err := buildBase(symbol, side, qty, StopLimit)
	if err != nil {
		return OrderRequest{}, err
	}
	if price.Cmp(decimal.Zero) <= 0 {
		return OrderRequest{}, ErrMissingPrice
	}
	if stopPrice.Cmp(decimal.Zero) <= 0 {
		return OrderRequest{}, ErrMissingStopPrice
	}
	req.Price = price
	req.StopPrice = stopPrice
	if req.TimeInForce, err = normalizeTimeInForce(timeInForce); err != nil {
		return OrderRequest{}, err
	}
	return req, nil
}

func buildBase(symbol, side, qty string, orderType OrderType) (OrderRequest, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return OrderRequest{}, err
	}
	sd, err := NormalizeSide(side)
	if err != nil {
		return OrderRequest{}, err
	}
	if err := checkQuantity(qty); err != nil {
		return OrderRequest{}, err
	}
	return OrderRequest{Symbol: sym, Side: sd, Type: orderType, Quantity: qty}, nil
}
