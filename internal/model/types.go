package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the shaped exchange response for a single futures order.
type Order struct {
	ID        int64
	Symbol    string
	Side      string
	Type      string
	Status    string
	Price     decimal.Decimal
	StopPrice decimal.Decimal
	OrigQty   decimal.Decimal
	Time      time.Time
}

// AssetBalance is the wallet balance of a single asset.
type AssetBalance struct {
	Asset   string
	Balance decimal.Decimal
}

// AccountSnapshot is a point-in-time view of the futures wallet. It is not
// kept consistent with trades placed after it was taken; callers re-fetch.
type AccountSnapshot struct {
	TotalBalance     decimal.Decimal
	AvailableBalance decimal.Decimal
	Assets           []AssetBalance
}

// LotSize carries the LOT_SIZE filter of a symbol. A zero Step means the
// symbol has no lot-size filter and quantities pass through unrounded.
type LotSize struct {
	MinQty decimal.Decimal
	Step   decimal.Decimal
}
