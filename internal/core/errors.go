package core

import (
	"errors"
	"fmt"
)

// Validation errors. These are raised before any network call is made, so a
// command that fails with one of them has no side effects on the exchange.
var (
	ErrInvalidSide        = errors.New("side must be BUY or SELL")
	ErrInvalidSymbol      = errors.New("symbol is required")
	ErrInvalidTimeInForce = errors.New("time in force must be GTC, IOC or FOK")
	ErrMissingPrice       = errors.New("price must be greater than zero")
	ErrMissingStopPrice   = errors.New("stop price must be greater than zero")
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
)

// RemoteError marks a failure that happened after a network call was
// attempted. Unlike validation errors it may carry partial side effects, so
// callers must not blindly resubmit.
type RemoteError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsRemote reports whether err involved the exchange. Validation failures
// return false and are always safe to retry with corrected input.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
