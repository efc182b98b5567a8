// Package provider supplies bar streams to an engine. The loader idiom
// (flexible header lookup, RFC3339-or-unix timestamp parsing, ascending
// sort) is grounded on chidi150c-coinbase/backtest.go's loadCSV, adapted
// from a one-shot slice loader into the restartable BarProvider contract
// spec.md §6 requires.
package provider

import (
	"errors"
	"fmt"

	"github.com/evdnx/barsim/types"
)

// ErrMalformedBar wraps a specific OHLC-invariant violation found in a
// bar read from a provider (NaN, negative price, high < low, or an
// out-of-order timestamp).
var ErrMalformedBar = errors.New("malformed bar")

// BarProvider is a restartable, finite sequence of bars for one symbol
// and timeframe.
type BarProvider interface {
	// Next returns the next bar, or ok=false once the stream is
	// exhausted. err is non-nil only for unrecoverable read failures.
	Next() (types.Bar, bool, error)
	Reset() error
	Symbol() string
	Timeframe() string
}

func malformed(b types.Bar, reason string) error {
	return fmt.Errorf("%w: %s: %+v", ErrMalformedBar, reason, b)
}

// validateOrder checks b against prev (the previously emitted bar, or
// the zero Bar for the first one) for the violations ErrMalformedBar
// covers beyond what Bar.Valid already checks (OHLC consistency):
// non-decreasing timestamps.
func validateOrder(prev, b types.Bar, havePrev bool) error {
	if !b.Valid() {
		return malformed(b, "OHLC invariant violated")
	}
	if havePrev && b.Timestamp.Before(prev.Timestamp) {
		return malformed(b, "timestamp out of order")
	}
	return nil
}
