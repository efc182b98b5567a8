// Package indicator implements the spec's closed set of streaming
// indicators (SMA, EMA, RSI, ATR, CHOP, Bollinger, MACD, Stochastic,
// VWAP, OBV). Each indicator consumes completed bars of a single
// timeframe through Update and exposes the current Value, which reports
// Ok=false while warmup is incomplete.
//
// The streaming shape (accumulate into a bounded window, expose a value
// once enough history exists) follows the teacher's rolling-window
// helper in strategy/price_buffer.go, generalized to the specific
// algorithms spec.md §4.2 requires.
package indicator

import "github.com/evdnx/barsim/types"

// Source selects which OHLC field an indicator reads from a bar.
type Source string

const (
	SourceClose Source = "close"
	SourceOpen  Source = "open"
	SourceHigh  Source = "high"
	SourceLow   Source = "low"
)

func sourceValue(b types.Bar, s Source) float64 {
	switch s {
	case SourceOpen:
		return b.Open
	case SourceHigh:
		return b.High
	case SourceLow:
		return b.Low
	default:
		return b.Close
	}
}

// Indicator is the streaming contract every indicator implements.
type Indicator interface {
	Update(bar types.Bar)
	Value() types.IndicatorValue
}

func notReady() types.IndicatorValue {
	return types.IndicatorValue{Ok: false}
}

func scalar(v float64) types.IndicatorValue {
	return types.IndicatorValue{Ok: true, Scalar: v}
}

func record(fields map[string]float64) types.IndicatorValue {
	return types.IndicatorValue{Ok: true, Record: fields}
}
