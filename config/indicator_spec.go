package config

import "fmt"

// IndicatorKind is the closed set of indicator algorithms spec.md §4.2
// requires.
type IndicatorKind string

const (
	KindSMA        IndicatorKind = "sma"
	KindEMA        IndicatorKind = "ema"
	KindRSI        IndicatorKind = "rsi"
	KindATR        IndicatorKind = "atr"
	KindCHOP       IndicatorKind = "chop"
	KindBollinger  IndicatorKind = "bollinger"
	KindMACD       IndicatorKind = "macd"
	KindStochastic IndicatorKind = "stochastic"
	KindVWAP       IndicatorKind = "vwap"
	KindOBV        IndicatorKind = "obv"
)

// IndicatorSpec configures one named indicator on one timeframe. Fields
// irrelevant to Kind are ignored.
type IndicatorSpec struct {
	Kind      IndicatorKind
	Timeframe string // "1m", "5m", "15m", "30m", "1h", "2h", "4h", "1d"
	Source    string // "close" (default), "open", "high", "low"

	Period int // SMA, EMA, RSI, ATR, CHOP, Bollinger

	// RSI / ATR smoothing selector: "wilder" (default) or "simple"/"sma".
	Smoothing string

	NumStd float64 // Bollinger

	FastPeriod   int // MACD
	SlowPeriod   int // MACD
	SignalPeriod int // MACD

	KPeriod int // Stochastic
	SmoothK int // Stochastic
	DPeriod int // Stochastic
}

// Validate fails fast on an unknown kind or an out-of-range period,
// per spec.md §7's configuration-error policy.
func (s IndicatorSpec) Validate(name string) error {
	switch s.Kind {
	case KindSMA, KindEMA, KindRSI, KindATR, KindCHOP, KindBollinger:
		if s.Period <= 0 {
			return fmt.Errorf("indicator %q: Period must be positive", name)
		}
	case KindMACD:
		if s.FastPeriod <= 0 || s.SlowPeriod <= 0 || s.SignalPeriod <= 0 {
			return fmt.Errorf("indicator %q: MACD periods must be positive", name)
		}
	case KindStochastic:
		if s.KPeriod <= 0 || s.SmoothK <= 0 || s.DPeriod <= 0 {
			return fmt.Errorf("indicator %q: Stochastic periods must be positive", name)
		}
	case KindVWAP, KindOBV:
		// no tunables
	default:
		return fmt.Errorf("indicator %q: unknown kind %q", name, s.Kind)
	}
	return nil
}
