package config

import (
	"fmt"

	"github.com/evdnx/barsim/types"
)

// Sizer computes an order's notional size in quote units. When set on
// EngineConfig it supersedes DefaultSizeUSD.
type Sizer interface {
	GetSize(equity float64, side types.Side, price float64, symbol string, stopLossPct float64) float64
}

// EngineConfig carries every key spec.md §6 enumerates for the
// single-symbol engine, plus the ambient StrategyConfig knobs a
// strategy's orders read when filling in exit-management percentages.
type EngineConfig struct {
	InitialEquity  float64
	DefaultSizeUSD float64
	MaxPositions   int

	Slippage float64
	TakerFee float64
	MakerFee float64

	Indicators map[string]IndicatorSpec

	SkipSignalOnClose bool
	SameDirectionOnly bool

	Sizer Sizer

	Strategy StrategyConfig
}

// DefaultEngineConfig returns the spec's defaults: $10k equity, $10k
// default order size, 1 max position, 2bps slippage, 1.5bps taker fee, 0
// maker fee, skip-signal-on-close and same-direction-only both enabled.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		InitialEquity:     10000,
		DefaultSizeUSD:    10000,
		MaxPositions:      1,
		Slippage:          0.0002,
		TakerFee:          0.00015,
		MakerFee:          0,
		Indicators:        map[string]IndicatorSpec{},
		SkipSignalOnClose: true,
		SameDirectionOnly: true,
	}
}

// Validate fails fast per spec.md §7: unknown indicator kinds and
// contradictory or negative numeric settings are rejected before a run
// starts.
func (c EngineConfig) Validate() error {
	if c.InitialEquity <= 0 {
		return fmt.Errorf("InitialEquity must be positive, got %v", c.InitialEquity)
	}
	if c.DefaultSizeUSD <= 0 && c.Sizer == nil {
		return fmt.Errorf("DefaultSizeUSD must be positive when no Sizer is configured")
	}
	if c.MaxPositions <= 0 {
		return fmt.Errorf("MaxPositions must be positive, got %v", c.MaxPositions)
	}
	if c.Slippage < 0 {
		return fmt.Errorf("Slippage cannot be negative")
	}
	if c.TakerFee < 0 || c.MakerFee < 0 {
		return fmt.Errorf("fees cannot be negative")
	}
	for name, spec := range c.Indicators {
		if err := spec.Validate(name); err != nil {
			return err
		}
	}
	return nil
}

// SymbolConfig overrides EngineConfig keys for one symbol inside a
// MultiAssetEngine.
type SymbolConfig struct {
	MaxPositions      *int
	Indicators        map[string]IndicatorSpec
	SkipSignalOnClose *bool
	SameDirectionOnly *bool
	Sizer             Sizer
}

// Merged returns a copy of base with any fields s overrides applied.
func (s SymbolConfig) Merged(base EngineConfig) EngineConfig {
	out := base
	if s.MaxPositions != nil {
		out.MaxPositions = *s.MaxPositions
	}
	if s.Indicators != nil {
		out.Indicators = s.Indicators
	}
	if s.SkipSignalOnClose != nil {
		out.SkipSignalOnClose = *s.SkipSignalOnClose
	}
	if s.SameDirectionOnly != nil {
		out.SameDirectionOnly = *s.SameDirectionOnly
	}
	if s.Sizer != nil {
		out.Sizer = s.Sizer
	}
	return out
}

// MultiAssetConfig carries the multi-asset-only keys from spec.md §6:
// per-symbol overrides and an optional portfolio-wide exposure cap.
type MultiAssetConfig struct {
	Base                EngineConfig
	SymbolConfigs       map[string]SymbolConfig
	MaxTotalExposureUSD float64 // 0 = uncapped
}
