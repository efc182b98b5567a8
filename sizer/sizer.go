// Package sizer implements config.Sizer: strategies for turning an
// account equity into an order's notional size in quote units. The
// risk-based variant is grounded on the teacher's risk.CalcQty, adapted
// from an asset-quantity result to a quote-notional result since
// spec.md §3 sizes orders in quote currency, not asset units.
package sizer

import (
	"math"

	"github.com/evdnx/barsim/types"
)

// FixedNotional always returns the same notional size, ignoring side,
// price, symbol and stop-loss distance. This is the sizing behavior
// implied by EngineConfig.DefaultSizeUSD when no Sizer is configured.
type FixedNotional struct {
	USD float64
}

func (f FixedNotional) GetSize(equity float64, side types.Side, price float64, symbol string, stopLossPct float64) float64 {
	return f.USD
}

// RiskBased sizes a position so that a stop-loss exit loses exactly
// MaxRiskPerTrade of current equity: notional = (equity * MaxRiskPerTrade)
// / stopLossPct, rounded down to StepSize and floored to MinQty (0 below
// the floor), matching the teacher's risk.CalcQty rounding discipline.
type RiskBased struct {
	MaxRiskPerTrade float64
	StepSize        float64
	MinQty          float64
}

func (r RiskBased) GetSize(equity float64, side types.Side, price float64, symbol string, stopLossPct float64) float64 {
	if stopLossPct <= 0 {
		return 0
	}
	riskAmt := equity * r.MaxRiskPerTrade
	notional := riskAmt / stopLossPct
	if r.StepSize > 0 {
		notional = math.Floor(notional/r.StepSize) * r.StepSize
	}
	if notional < r.MinQty {
		return 0
	}
	return notional
}
