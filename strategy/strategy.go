// Package strategy defines the capability-set contract a backtest driver
// invokes, and a Base type supplying no-op defaults so concrete
// strategies only override what they need — the direct generalization
// of the teacher's BaseStrategy embedding pattern, which every concrete
// strategy in the retrieved corpus built on.
package strategy

import (
	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/types"
)

// ExitInstruction is one entry CheckExits returns: close (or partially
// close, when Fraction is non-zero) the position at Positions[Index] at
// Price with Reason.
type ExitInstruction struct {
	Index    int
	Price    float64
	Reason   types.ExitReason
	Fraction float64 // 0 = full close
}

// Strategy is the full capability set a bar loop may invoke. Configure
// and OnBar are required; the rest are optional and default to no-ops
// via Base.
type Strategy interface {
	// Configure performs one-shot initialization against the resolved
	// engine configuration. Called once before the first bar.
	Configure(cfg config.EngineConfig) error

	// OnBar is invoked once per bar with the current indicator values
	// and a read-only view of open positions. It returns zero, one, or
	// many orders.
	OnBar(bar types.Bar, indicators map[string]types.IndicatorValue, positions []types.Position) []types.Order

	// OnFill is invoked after every entry or merge fill. It may return
	// a follow-up order (e.g. to arm a bracket), or nil.
	OnFill(fill types.Fill) *types.Order

	// OnExit is invoked after every close or partial close. It may
	// return a follow-up order, or nil.
	OnExit(fill types.Fill, trade types.Trade) *types.Order

	// CheckExits is invoked every bar before OnBar and may force exits
	// independent of SL/TP/breakeven/trailing logic.
	CheckExits(bar types.Bar, positions []types.Position) []ExitInstruction
}

// Base supplies no-op defaults for every optional method. Concrete
// strategies embed Base and override OnBar (and whichever optional
// hooks they need).
type Base struct{}

func (Base) Configure(cfg config.EngineConfig) error { return nil }

func (Base) OnBar(bar types.Bar, indicators map[string]types.IndicatorValue, positions []types.Position) []types.Order {
	return nil
}

func (Base) OnFill(fill types.Fill) *types.Order { return nil }

func (Base) OnExit(fill types.Fill, trade types.Trade) *types.Order { return nil }

func (Base) CheckExits(bar types.Bar, positions []types.Position) []ExitInstruction { return nil }
