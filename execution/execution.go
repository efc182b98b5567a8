// Package execution applies the adverse-fill model: slippage on entry and
// exit prices, and maker/taker fees. It is the simulator's analogue of the
// teacher's risk package — a small, pure, side-aware numeric helper with no
// state of its own.
package execution

import "github.com/evdnx/barsim/types"

// Model holds the slippage and fee rates applied to every fill. All rates
// are per-side fractions (0.0002 = 2 bps).
type Model struct {
	Slippage float64
	TakerFee float64
	MakerFee float64
}

// Default returns the spec's default execution model: 2bps slippage,
// 1.5bps taker fee, 0 maker fee.
func Default() Model {
	return Model{
		Slippage: 0.0002,
		TakerFee: 0.00015,
		MakerFee: 0,
	}
}

// EntryPrice returns the slippage-adjusted entry price. Entries are
// always adverse: a long pays more, a short receives less.
func (m Model) EntryPrice(raw float64, side types.Side) float64 {
	if side == types.Long {
		return raw * (1 + m.Slippage)
	}
	return raw * (1 - m.Slippage)
}

// ExitPrice returns the slippage-adjusted exit price. Exits are always
// adverse: a long receives less, a short pays more.
func (m Model) ExitPrice(raw float64, side types.Side) float64 {
	if side == types.Long {
		return raw * (1 - m.Slippage)
	}
	return raw * (1 + m.Slippage)
}

// Fee returns the fee owed on a notional size, using the maker rate when
// isMaker is true and the taker rate otherwise.
func (m Model) Fee(size float64, isMaker bool) float64 {
	if isMaker {
		return size * m.MakerFee
	}
	return size * m.TakerFee
}
