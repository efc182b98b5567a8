package engine

import (
	"sort"

	"github.com/evdnx/barsim/strategy"
	"github.com/evdnx/barsim/types"
)

// phase3StrategyExits invokes strategy.CheckExits and applies every
// returned instruction, highest position index first so full closes
// never invalidate a later instruction's index.
func (e *Engine) phase3StrategyExits(bar types.Bar) bool {
	positions := e.positionsSnapshot()
	var instructions []strategy.ExitInstruction
	if err := e.callStrategy(bar, func() {
		instructions = e.Strategy.CheckExits(bar, positions)
	}); err != nil {
		e.lastErr = err
		return false
	}
	if len(instructions) == 0 {
		return false
	}

	sort.Slice(instructions, func(a, b int) bool {
		return instructions[a].Index > instructions[b].Index
	})
	for _, ins := range instructions {
		if ins.Index < 0 || ins.Index >= len(e.Portfolio.Positions) {
			continue
		}
		if ins.Fraction > 0 {
			e.partialClose(ins.Index, bar.Timestamp, ins.Fraction, ins.Price, ins.Reason)
		} else {
			e.closePosition(ins.Index, bar.Timestamp, ins.Price, ins.Reason)
		}
	}
	return true
}

// phase4StrategySignals calls strategy.OnBar unless skipSignal is set
// and an exit already fired this bar, then dispatches every returned
// order into the right pending slot.
func (e *Engine) phase4StrategySignals(bar types.Bar, exitFired bool) {
	if e.Cfg.SkipSignalOnClose && exitFired {
		return
	}
	positions := e.positionsSnapshot()
	var orders []types.Order
	if err := e.callStrategy(bar, func() {
		orders = e.Strategy.OnBar(bar, e.Indicators.All(), positions)
	}); err != nil {
		e.lastErr = err
		return
	}
	if len(orders) == 0 {
		return
	}
	for _, l := range e.Listeners {
		l.OnSignal(orders)
	}
	for _, o := range orders {
		symbol := e.symbolOf(o)
		if e.Cfg.SameDirectionOnly && o.Kind != "" && e.hasOpposite(symbol, o.Side) {
			e.reject("same_direction_only", o)
			continue
		}
		e.enqueue(o)
	}
}

func (e *Engine) positionsSnapshot() []types.Position {
	out := make([]types.Position, len(e.Portfolio.Positions))
	copy(out, e.Portfolio.Positions)
	return out
}
