package engine

import (
	"github.com/evdnx/barsim/types"
)

// phase2Exits evaluates SL/TP/breakeven/trailing exits for every open
// position belonging to this engine's symbol, in spec.md §4.6's strict
// priority order, and reports whether any exit (full or partial) fired
// this bar. Positions are walked high-index-to-low so a full close's
// in-place slice removal never invalidates an index still to be
// visited.
func (e *Engine) phase2Exits(bar types.Bar) bool {
	anyExit := false
	for i := len(e.Portfolio.Positions) - 1; i >= 0; i-- {
		p := &e.Portfolio.Positions[i]
		if p.Symbol != e.Symbol {
			continue
		}
		if e.evaluatePositionExit(i, bar) {
			anyExit = true
		}
	}
	return anyExit
}

func (e *Engine) evaluatePositionExit(i int, bar types.Bar) bool {
	p := &e.Portfolio.Positions[i]
	if bar.High > p.PositionHigh {
		p.PositionHigh = bar.High
	}
	if bar.Low < p.PositionLow {
		p.PositionLow = bar.Low
	}

	long := p.Side == types.Long

	// 1. Gap-through stop, using the effective SL (may already include
	// a trailing level activated on a previous bar).
	if effSL, has := p.EffectiveSL(); has {
		if long && bar.Open <= effSL {
			e.closePosition(i, bar.Timestamp, bar.Open, types.StopLossGap)
			return true
		}
		if !long && bar.Open >= effSL {
			e.closePosition(i, bar.Timestamp, bar.Open, types.StopLossGap)
			return true
		}
	}

	// 2. Gap-through take profit. partial_tp is ignored for gaps.
	if p.HasTP {
		if long && bar.Open >= p.TP {
			e.closePosition(i, bar.Timestamp, bar.Open, types.TakeProfitGap)
			return true
		}
		if !long && bar.Open <= p.TP {
			e.closePosition(i, bar.Timestamp, bar.Open, types.TakeProfitGap)
			return true
		}
	}

	// 3. Intra-bar stop.
	if effSL, has := p.EffectiveSL(); has {
		if long && bar.Low <= effSL {
			e.closePosition(i, bar.Timestamp, effSL, types.StopLoss)
			return true
		}
		if !long && bar.High >= effSL {
			e.closePosition(i, bar.Timestamp, effSL, types.StopLoss)
			return true
		}
	}

	// 4. Breakeven activation / trailing activation. Sticky: once set,
	// never relaxed.
	e.updateBreakeven(p, long)
	e.updateTrailing(p, long)

	// 5. Intra-bar take profit.
	if p.HasTP {
		if long && bar.High >= p.TP {
			return e.fireTakeProfit(i, bar)
		}
		if !long && bar.Low <= p.TP {
			return e.fireTakeProfit(i, bar)
		}
	}
	return false
}

func (e *Engine) fireTakeProfit(i int, bar types.Bar) bool {
	p := &e.Portfolio.Positions[i]
	if p.Partial.Enabled && !p.Partial.Done {
		e.partialClose(i, bar.Timestamp, p.Partial.Pct, p.TP, types.PartialTP)
		return true
	}
	e.closePosition(i, bar.Timestamp, p.TP, types.TakeProfit)
	return true
}

func (e *Engine) updateBreakeven(p *types.Position, long bool) {
	if !p.Breakeven.Enabled || p.Breakeven.Activated {
		return
	}
	var trigger, lock float64
	var reached bool
	if long {
		trigger = p.EntryPrice * (1 + p.Breakeven.TriggerPct)
		lock = p.EntryPrice * (1 + p.Breakeven.LockPct)
		reached = p.PositionHigh >= trigger
	} else {
		trigger = p.EntryPrice * (1 - p.Breakeven.TriggerPct)
		lock = p.EntryPrice * (1 - p.Breakeven.LockPct)
		reached = p.PositionLow <= trigger
	}
	if !reached {
		return
	}
	p.Breakeven.Activated = true
	p.Breakeven.TriggerPrice = trigger
	p.Breakeven.LockPrice = lock
	if !p.HasSL {
		p.SL = lock
		p.HasSL = true
		return
	}
	if long && lock > p.SL {
		p.SL = lock
	} else if !long && lock < p.SL {
		p.SL = lock
	}
}

func (e *Engine) updateTrailing(p *types.Position, long bool) {
	if !p.Trailing.Enabled || p.Trailing.Activated {
		return
	}
	var activation float64
	var reached bool
	if long {
		activation = p.EntryPrice * (1 + p.Trailing.ActivationPct)
		reached = p.PositionHigh >= activation
	} else {
		activation = p.EntryPrice * (1 - p.Trailing.ActivationPct)
		reached = p.PositionLow <= activation
	}
	if reached {
		p.Trailing.Activated = true
	}
}
