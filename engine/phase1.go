package engine

import "github.com/evdnx/barsim/types"

// phase1FillPending fills the pending MARKET slot, then tests every
// pending LIMIT and STOP order against this bar, in that order, per
// spec.md §4.6 phase 1. LIMIT-vs-STOP fill ordering within the phase is
// implementation-defined but stable (spec.md §9 open question); this
// engine always resolves MARKET, then LIMIT, then STOP.
func (e *Engine) phase1FillPending(bar types.Bar) {
	e.fillPendingMarket(bar)
	e.fillPendingLimits(bar)
	e.fillPendingStops(bar)
}

func (e *Engine) fillPendingMarket(bar types.Bar) {
	if e.pendingMarket == nil {
		return
	}
	o := *e.pendingMarket
	e.pendingMarket = nil
	symbol := e.symbolOf(o)

	mergeIdx, canMerge := -1, false
	if o.MergePosition {
		mergeIdx, canMerge = e.findPosition(symbol, o.Side)
	}

	if e.Cfg.SameDirectionOnly && !canMerge && e.hasOpposite(symbol, o.Side) {
		e.reject("same_direction_only", o)
		return
	}
	if !canMerge && !e.Portfolio.CanOpen(o.Group) {
		e.reject("cannot_open", o)
		return
	}

	size := e.resolveSize(o, bar.Open)
	if !canMerge && e.ExposureGate != nil && !e.ExposureGate(size) {
		e.reject("exposure_cap", o)
		return
	}
	var fill types.Fill
	if canMerge {
		fill = e.Portfolio.MergePosition(mergeIdx, bar, nil, o, size, false)
	} else {
		fill = e.Portfolio.OpenPosition(bar, o, size, nil, false)
	}
	e.notifyFill(fill)
	if err := e.callStrategy(bar, func() {
		if next := e.Strategy.OnFill(fill); next != nil {
			e.enqueue(*next)
		}
	}); err != nil {
		e.lastErr = err
	}
}

func (e *Engine) fillPendingLimits(bar types.Bar) {
	kept := e.pendingLimits[:0]
	for _, pending := range e.pendingLimits {
		if pending.TimedOut() {
			continue
		}
		symbol := e.symbolOf(pending.Order)
		if pending.MinPositions > 0 {
			count := 0
			for i := range e.Portfolio.Positions {
				if e.Portfolio.Positions[i].Symbol == symbol {
					count++
				}
			}
			if count < pending.MinPositions {
				pending.BarsElapsed++
				kept = append(kept, pending)
				continue
			}
		}

		triggered := false
		if pending.Side == types.Long {
			triggered = bar.Low <= pending.LimitPrice
		} else {
			triggered = bar.High >= pending.LimitPrice
		}
		if !triggered {
			pending.BarsElapsed++
			kept = append(kept, pending)
			continue
		}

		size := e.resolveSize(pending.Order, pending.LimitPrice)
		limitPrice := pending.LimitPrice
		var fill types.Fill
		if pending.MergePosition {
			if idx, ok := e.findPosition(symbol, pending.Side); ok {
				fill = e.Portfolio.MergePosition(idx, bar, &limitPrice, pending.Order, size, pending.UseMakerFee)
				e.notifyFill(fill)
				e.afterEntryFill(bar, fill)
				continue
			}
		}
		if e.ExposureGate != nil && !e.ExposureGate(size) {
			e.reject("exposure_cap", pending.Order)
			continue
		}
		fill = e.Portfolio.OpenPosition(bar, pending.Order, size, &limitPrice, pending.UseMakerFee)
		e.notifyFill(fill)
		e.afterEntryFill(bar, fill)
	}
	e.pendingLimits = kept
}

func (e *Engine) fillPendingStops(bar types.Bar) {
	kept := e.pendingStops[:0]
	for _, pending := range e.pendingStops {
		if pending.TimedOut() {
			continue
		}
		triggered := false
		if pending.Side == types.Long {
			triggered = bar.High >= pending.StopPrice
		} else {
			triggered = bar.Low <= pending.StopPrice
		}
		if !triggered {
			pending.BarsElapsed++
			kept = append(kept, pending)
			continue
		}
		size := e.resolveSize(pending.Order, pending.StopPrice)
		if e.ExposureGate != nil && !e.ExposureGate(size) {
			e.reject("exposure_cap", pending.Order)
			continue
		}
		stopPrice := pending.StopPrice
		fill := e.Portfolio.OpenPosition(bar, pending.Order, size, &stopPrice, false)
		e.notifyFill(fill)
		e.afterEntryFill(bar, fill)
	}
	e.pendingStops = kept
}

func (e *Engine) afterEntryFill(bar types.Bar, fill types.Fill) {
	if err := e.callStrategy(bar, func() {
		if next := e.Strategy.OnFill(fill); next != nil {
			e.enqueue(*next)
		}
	}); err != nil {
		e.lastErr = err
	}
}
