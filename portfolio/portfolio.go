// Package portfolio is the single mutator of positions, trades, fills
// and equity. It mediates every mutation the engine's 4-phase loop
// triggers, exactly as spec.md §4.5 describes, and keeps the bookkeeping
// invariants spec.md §8 requires: equity = initial + Σtrade.PnL -
// Σfees, and peak equity monotone non-decreasing.
package portfolio

import (
	"time"

	"github.com/evdnx/barsim/execution"
	"github.com/evdnx/barsim/types"
)

// EquityPoint is one sample of the recorded equity curve.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// Portfolio holds every open position, every closed trade, every fill,
// and the running equity/drawdown bookkeeping.
type Portfolio struct {
	Exec execution.Model

	InitialEquity float64
	Equity        float64
	PeakEquity    float64
	MaxDrawdown   float64 // running max drawdown ratio

	Positions []types.Position
	Trades    []types.Trade
	Fills     []types.Fill

	TotalFees   float64
	EquityCurve []EquityPoint

	MaxPositions int
}

// New constructs a Portfolio at the given starting equity.
func New(exec execution.Model, initialEquity float64, maxPositions int) *Portfolio {
	return &Portfolio{
		Exec:          exec,
		InitialEquity: initialEquity,
		Equity:        initialEquity,
		PeakEquity:    initialEquity,
		MaxPositions:  maxPositions,
	}
}

// CanOpen reports whether a new position may be opened: the portfolio is
// not at MaxPositions, not ruined (equity <= 0), and — when group is
// non-empty — no existing position already occupies that group.
func (p *Portfolio) CanOpen(group string) bool {
	if p.Equity <= 0 {
		return false
	}
	if len(p.Positions) >= p.MaxPositions {
		return false
	}
	if group == "" {
		return true
	}
	for i := range p.Positions {
		if p.Positions[i].Group == group {
			return false
		}
	}
	return true
}

// initExitLevels derives SL/TP/breakeven/trailing/partial-TP state from
// an order's percentage fields, relative to the supplied fill price.
func initExitLevels(pos *types.Position, o types.Order, fillPrice float64) {
	long := pos.Side == types.Long

	if o.SLPct != nil {
		if long {
			pos.SL = fillPrice * (1 - *o.SLPct)
		} else {
			pos.SL = fillPrice * (1 + *o.SLPct)
		}
		pos.HasSL = true
	}
	if o.TPPct != nil {
		if long {
			pos.TP = fillPrice * (1 + *o.TPPct)
		} else {
			pos.TP = fillPrice * (1 - *o.TPPct)
		}
		pos.HasTP = true
	}
	if o.BETriggerPct != nil {
		lock := 0.0
		if o.BELockPct != nil {
			lock = *o.BELockPct
		}
		pos.Breakeven = types.BreakevenState{
			Enabled:    true,
			TriggerPct: *o.BETriggerPct,
			LockPct:    lock,
		}
	}
	if o.TrailPct != nil {
		activation := 0.0
		if o.TrailActivatePct != nil {
			activation = *o.TrailActivatePct
		}
		pos.Trailing = types.TrailingState{
			Enabled:       true,
			TrailPct:      *o.TrailPct,
			ActivationPct: activation,
		}
	}
	if o.PartialTPPct != nil {
		newTP := 0.0
		if o.PartialTPNewTPPct != nil {
			newTP = *o.PartialTPNewTPPct
		}
		pos.Partial = types.PartialTPState{
			Enabled:  true,
			Pct:      *o.PartialTPPct,
			NewTPPct: newTP,
		}
	}
}

// OpenPosition applies entry slippage to either bar.Open (market) or
// limitPrice (limit/stop), charges the entry fee, and appends a new
// Position initialized from the order's exit-management percentages.
func (p *Portfolio) OpenPosition(bar types.Bar, o types.Order, size float64, limitPrice *float64, isMaker bool) types.Fill {
	raw := bar.Open
	if limitPrice != nil {
		raw = *limitPrice
	}
	fillPrice := p.Exec.EntryPrice(raw, o.Side)
	fee := p.Exec.Fee(size, isMaker)
	p.Equity -= fee
	p.TotalFees += fee

	symbol := o.Symbol
	if symbol == "" {
		symbol = bar.Symbol
	}

	pos := types.Position{
		Symbol:       symbol,
		Group:        o.Group,
		Side:         o.Side,
		EntryPrice:   fillPrice,
		EntryTime:    bar.Timestamp,
		Size:         size,
		PositionHigh: fillPrice,
		PositionLow:  fillPrice,
		EntryFee:     fee,
	}
	initExitLevels(&pos, o, fillPrice)
	p.Positions = append(p.Positions, pos)

	fill := types.Fill{
		Timestamp: bar.Timestamp,
		Symbol:    symbol,
		Side:      o.Side,
		Price:     fillPrice,
		Size:      size,
		Fees:      fee,
		Slippage:  slippageCost(raw, fillPrice, size),
		IsEntry:   true,
	}
	p.Fills = append(p.Fills, fill)
	return fill
}

// MergePosition folds a new fill into an existing position at index,
// recomputing the weighted-average entry and re-deriving every exit
// level from the order's percentages against the new average, per the
// resolution in DESIGN.md of spec.md §9's merge-percentage ambiguity.
func (p *Portfolio) MergePosition(index int, bar types.Bar, limitPrice *float64, o types.Order, size float64, isMaker bool) types.Fill {
	pos := &p.Positions[index]

	raw := bar.Open
	if limitPrice != nil {
		raw = *limitPrice
	}
	fillPrice := p.Exec.EntryPrice(raw, pos.Side)
	fee := p.Exec.Fee(size, isMaker)
	p.Equity -= fee
	p.TotalFees += fee
	pos.EntryFee += fee

	newSize := pos.Size + size
	pos.EntryPrice = (pos.Size*pos.EntryPrice + size*fillPrice) / newSize
	pos.Size = newSize

	initExitLevels(pos, o, pos.EntryPrice)

	fill := types.Fill{
		Timestamp: bar.Timestamp,
		Symbol:    pos.Symbol,
		Side:      pos.Side,
		Price:     fillPrice,
		Size:      size,
		Fees:      fee,
		Slippage:  slippageCost(raw, fillPrice, size),
		IsEntry:   true,
	}
	p.Fills = append(p.Fills, fill)
	return fill
}

// slippageCost returns the quote-currency cost of adverse slippage on a
// fill of the given size: the difference between the executed price and
// the raw (pre-slippage) price, scaled by size/raw.
func slippageCost(raw, filled, size float64) float64 {
	diff := filled - raw
	if diff < 0 {
		diff = -diff
	}
	return size * diff / raw
}

func grossPnL(pos types.Position, size, exitPrice float64) float64 {
	if pos.Side == types.Long {
		return size * (exitPrice - pos.EntryPrice) / pos.EntryPrice
	}
	return size * (pos.EntryPrice - exitPrice) / pos.EntryPrice
}

// ClosePosition fully closes the position at index: applies exit
// slippage, charges the exit fee, realizes PnL, updates equity/peak
// equity/drawdown and records an equity-curve sample. The position is
// removed from Positions.
func (p *Portfolio) ClosePosition(index int, ts time.Time, rawPrice float64, reason types.ExitReason, isMaker bool) (types.Fill, types.Trade) {
	pos := p.Positions[index]
	fillPrice := p.Exec.ExitPrice(rawPrice, pos.Side)
	fee := p.Exec.Fee(pos.Size, isMaker)
	pnl := grossPnL(pos, pos.Size, fillPrice)

	p.Equity += pnl
	p.Equity -= fee
	p.TotalFees += fee

	fill := types.Fill{
		Timestamp:  ts,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Price:      fillPrice,
		Size:       pos.Size,
		Fees:       fee,
		Slippage:   slippageCost(rawPrice, fillPrice, pos.Size),
		ExitReason: reason,
	}
	trade := types.Trade{
		Symbol:     pos.Symbol,
		Group:      pos.Group,
		Side:       pos.Side,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  fillPrice,
		Size:       pos.Size,
		PnL:        pnl,
		PnLPct:     (fillPrice - pos.EntryPrice) / pos.EntryPrice,
		Fees:       pos.EntryFee + fee,
		ExitReason: reason,
	}
	if pos.Side == types.Short {
		trade.PnLPct = -trade.PnLPct
	}

	p.Positions = append(p.Positions[:index], p.Positions[index+1:]...)
	p.Fills = append(p.Fills, fill)
	p.Trades = append(p.Trades, trade)
	return fill, trade
}

// PartialClosePosition closes fraction of the position at index,
// shrinking its size, rewriting its TP to PartialTPNewTPPct, and marking
// the partial-TP rule as fired. SL and trailing state are left intact.
func (p *Portfolio) PartialClosePosition(index int, ts time.Time, fraction, rawPrice float64, reason types.ExitReason) (types.Fill, types.Trade) {
	pos := &p.Positions[index]
	closedSize := pos.Size * fraction
	fillPrice := p.Exec.ExitPrice(rawPrice, pos.Side)
	fee := p.Exec.Fee(closedSize, false)
	pnl := grossPnL(*pos, closedSize, fillPrice)

	entryFeeShare := pos.EntryFee * fraction
	pos.EntryFee -= entryFeeShare
	pos.Size -= closedSize

	p.Equity += pnl
	p.Equity -= fee
	p.TotalFees += fee

	if pos.Side == types.Long {
		pos.TP = pos.EntryPrice * (1 + pos.Partial.NewTPPct)
	} else {
		pos.TP = pos.EntryPrice * (1 - pos.Partial.NewTPPct)
	}
	pos.HasTP = true
	pos.Partial.Done = true

	fill := types.Fill{
		Timestamp:  ts,
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		Price:      fillPrice,
		Size:       closedSize,
		Fees:       fee,
		Slippage:   slippageCost(rawPrice, fillPrice, closedSize),
		ExitReason: reason,
	}
	trade := types.Trade{
		Symbol:     pos.Symbol,
		Group:      pos.Group,
		Side:       pos.Side,
		EntryTime:  pos.EntryTime,
		ExitTime:   ts,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  fillPrice,
		Size:       closedSize,
		PnL:        pnl,
		PnLPct:     (fillPrice - pos.EntryPrice) / pos.EntryPrice,
		Fees:       entryFeeShare + fee,
		ExitReason: reason,
		IsPartial:  true,
	}
	if pos.Side == types.Short {
		trade.PnLPct = -trade.PnLPct
	}

	p.Fills = append(p.Fills, fill)
	p.Trades = append(p.Trades, trade)
	return fill, trade
}

// RecordEquitySample updates peak equity and drawdown and appends a
// (timestamp, equity) sample. Callers invoke this after every close and
// partial close, per spec.md §4.5.
func (p *Portfolio) RecordEquitySample(ts time.Time) {
	if p.Equity > p.PeakEquity {
		p.PeakEquity = p.Equity
	}
	if p.PeakEquity > 0 {
		dd := (p.PeakEquity - p.Equity) / p.PeakEquity
		if dd > p.MaxDrawdown {
			p.MaxDrawdown = dd
		}
	}
	p.EquityCurve = append(p.EquityCurve, EquityPoint{Timestamp: ts, Equity: p.Equity})
}
