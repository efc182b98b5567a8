// Package engine drives the 4-phase per-bar loop spec.md §4.6 describes:
// fill pending orders, evaluate exits with gap protection, run strategy
// exits, then strategy signals — in that strict order, every bar.
package engine

import (
	"fmt"
	"time"

	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/indicatormanager"
	"github.com/evdnx/barsim/metrics"
	"github.com/evdnx/barsim/portfolio"
	"github.com/evdnx/barsim/strategy"
	"github.com/evdnx/barsim/types"
)

// Engine runs one symbol's bar stream against a shared portfolio. A
// MultiAssetEngine owns one Engine per symbol, all pointing at the same
// *portfolio.Portfolio.
type Engine struct {
	Symbol string
	Cfg    config.EngineConfig

	Portfolio  *portfolio.Portfolio
	Indicators *indicatormanager.Manager
	Strategy   strategy.Strategy

	Listeners []Listener

	pendingMarket *types.Order
	pendingLimits []types.PendingOrder
	pendingStops  []types.PendingOrder

	lastErr *StrategyError

	// ExposureGate, when set by a MultiAssetEngine, reports whether
	// opening a new position of sizeUSD keeps total portfolio exposure
	// within MaxTotalExposureUSD. A standalone Engine leaves it nil
	// (uncapped).
	ExposureGate func(sizeUSD float64) bool
}

// New constructs an Engine for one symbol, validating cfg and building
// its indicator manager from cfg.Indicators.
func New(symbol string, cfg config.EngineConfig, strat strategy.Strategy, pf *portfolio.Portfolio) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	mgr, err := indicatormanager.New(cfg.Indicators)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	if err := strat.Configure(cfg); err != nil {
		return nil, fmt.Errorf("engine: strategy configure: %w", err)
	}
	return &Engine{
		Symbol:     symbol,
		Cfg:        cfg,
		Portfolio:  pf,
		Indicators: mgr,
		Strategy:   strat,
	}, nil
}

// AddListener registers a listener to observe bar/fill/exit/signal
// events. Removal is by filtering Listeners directly (identity-based),
// matching the lightweight registrar pattern spec.md §9 calls for.
func (e *Engine) AddListener(l Listener) {
	e.Listeners = append(e.Listeners, l)
}

func (e *Engine) resolveSize(o types.Order, price float64) float64 {
	if o.Size != nil {
		return *o.Size
	}
	if e.Cfg.Sizer != nil {
		slPct := e.Cfg.Strategy.StopLossPct
		if o.SLPct != nil {
			slPct = *o.SLPct
		}
		return e.Cfg.Sizer.GetSize(e.Portfolio.Equity, o.Side, price, e.symbolOf(o), slPct)
	}
	return e.Cfg.DefaultSizeUSD
}

func (e *Engine) symbolOf(o types.Order) string {
	if o.Symbol != "" {
		return o.Symbol
	}
	return e.Symbol
}

// findPosition returns the index of an open position matching symbol
// and side, or (-1, false).
func (e *Engine) findPosition(symbol string, side types.Side) (int, bool) {
	for i := range e.Portfolio.Positions {
		p := &e.Portfolio.Positions[i]
		if p.Symbol == symbol && p.Side == side {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) hasOpposite(symbol string, side types.Side) bool {
	for i := range e.Portfolio.Positions {
		p := &e.Portfolio.Positions[i]
		if p.Symbol == symbol && p.Side == side.Opposite() {
			return true
		}
	}
	return false
}

// callStrategy recovers a panic from any strategy callback and turns it
// into a *StrategyError attached to bar, matching spec.md §7's "fatal
// for the current run, surfaced with the bar timestamp" rule.
func (e *Engine) callStrategy(bar types.Bar, fn func()) (err *StrategyError) {
	defer func() {
		if r := recover(); r != nil {
			metrics.StrategyErrors.WithLabelValues("callback").Inc()
			err = &StrategyError{Bar: bar.Timestamp, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	fn()
	return nil
}

func (e *Engine) notifyFill(fill types.Fill) {
	for _, l := range e.Listeners {
		l.OnFill(fill)
	}
	kind := "entry"
	if fill.ExitReason != "" {
		kind = "exit"
	}
	metrics.FillsTotal.WithLabelValues(fill.Symbol, kind).Inc()
}

func (e *Engine) notifyExit(fill types.Fill, trade types.Trade) {
	for _, l := range e.Listeners {
		l.OnExit(fill, trade)
	}
	metrics.FillsTotal.WithLabelValues(fill.Symbol, "exit").Inc()
	metrics.ExitsTotal.WithLabelValues(fill.Symbol, string(fill.ExitReason)).Inc()
}

func (e *Engine) reject(reason string, o types.Order) {
	for _, l := range e.Listeners {
		l.OnReject(reason, o)
	}
}

func (e *Engine) closePosition(i int, ts time.Time, price float64, reason types.ExitReason) {
	fill, trade := e.Portfolio.ClosePosition(i, ts, price, reason, false)
	e.Portfolio.RecordEquitySample(ts)
	e.notifyExit(fill, trade)
	if err := e.callStrategy(types.Bar{Timestamp: ts}, func() {
		if o := e.Strategy.OnExit(fill, trade); o != nil {
			e.enqueue(*o)
		}
	}); err != nil {
		e.lastErr = err
	}
}

func (e *Engine) partialClose(i int, ts time.Time, fraction, price float64, reason types.ExitReason) {
	fill, trade := e.Portfolio.PartialClosePosition(i, ts, fraction, price, reason)
	e.Portfolio.RecordEquitySample(ts)
	e.notifyExit(fill, trade)
	if err := e.callStrategy(types.Bar{Timestamp: ts}, func() {
		if o := e.Strategy.OnExit(fill, trade); o != nil {
			e.enqueue(*o)
		}
	}); err != nil {
		e.lastErr = err
	}
}

// enqueue dispatches a strategy-returned order into the right pending
// slot: MARKET replaces, LIMIT/STOP append, the cancel sentinel clears
// the LIMIT queue.
func (e *Engine) enqueue(o types.Order) {
	if o.CancelPendingLimits {
		e.pendingLimits = nil
	}
	switch o.Kind {
	case types.Market:
		cp := o
		e.pendingMarket = &cp
	case types.Limit:
		e.pendingLimits = append(e.pendingLimits, types.PendingOrder{Order: o})
	case types.Stop:
		e.pendingStops = append(e.pendingStops, types.PendingOrder{Order: o})
	}
}

// OnBar drives the 4-phase loop for one arriving bar. It returns a
// *StrategyError if any strategy callback panicked during the bar;
// earlier phases' portfolio mutations stand regardless.
func (e *Engine) OnBar(bar types.Bar) error {
	for _, l := range e.Listeners {
		l.OnBar(bar)
	}
	metrics.BarsProcessed.WithLabelValues(bar.Symbol, bar.Timeframe).Inc()

	e.lastErr = nil
	e.phase1FillPending(bar)
	anyExit := e.phase2Exits(bar)
	anyExit = e.phase3StrategyExits(bar) || anyExit
	e.phase4StrategySignals(bar, anyExit)

	e.Indicators.Update(bar)
	metrics.EquityGauge.Set(e.Portfolio.Equity)
	metrics.DrawdownGauge.Set(e.Portfolio.MaxDrawdown)

	if e.lastErr != nil {
		return e.lastErr
	}
	return nil
}
