// Package results turns a finished run's portfolio bookkeeping into the
// summary statistics spec.md §8 expects a report to surface: return,
// drawdown, win rate, profit factor, fee drag, and per-exit-reason and
// per-month breakdowns. Field naming follows the winning/losing-trade,
// max-drawdown-pct idiom the retrieved backtest-engine examples use.
package results

import (
	"math"

	"github.com/evdnx/barsim/portfolio"
	"github.com/evdnx/barsim/types"
)

// Summary is the set of scalar and breakdown statistics computed from a
// finished portfolio.
type Summary struct {
	InitialEquity float64
	FinalEquity   float64
	NetPnL        float64
	ReturnPct     float64

	MaxDrawdownPct float64

	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64 // 0 when TotalTrades == 0

	AvgWin  float64
	AvgLoss float64 // stored as a negative or zero number

	// ProfitFactor is gross profit / gross loss. math.Inf(1) when there
	// is at least one win and zero losses; 0 when there are no trades.
	ProfitFactor float64

	TotalFees float64

	ExitReasonCounts map[types.ExitReason]int

	// MonthlyReturns maps a "2006-01" key to that month's fractional
	// return on equity.
	MonthlyReturns map[string]float64

	// BuyAndHoldReturnPct is the reference return of simply holding the
	// primary symbol across the run, 0 when not supplied.
	BuyAndHoldReturnPct float64
}

// Results bundles a run's raw ledgers with the derived Summary.
type Results struct {
	EquityCurve []portfolio.EquityPoint
	Trades      []types.Trade
	Fills       []types.Fill
	Summary     Summary
}

// Build derives a Results from a finished portfolio. buyHoldFirstClose
// and buyHoldLastClose are the primary symbol's first and last close
// across the run, used only to compute BuyAndHoldReturnPct; pass 0, 0 to
// omit it.
func Build(pf *portfolio.Portfolio, buyHoldFirstClose, buyHoldLastClose float64) Results {
	s := Summary{
		InitialEquity:    pf.InitialEquity,
		FinalEquity:      pf.Equity,
		NetPnL:           pf.Equity - pf.InitialEquity,
		MaxDrawdownPct:   pf.MaxDrawdown * 100,
		TotalFees:        pf.TotalFees,
		ExitReasonCounts: map[types.ExitReason]int{},
		MonthlyReturns:   monthlyReturns(pf.InitialEquity, pf.EquityCurve),
	}
	if pf.InitialEquity != 0 {
		s.ReturnPct = s.NetPnL / pf.InitialEquity * 100
	}
	if buyHoldFirstClose > 0 {
		s.BuyAndHoldReturnPct = (buyHoldLastClose - buyHoldFirstClose) / buyHoldFirstClose * 100
	}

	var grossProfit, grossLoss float64
	for _, tr := range pf.Trades {
		s.TotalTrades++
		s.ExitReasonCounts[tr.ExitReason]++
		if tr.PnL >= 0 {
			s.WinningTrades++
			grossProfit += tr.PnL
		} else {
			s.LosingTrades++
			grossLoss += -tr.PnL
		}
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(s.TotalTrades)
	}
	if s.WinningTrades > 0 {
		s.AvgWin = grossProfit / float64(s.WinningTrades)
	}
	if s.LosingTrades > 0 {
		s.AvgLoss = -grossLoss / float64(s.LosingTrades)
	}
	switch {
	case s.TotalTrades == 0:
		s.ProfitFactor = 0
	case grossLoss == 0:
		s.ProfitFactor = math.Inf(1)
	default:
		s.ProfitFactor = grossProfit / grossLoss
	}

	return Results{
		EquityCurve: pf.EquityCurve,
		Trades:      pf.Trades,
		Fills:       pf.Fills,
		Summary:     s,
	}
}

// monthlyReturns buckets an equity curve by calendar month and returns
// each month's fractional return relative to the equity carried in from
// the prior month (or initialEquity, for the first).
func monthlyReturns(initialEquity float64, curve []portfolio.EquityPoint) map[string]float64 {
	out := map[string]float64{}
	if len(curve) == 0 {
		return out
	}
	monthStart := initialEquity
	prevEquity := initialEquity
	curMonth := curve[0].Timestamp.Format("2006-01")

	flush := func() {
		if monthStart != 0 {
			out[curMonth] = (prevEquity - monthStart) / monthStart
		}
	}
	for _, pt := range curve {
		m := pt.Timestamp.Format("2006-01")
		if m != curMonth {
			flush()
			curMonth = m
			monthStart = prevEquity
		}
		prevEquity = pt.Equity
	}
	flush()
	return out
}
