package results

import (
	"math"
	"testing"
	"time"

	"github.com/evdnx/barsim/execution"
	"github.com/evdnx/barsim/portfolio"
	"github.com/evdnx/barsim/types"
)

func openAndClose(pf *portfolio.Portfolio, entry, exit float64, reason types.ExitReason, ts time.Time) {
	order := types.Order{Kind: types.Market, Side: types.Long}
	bar := types.Bar{Timestamp: ts, Open: entry, High: entry, Low: entry, Close: entry, Symbol: "BTCUSD"}
	pf.OpenPosition(bar, order, 1000, nil, false)
	pf.ClosePosition(len(pf.Positions)-1, ts.Add(time.Minute), exit, reason, false)
	pf.RecordEquitySample(ts.Add(time.Minute))
}

func TestBuildComputesWinRateAndProfitFactor(t *testing.T) {
	pf := portfolio.New(execution.Model{}, 10000, 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	openAndClose(pf, 100, 110, types.TakeProfit, base)
	openAndClose(pf, 100, 95, types.StopLoss, base.Add(time.Hour))

	r := Build(pf, 0, 0)
	if r.Summary.TotalTrades != 2 {
		t.Fatalf("TotalTrades = %d, want 2", r.Summary.TotalTrades)
	}
	if r.Summary.WinningTrades != 1 || r.Summary.LosingTrades != 1 {
		t.Fatalf("win/loss = %d/%d, want 1/1", r.Summary.WinningTrades, r.Summary.LosingTrades)
	}
	if r.Summary.WinRate != 0.5 {
		t.Fatalf("WinRate = %v, want 0.5", r.Summary.WinRate)
	}
	if r.Summary.ExitReasonCounts[types.TakeProfit] != 1 || r.Summary.ExitReasonCounts[types.StopLoss] != 1 {
		t.Fatalf("unexpected exit reason counts: %+v", r.Summary.ExitReasonCounts)
	}
}

func TestBuildProfitFactorInfiniteWithNoLosses(t *testing.T) {
	pf := portfolio.New(execution.Model{}, 10000, 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	openAndClose(pf, 100, 110, types.TakeProfit, base)

	r := Build(pf, 0, 0)
	if !math.IsInf(r.Summary.ProfitFactor, 1) {
		t.Fatalf("ProfitFactor = %v, want +Inf", r.Summary.ProfitFactor)
	}
}

func TestBuildProfitFactorZeroWithNoTrades(t *testing.T) {
	pf := portfolio.New(execution.Model{}, 10000, 10)
	r := Build(pf, 0, 0)
	if r.Summary.ProfitFactor != 0 {
		t.Fatalf("ProfitFactor = %v, want 0", r.Summary.ProfitFactor)
	}
	if r.Summary.TotalTrades != 0 {
		t.Fatalf("expected zero trades")
	}
}

func TestBuildReturnPctAndBuyAndHold(t *testing.T) {
	pf := portfolio.New(execution.Model{}, 10000, 10)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	openAndClose(pf, 100, 120, types.TakeProfit, base)

	r := Build(pf, 100, 150)
	// 1000 notional gaining 20% is +200 on 10000 equity: a 2% return.
	if diff := r.Summary.ReturnPct - 2.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("ReturnPct = %v, want ~2", r.Summary.ReturnPct)
	}
	if diff := r.Summary.BuyAndHoldReturnPct - 50.0; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("BuyAndHoldReturnPct = %v, want 50", r.Summary.BuyAndHoldReturnPct)
	}
}

func TestMonthlyReturnsBucketsByCalendarMonth(t *testing.T) {
	pf := portfolio.New(execution.Model{}, 10000, 10)
	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	openAndClose(pf, 100, 110, types.TakeProfit, jan)
	openAndClose(pf, 100, 90, types.StopLoss, feb)

	r := Build(pf, 0, 0)
	if _, ok := r.Summary.MonthlyReturns["2024-01"]; !ok {
		t.Fatalf("expected a 2024-01 bucket, got %v", r.Summary.MonthlyReturns)
	}
	if _, ok := r.Summary.MonthlyReturns["2024-02"]; !ok {
		t.Fatalf("expected a 2024-02 bucket, got %v", r.Summary.MonthlyReturns)
	}
	if r.Summary.MonthlyReturns["2024-01"] <= 0 {
		t.Fatalf("expected a positive January return, got %v", r.Summary.MonthlyReturns["2024-01"])
	}
	if r.Summary.MonthlyReturns["2024-02"] >= 0 {
		t.Fatalf("expected a negative February return, got %v", r.Summary.MonthlyReturns["2024-02"])
	}
}
