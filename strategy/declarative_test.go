package strategy

import (
	"testing"
	"time"

	"github.com/evdnx/barsim/types"
)

func ind(v float64) types.IndicatorValue { return types.IndicatorValue{Ok: true, Scalar: v} }

func TestDeclarativeCrossoverFires(t *testing.T) {
	d, err := NewDeclarative(DeclarativeConfig{
		EntryLong: []Condition{{Kind: Crossover, Fast: "fast", Slow: "slow"}},
	})
	if err != nil {
		t.Fatalf("NewDeclarative: %v", err)
	}
	bar := types.Bar{Timestamp: time.Unix(0, 0)}

	// Bar 1: fast below slow, establishes history, no fire possible yet.
	orders := d.OnBar(bar, map[string]types.IndicatorValue{"fast": ind(9), "slow": ind(10)}, nil)
	if len(orders) != 0 {
		t.Fatalf("expected no order on first bar, got %d", len(orders))
	}

	// Bar 2: fast crosses above slow -> LONG order.
	orders = d.OnBar(bar, map[string]types.IndicatorValue{"fast": ind(11), "slow": ind(10)}, nil)
	if len(orders) != 1 || orders[0].Side != types.Long {
		t.Fatalf("expected one LONG order, got %+v", orders)
	}

	// Bar 3: no further cross -> nothing.
	orders = d.OnBar(bar, map[string]types.IndicatorValue{"fast": ind(12), "slow": ind(10)}, nil)
	if len(orders) != 0 {
		t.Fatalf("expected no order absent a fresh cross, got %d", len(orders))
	}
}

func TestDeclarativeAmbiguousBarEmitsNothing(t *testing.T) {
	d, err := NewDeclarative(DeclarativeConfig{
		EntryLong:  []Condition{{Kind: AboveThreshold, Indicator: "rsi", Threshold: 30}},
		EntryShort: []Condition{{Kind: BelowThreshold, Indicator: "rsi", Threshold: 70}},
	})
	if err != nil {
		t.Fatalf("NewDeclarative: %v", err)
	}
	bar := types.Bar{Timestamp: time.Unix(0, 0)}
	orders := d.OnBar(bar, map[string]types.IndicatorValue{"rsi": ind(50)}, nil)
	if len(orders) != 0 {
		t.Fatalf("expected ambiguous long+short bar to emit nothing, got %+v", orders)
	}
}

func TestDeclarativeExitPercentagesCarried(t *testing.T) {
	tp := types.F64(0.05)
	sl := types.F64(0.02)
	d, err := NewDeclarative(DeclarativeConfig{
		EntryLong: []Condition{{Kind: AboveThreshold, Indicator: "rsi", Threshold: 30}},
		Exit:      ExitConfig{TPPct: tp, SLPct: sl},
		Group:     "trend",
	})
	if err != nil {
		t.Fatalf("NewDeclarative: %v", err)
	}
	bar := types.Bar{Timestamp: time.Unix(0, 0)}
	orders := d.OnBar(bar, map[string]types.IndicatorValue{"rsi": ind(80)}, nil)
	if len(orders) != 1 {
		t.Fatalf("expected one order, got %d", len(orders))
	}
	o := orders[0]
	if o.TPPct == nil || *o.TPPct != 0.05 || o.SLPct == nil || *o.SLPct != 0.02 {
		t.Fatalf("expected exit percentages carried onto order, got %+v", o)
	}
	if o.Group != "trend" {
		t.Fatalf("expected group 'trend', got %q", o.Group)
	}
}
