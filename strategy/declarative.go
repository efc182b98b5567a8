package strategy

import (
	"fmt"

	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/types"
)

// ConditionKind names one of the eight comparison shapes a declarative
// condition may take.
type ConditionKind string

const (
	Crossover      ConditionKind = "crossover"       // fast crosses above slow this bar
	Crossunder     ConditionKind = "crossunder"      // fast crosses below slow this bar
	Above          ConditionKind = "above"           // left > right, no cross requirement
	Below          ConditionKind = "below"           // left < right, no cross requirement
	AboveThreshold ConditionKind = "above_threshold" // indicator > threshold
	BelowThreshold ConditionKind = "below_threshold" // indicator < threshold
	CrossesAbove   ConditionKind = "crosses_above"   // indicator crosses above threshold this bar
	CrossesBelow   ConditionKind = "crosses_below"   // indicator crosses below threshold this bar
)

// Condition is one leaf of a declarative entry rule. Fast/Slow/Left/Right
// name an indicator, a bar pseudo-operand ("bar.open"/"bar.high"/
// "bar.low"/"bar.close"), or are left empty when Indicator+Threshold is
// used instead.
type Condition struct {
	Kind      ConditionKind
	Fast      string
	Slow      string
	Left      string
	Right     string
	Indicator string
	Threshold float64
}

// ExitConfig carries the percentage exit fields forwarded verbatim onto
// every order the declarative strategy emits.
type ExitConfig struct {
	TPPct             *float64
	SLPct             *float64
	BETriggerPct      *float64
	BELockPct         *float64
	TrailPct          *float64
	TrailActivatePct  *float64
	PartialTPPct      *float64
	PartialTPNewTPPct *float64
}

// DeclarativeConfig is the whole condition-tree configuration for
// strategy.Declarative: AND-ed entry conditions per side and the exit
// percentages to stamp onto orders. Declarative does not read
// Indicators; the engine builds its indicators from
// EngineConfig.Indicators only, so every operand a condition names must
// be configured there.
type DeclarativeConfig struct {
	Indicators map[string]config.IndicatorSpec
	EntryLong  []Condition
	EntryShort []Condition
	Exit       ExitConfig
	SizeUSD    *float64 // nil defers to the engine's sizer/DefaultSizeUSD
	Group      string
}

// Declarative interprets a DeclarativeConfig's condition tree against
// bar/indicator values every bar, AND-ing each side's conditions and
// emitting a single MARKET order carrying the configured exit
// percentages whenever a side's conditions are all satisfied and the
// opposite side isn't also signaling (ambiguous bars emit nothing).
type Declarative struct {
	Base
	cfg DeclarativeConfig
	hist *history
}

// NewDeclarative constructs a Declarative strategy from its condition
// tree. Construction only checks that at least one side has conditions;
// condition kinds and operand names are not checked, and an unknown kind
// or unresolvable operand evaluates to false. Configure is Base's no-op.
func NewDeclarative(cfg DeclarativeConfig) (*Declarative, error) {
	if len(cfg.EntryLong) == 0 && len(cfg.EntryShort) == 0 {
		return nil, fmt.Errorf("declarative strategy: at least one of EntryLong/EntryShort must be non-empty")
	}
	return &Declarative{cfg: cfg, hist: newHistory()}, nil
}

// operand resolves a condition operand name to its current value: an
// indicator name looked up in indicators, a bar.* pseudo-name read off
// bar, or a bare float64 literal parsed from the name itself.
func operand(name string, bar types.Bar, indicators map[string]types.IndicatorValue) (float64, bool) {
	switch name {
	case "bar.open":
		return bar.Open, true
	case "bar.high":
		return bar.High, true
	case "bar.low":
		return bar.Low, true
	case "bar.close":
		return bar.Close, true
	}
	if iv, ok := indicators[name]; ok && iv.Ok {
		return iv.Scalar, true
	}
	var lit float64
	if _, err := fmt.Sscanf(name, "%g", &lit); err == nil {
		return lit, true
	}
	return 0, false
}

// evalCondition evaluates one condition against the current bar's
// operands and the rolling two-sample history needed for cross tests.
func evalCondition(c Condition, bar types.Bar, indicators map[string]types.IndicatorValue, hist *history) bool {
	switch c.Kind {
	case Above, Below:
		l, lok := operand(c.Left, bar, indicators)
		r, rok := operand(c.Right, bar, indicators)
		if !lok || !rok {
			return false
		}
		if c.Kind == Above {
			return l > r
		}
		return l < r

	case Crossover, Crossunder:
		fCur, fok := operand(c.Fast, bar, indicators)
		sCur, sok := operand(c.Slow, bar, indicators)
		if !fok || !sok {
			return false
		}
		hist.Observe(c.Fast, fCur)
		hist.Observe(c.Slow, sCur)
		fPrev, fpok := hist.Previous(c.Fast)
		sPrev, spok := hist.Previous(c.Slow)
		if !fpok || !spok {
			return false
		}
		if c.Kind == Crossover {
			return fPrev <= sPrev && fCur > sCur
		}
		return fPrev >= sPrev && fCur < sCur

	case AboveThreshold, BelowThreshold:
		v, ok := operand(c.Indicator, bar, indicators)
		if !ok {
			return false
		}
		if c.Kind == AboveThreshold {
			return v > c.Threshold
		}
		return v < c.Threshold

	case CrossesAbove, CrossesBelow:
		v, ok := operand(c.Indicator, bar, indicators)
		if !ok {
			return false
		}
		hist.Observe(c.Indicator, v)
		prev, pok := hist.Previous(c.Indicator)
		if !pok {
			return false
		}
		if c.Kind == CrossesAbove {
			return prev <= c.Threshold && v > c.Threshold
		}
		return prev >= c.Threshold && v < c.Threshold
	}
	return false
}

func allSatisfied(conds []Condition, bar types.Bar, indicators map[string]types.IndicatorValue, hist *history) bool {
	if len(conds) == 0 {
		return false
	}
	for _, c := range conds {
		if !evalCondition(c, bar, indicators, hist) {
			return false
		}
	}
	return true
}

func (d *Declarative) order(side types.Side) types.Order {
	o := types.Order{
		Kind:              types.Market,
		Side:              side,
		Group:             d.cfg.Group,
		Size:              d.cfg.SizeUSD,
		TPPct:             d.cfg.Exit.TPPct,
		SLPct:             d.cfg.Exit.SLPct,
		BETriggerPct:      d.cfg.Exit.BETriggerPct,
		BELockPct:         d.cfg.Exit.BELockPct,
		TrailPct:          d.cfg.Exit.TrailPct,
		TrailActivatePct:  d.cfg.Exit.TrailActivatePct,
		PartialTPPct:      d.cfg.Exit.PartialTPPct,
		PartialTPNewTPPct: d.cfg.Exit.PartialTPNewTPPct,
	}
	return o
}

// OnBar evaluates EntryLong and EntryShort; a bar where both (or
// neither) fire emits nothing, since a simultaneous long+short signal is
// ambiguous and silently dropped rather than guessed at.
func (d *Declarative) OnBar(bar types.Bar, indicators map[string]types.IndicatorValue, positions []types.Position) []types.Order {
	long := allSatisfied(d.cfg.EntryLong, bar, indicators, d.hist)
	short := allSatisfied(d.cfg.EntryShort, bar, indicators, d.hist)
	if long == short {
		return nil
	}
	if long {
		return []types.Order{d.order(types.Long)}
	}
	return []types.Order{d.order(types.Short)}
}
