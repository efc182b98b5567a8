package indicator

import (
	"fmt"

	"github.com/evdnx/barsim/config"
)

func sourceOf(s string) Source {
	switch s {
	case "open":
		return SourceOpen
	case "high":
		return SourceHigh
	case "low":
		return SourceLow
	default:
		return SourceClose
	}
}

// New builds an Indicator from a validated config.IndicatorSpec.
func New(spec config.IndicatorSpec) (Indicator, error) {
	src := sourceOf(spec.Source)
	switch spec.Kind {
	case config.KindSMA:
		return NewSMA(spec.Period, src), nil
	case config.KindEMA:
		return NewEMA(spec.Period, src), nil
	case config.KindRSI:
		mode := RSISmoothing(spec.Smoothing)
		return NewRSI(spec.Period, src, mode), nil
	case config.KindATR:
		mode := ATRSmoothing(spec.Smoothing)
		return NewATR(spec.Period, mode), nil
	case config.KindCHOP:
		mode := ATRSmoothing(spec.Smoothing)
		return NewCHOP(spec.Period, mode), nil
	case config.KindBollinger:
		numStd := spec.NumStd
		if numStd == 0 {
			numStd = 2
		}
		return NewBollinger(spec.Period, numStd, src), nil
	case config.KindMACD:
		return NewMACD(spec.FastPeriod, spec.SlowPeriod, spec.SignalPeriod, src), nil
	case config.KindStochastic:
		return NewStochastic(spec.KPeriod, spec.SmoothK, spec.DPeriod), nil
	case config.KindVWAP:
		return NewVWAP(), nil
	case config.KindOBV:
		return NewOBV(), nil
	default:
		return nil, fmt.Errorf("indicator: unknown kind %q", spec.Kind)
	}
}
