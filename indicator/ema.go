package indicator

import "github.com/evdnx/barsim/types"

// emaCore is the bare recurrence used by EMA and, internally, by MACD's
// signal line: seed with the SMA of the first Period samples, then
// recurse v <- alpha*x + (1-alpha)*v.
type emaCore struct {
	period int
	alpha  float64

	count int
	seed  float64
	value float64
	ready bool
}

func newEMACore(period int) *emaCore {
	return &emaCore{period: period, alpha: 2 / (float64(period) + 1)}
}

func (e *emaCore) update(x float64) {
	e.count++
	if !e.ready {
		e.seed += x
		if e.count == e.period {
			e.value = e.seed / float64(e.period)
			e.ready = true
		}
		return
	}
	e.value = e.alpha*x + (1-e.alpha)*e.value
}

// EMA is the bar-driven exponential moving average.
type EMA struct {
	Period int
	Src    Source

	core *emaCore
}

// NewEMA constructs an EMA reading the given source.
func NewEMA(period int, src Source) *EMA {
	return &EMA{Period: period, Src: src, core: newEMACore(period)}
}

func (e *EMA) Update(bar types.Bar) {
	e.core.update(sourceValue(bar, e.Src))
}

func (e *EMA) Value() types.IndicatorValue {
	if !e.core.ready {
		return notReady()
	}
	return scalar(e.core.value)
}
