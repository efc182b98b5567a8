package indicator

import "github.com/evdnx/barsim/types"

// MACD is moving-average convergence/divergence: macd, signal and
// histogram.
type MACD struct {
	FastPeriod   int
	SlowPeriod   int
	SignalPeriod int
	Src          Source

	fast, slow, signal *emaCore
}

// NewMACD constructs a MACD indicator.
func NewMACD(fast, slow, signalPeriod int, src Source) *MACD {
	return &MACD{
		FastPeriod:   fast,
		SlowPeriod:   slow,
		SignalPeriod: signalPeriod,
		Src:          src,
		fast:         newEMACore(fast),
		slow:         newEMACore(slow),
		signal:       newEMACore(signalPeriod),
	}
}

func (m *MACD) Update(bar types.Bar) {
	v := sourceValue(bar, m.Src)
	m.fast.update(v)
	m.slow.update(v)
	if m.fast.ready && m.slow.ready {
		macd := m.fast.value - m.slow.value
		m.signal.update(macd)
	}
}

func (m *MACD) Value() types.IndicatorValue {
	if !m.fast.ready || !m.slow.ready || !m.signal.ready {
		return notReady()
	}
	macd := m.fast.value - m.slow.value
	signal := m.signal.value
	return record(map[string]float64{
		"macd":   macd,
		"signal": signal,
		"hist":   macd - signal,
	})
}
