package indicator

import "github.com/evdnx/barsim/types"

// SMA is the arithmetic mean of the last Period sources.
type SMA struct {
	Period int
	Src    Source

	window []float64
	sum    float64
}

// NewSMA constructs an SMA reading the given source.
func NewSMA(period int, src Source) *SMA {
	return &SMA{Period: period, Src: src}
}

func (s *SMA) Update(bar types.Bar) {
	v := sourceValue(bar, s.Src)
	s.window = append(s.window, v)
	s.sum += v
	if len(s.window) > s.Period {
		s.sum -= s.window[0]
		s.window = s.window[1:]
	}
}

func (s *SMA) Value() types.IndicatorValue {
	if len(s.window) < s.Period {
		return notReady()
	}
	return scalar(s.sum / float64(s.Period))
}

// ready reports whether the window is full.
func (s *SMA) ready() bool {
	return len(s.window) >= s.Period
}
