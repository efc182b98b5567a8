package indicator

import "github.com/evdnx/barsim/types"

// Stochastic is the slow stochastic oscillator: %K and %D.
type Stochastic struct {
	KPeriod  int
	SmoothK  int
	DPeriod  int

	highs, lows []float64
	rawK        []float64
	k           []float64
}

// NewStochastic constructs a Stochastic oscillator.
func NewStochastic(kPeriod, smoothK, dPeriod int) *Stochastic {
	return &Stochastic{KPeriod: kPeriod, SmoothK: smoothK, DPeriod: dPeriod}
}

func (s *Stochastic) Update(bar types.Bar) {
	s.highs = append(s.highs, bar.High)
	s.lows = append(s.lows, bar.Low)
	if len(s.highs) > s.KPeriod {
		s.highs = s.highs[1:]
		s.lows = s.lows[1:]
	}
	if len(s.highs) < s.KPeriod {
		return
	}
	hhigh, llow := s.highs[0], s.lows[0]
	for i := 1; i < len(s.highs); i++ {
		if s.highs[i] > hhigh {
			hhigh = s.highs[i]
		}
		if s.lows[i] < llow {
			llow = s.lows[i]
		}
	}
	raw := 0.0
	if hhigh != llow {
		raw = 100 * (bar.Close - llow) / (hhigh - llow)
	}
	s.rawK = append(s.rawK, raw)
	if len(s.rawK) > s.SmoothK {
		s.rawK = s.rawK[1:]
	}
	if len(s.rawK) < s.SmoothK {
		return
	}
	sum := 0.0
	for _, v := range s.rawK {
		sum += v
	}
	k := sum / float64(s.SmoothK)
	s.k = append(s.k, k)
	if len(s.k) > s.DPeriod {
		s.k = s.k[1:]
	}
}

func (s *Stochastic) Value() types.IndicatorValue {
	if len(s.k) == 0 || len(s.rawK) < s.SmoothK {
		return notReady()
	}
	k := s.k[len(s.k)-1]
	if len(s.k) < s.DPeriod {
		return notReady()
	}
	sum := 0.0
	for _, v := range s.k {
		sum += v
	}
	d := sum / float64(s.DPeriod)
	return record(map[string]float64{"k": k, "d": d})
}
