package indicator

import "github.com/evdnx/barsim/types"

// RSISmoothing selects the averaging method RSI uses for gains/losses.
type RSISmoothing string

const (
	RSIWilder RSISmoothing = "wilder" // default
	RSISimple RSISmoothing = "simple"
)

// RSI is the relative strength index, 0..100.
type RSI struct {
	Period    int
	Src       Source
	Smoothing RSISmoothing

	havePrev bool
	prev     float64

	// warmup accumulation
	gains, losses []float64 // only used in simple mode, or to seed wilder
	seeded        bool

	avgGain, avgLoss float64
}

// NewRSI constructs an RSI. Smoothing defaults to Wilder when empty.
func NewRSI(period int, src Source, smoothing RSISmoothing) *RSI {
	if smoothing == "" {
		smoothing = RSIWilder
	}
	return &RSI{Period: period, Src: src, Smoothing: smoothing}
}

func (r *RSI) Update(bar types.Bar) {
	v := sourceValue(bar, r.Src)
	if !r.havePrev {
		r.havePrev = true
		r.prev = v
		return
	}
	delta := v - r.prev
	r.prev = v
	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if r.Smoothing == RSISimple {
		r.gains = append(r.gains, gain)
		r.losses = append(r.losses, loss)
		if len(r.gains) > r.Period {
			r.gains = r.gains[1:]
			r.losses = r.losses[1:]
		}
		return
	}

	// Wilder.
	if !r.seeded {
		r.gains = append(r.gains, gain)
		r.losses = append(r.losses, loss)
		if len(r.gains) == r.Period {
			sumG, sumL := 0.0, 0.0
			for i := range r.gains {
				sumG += r.gains[i]
				sumL += r.losses[i]
			}
			r.avgGain = sumG / float64(r.Period)
			r.avgLoss = sumL / float64(r.Period)
			r.seeded = true
		}
		return
	}
	r.avgGain = (r.avgGain*float64(r.Period-1) + gain) / float64(r.Period)
	r.avgLoss = (r.avgLoss*float64(r.Period-1) + loss) / float64(r.Period)
}

func (r *RSI) Value() types.IndicatorValue {
	var avgGain, avgLoss float64
	if r.Smoothing == RSISimple {
		if len(r.gains) < r.Period {
			return notReady()
		}
		sumG, sumL := 0.0, 0.0
		for i := range r.gains {
			sumG += r.gains[i]
			sumL += r.losses[i]
		}
		avgGain = sumG / float64(r.Period)
		avgLoss = sumL / float64(r.Period)
	} else {
		if !r.seeded {
			return notReady()
		}
		avgGain, avgLoss = r.avgGain, r.avgLoss
	}

	if avgLoss == 0 {
		if avgGain == 0 {
			return scalar(50)
		}
		return scalar(100)
	}
	rs := avgGain / avgLoss
	return scalar(100 - 100/(1+rs))
}
