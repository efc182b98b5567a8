package indicator

import (
	"math"

	"github.com/evdnx/barsim/types"
)

// Bollinger produces upper/middle/lower bands, bandwidth and %B.
type Bollinger struct {
	Period int
	NumStd float64
	Src    Source

	window []float64
}

// NewBollinger constructs a Bollinger Bands indicator.
func NewBollinger(period int, numStd float64, src Source) *Bollinger {
	return &Bollinger{Period: period, NumStd: numStd, Src: src}
}

func (b *Bollinger) Update(bar types.Bar) {
	v := sourceValue(bar, b.Src)
	b.window = append(b.window, v)
	if len(b.window) > b.Period {
		b.window = b.window[1:]
	}
}

func (b *Bollinger) Value() types.IndicatorValue {
	if len(b.window) < b.Period {
		return notReady()
	}
	sum := 0.0
	for _, v := range b.window {
		sum += v
	}
	mean := sum / float64(b.Period)
	sqSum := 0.0
	for _, v := range b.window {
		d := v - mean
		sqSum += d * d
	}
	std := math.Sqrt(sqSum / float64(b.Period))

	upper := mean + b.NumStd*std
	lower := mean - b.NumStd*std
	bandwidth := 0.0
	pctB := 0.0
	if mean != 0 {
		bandwidth = (upper - lower) / mean
	}
	if upper != lower {
		price := b.window[len(b.window)-1]
		pctB = (price - lower) / (upper - lower)
	}

	return record(map[string]float64{
		"upper":     upper,
		"middle":    mean,
		"lower":     lower,
		"bandwidth": bandwidth,
		"pct_b":     pctB,
	})
}
