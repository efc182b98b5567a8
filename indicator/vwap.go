package indicator

import "github.com/evdnx/barsim/types"

// VWAP is the running volume-weighted average price, resetting at each
// UTC midnight boundary. The reset is inclusive of the bar that crosses
// the boundary: that bar starts the new day's accumulation (see
// DESIGN.md for the rationale — spec.md §9 leaves this ambiguous).
type VWAP struct {
	haveDay    bool
	day        int // Unix day number in UTC
	sumPV      float64
	sumV       float64
	lastValue  float64
	ready      bool
}

// NewVWAP constructs a VWAP indicator.
func NewVWAP() *VWAP {
	return &VWAP{}
}

func (w *VWAP) Update(bar types.Bar) {
	day := int(bar.Timestamp.UTC().Unix() / 86400)
	if !w.haveDay || day != w.day {
		w.haveDay = true
		w.day = day
		w.sumPV = 0
		w.sumV = 0
	}
	typical := (bar.High + bar.Low + bar.Close) / 3
	w.sumPV += typical * bar.Volume
	w.sumV += bar.Volume
	if w.sumV != 0 {
		w.lastValue = w.sumPV / w.sumV
		w.ready = true
	}
}

func (w *VWAP) Value() types.IndicatorValue {
	if !w.ready {
		return notReady()
	}
	return scalar(w.lastValue)
}
