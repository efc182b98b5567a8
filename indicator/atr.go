package indicator

import "github.com/evdnx/barsim/types"

// ATRSmoothing selects how ATR averages true range over Period.
type ATRSmoothing string

const (
	ATRWilder ATRSmoothing = "wilder" // default
	ATRSMA    ATRSmoothing = "sma"
)

// ATR is the average true range.
type ATR struct {
	Period    int
	Smoothing ATRSmoothing

	havePrevClose bool
	prevClose     float64

	trs    []float64
	seeded bool
	avg    float64
}

// NewATR constructs an ATR. Smoothing defaults to Wilder when empty.
func NewATR(period int, smoothing ATRSmoothing) *ATR {
	if smoothing == "" {
		smoothing = ATRWilder
	}
	return &ATR{Period: period, Smoothing: smoothing}
}

func trueRange(bar types.Bar, havePrev bool, prevClose float64) float64 {
	tr := bar.High - bar.Low
	if havePrev {
		if d := bar.High - prevClose; d < 0 {
			d = -d
			if d > tr {
				tr = d
			}
		} else if d > tr {
			tr = d
		}
		if d := bar.Low - prevClose; d < 0 {
			d = -d
			if d > tr {
				tr = d
			}
		} else if d > tr {
			tr = d
		}
	}
	return tr
}

func (a *ATR) Update(bar types.Bar) {
	tr := trueRange(bar, a.havePrevClose, a.prevClose)
	a.havePrevClose = true
	a.prevClose = bar.Close

	if a.Smoothing == ATRSMA {
		a.trs = append(a.trs, tr)
		if len(a.trs) > a.Period {
			a.trs = a.trs[1:]
		}
		return
	}

	// Wilder.
	if !a.seeded {
		a.trs = append(a.trs, tr)
		if len(a.trs) == a.Period {
			sum := 0.0
			for _, v := range a.trs {
				sum += v
			}
			a.avg = sum / float64(a.Period)
			a.seeded = true
		}
		return
	}
	a.avg = (a.avg*float64(a.Period-1) + tr) / float64(a.Period)
}

func (a *ATR) Value() types.IndicatorValue {
	if a.Smoothing == ATRSMA {
		if len(a.trs) < a.Period {
			return notReady()
		}
		sum := 0.0
		for _, v := range a.trs {
			sum += v
		}
		return scalar(sum / float64(a.Period))
	}
	if !a.seeded {
		return notReady()
	}
	return scalar(a.avg)
}
