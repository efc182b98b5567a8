package indicator

import "github.com/evdnx/barsim/types"

// OBV is the running on-balance volume.
type OBV struct {
	haveClose bool
	prevClose float64
	value     float64
	ready     bool
}

// NewOBV constructs an OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Update(bar types.Bar) {
	if o.haveClose {
		switch {
		case bar.Close > o.prevClose:
			o.value += bar.Volume
		case bar.Close < o.prevClose:
			o.value -= bar.Volume
		}
	}
	o.haveClose = true
	o.prevClose = bar.Close
	o.ready = true
}

func (o *OBV) Value() types.IndicatorValue {
	if !o.ready {
		return notReady()
	}
	return scalar(o.value)
}
