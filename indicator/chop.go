package indicator

import "github.com/evdnx/barsim/types"

// CHOP is ATR(Period) expressed as a ratio of the close price.
type CHOP struct {
	atr       *ATR
	lastClose float64
}

// NewCHOP constructs a CHOP indicator. Smoothing defaults to Wilder when
// empty, matching ATR's default.
func NewCHOP(period int, smoothing ATRSmoothing) *CHOP {
	return &CHOP{atr: NewATR(period, smoothing)}
}

func (c *CHOP) Update(bar types.Bar) {
	c.atr.Update(bar)
	c.lastClose = bar.Close
}

func (c *CHOP) Value() types.IndicatorValue {
	v := c.atr.Value()
	if !v.Ok || c.lastClose == 0 {
		return notReady()
	}
	return scalar(v.Scalar / c.lastClose)
}
