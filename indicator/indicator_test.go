package indicator

import (
	"testing"
	"time"

	"github.com/evdnx/barsim/types"
)

func bar(t time.Time, o, h, l, c, v float64) types.Bar {
	return types.Bar{Timestamp: t, Open: o, High: h, Low: l, Close: c, Volume: v}
}

func feed(ind Indicator, bars []types.Bar) {
	for _, b := range bars {
		ind.Update(b)
	}
}

func TestSMAWarmupAndValue(t *testing.T) {
	sma := NewSMA(3, SourceClose)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := []types.Bar{
		bar(base, 1, 1, 1, 1, 1),
		bar(base.Add(time.Minute), 2, 2, 2, 2, 1),
	}
	feed(sma, bars)
	if sma.Value().Ok {
		t.Fatal("expected warmup incomplete after 2 of 3 samples")
	}
	sma.Update(bar(base.Add(2*time.Minute), 3, 3, 3, 3, 1))
	v := sma.Value()
	if !v.Ok || v.Scalar != 2 {
		t.Fatalf("expected mean 2, got %+v", v)
	}
}

func TestEMASeedsWithSMA(t *testing.T) {
	ema := NewEMA(3, SourceClose)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := []float64{1, 2, 3}
	for i, v := range vals {
		ema.Update(bar(base.Add(time.Duration(i)*time.Minute), v, v, v, v, 1))
	}
	got := ema.Value()
	if !got.Ok || got.Scalar != 2 {
		t.Fatalf("expected seeded EMA = SMA = 2, got %+v", got)
	}
	ema.Update(bar(base.Add(3*time.Minute), 4, 4, 4, 4, 1))
	alpha := 2.0 / 4.0
	want := alpha*4 + (1-alpha)*2
	got = ema.Value()
	if got.Scalar != want {
		t.Fatalf("got %v want %v", got.Scalar, want)
	}
}

func TestOBVAccumulates(t *testing.T) {
	obv := NewOBV()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	obv.Update(bar(base, 10, 10, 10, 10, 100))
	obv.Update(bar(base.Add(time.Minute), 11, 11, 11, 11, 50)) // up
	obv.Update(bar(base.Add(2*time.Minute), 10, 10, 10, 10, 20)) // down
	obv.Update(bar(base.Add(3*time.Minute), 10, 10, 10, 10, 5))  // flat
	v := obv.Value()
	want := 50.0 - 20.0
	if !v.Ok || v.Scalar != want {
		t.Fatalf("got %+v want %v", v, want)
	}
}

func TestVWAPResetsAtUTCMidnight(t *testing.T) {
	w := NewVWAP()
	day1 := time.Date(2026, 1, 1, 23, 59, 0, 0, time.UTC)
	day2 := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	w.Update(bar(day1, 100, 100, 100, 100, 10))
	afterDay1 := w.Value().Scalar
	w.Update(bar(day2, 200, 200, 200, 200, 10))
	afterDay2 := w.Value().Scalar
	if afterDay2 != 200 {
		t.Fatalf("expected VWAP to reset to the new day's typical price, got %v (was %v)", afterDay2, afterDay1)
	}
}

func TestS5ResamplerLikeIndicatorWarmupExample(t *testing.T) {
	// Fifteen 1m bars each worth i (0..14) feeding an SMA(15) mirrors the
	// resampler's 15-bar bucket from S5: the 15th update completes it.
	sma := NewSMA(15, SourceClose)
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		sma.Update(bar(base.Add(time.Duration(i)*time.Minute), float64(i), float64(i), float64(i), float64(i), 1))
		if sma.Value().Ok {
			t.Fatalf("expected warmup incomplete at bar %d", i)
		}
	}
	sma.Update(bar(base.Add(14*time.Minute), 14, 14, 14, 14, 1))
	if !sma.Value().Ok {
		t.Fatal("expected SMA ready after 15 bars")
	}
}
