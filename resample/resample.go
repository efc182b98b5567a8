// Package resample folds a 1-minute bar stream into higher-timeframe
// bars at deterministic, epoch-aligned bucket boundaries, so resampling
// is reproducible regardless of the stream's start time.
package resample

import (
	"fmt"
	"time"

	"github.com/evdnx/barsim/types"
)

// Duration returns the bucket width for a supported higher timeframe
// label, or an error for anything else.
func Duration(timeframe string) (time.Duration, error) {
	switch timeframe {
	case "5m":
		return 5 * time.Minute, nil
	case "15m":
		return 15 * time.Minute, nil
	case "30m":
		return 30 * time.Minute, nil
	case "1h":
		return time.Hour, nil
	case "2h":
		return 2 * time.Hour, nil
	case "4h":
		return 4 * time.Hour, nil
	case "1d":
		return 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("resample: unsupported timeframe %q", timeframe)
	}
}

func bucketStart(ts time.Time, d time.Duration) time.Time {
	secs := ts.UTC().Unix()
	width := int64(d / time.Second)
	start := (secs / width) * width
	return time.Unix(start, 0).UTC()
}

// Resampler accumulates 1m bars into one higher timeframe, emitting a
// completed bar each time an arriving bar's bucket differs from the
// in-progress one.
type Resampler struct {
	Timeframe string
	width     time.Duration

	haveBucket  bool
	bucketStart time.Time
	open        float64
	high        float64
	low         float64
	close       float64
	volume      float64
	symbol      string
}

// New constructs a Resampler for the given higher timeframe label.
func New(timeframe string) (*Resampler, error) {
	d, err := Duration(timeframe)
	if err != nil {
		return nil, err
	}
	return &Resampler{Timeframe: timeframe, width: d}, nil
}

// Update folds in one 1m bar. It returns the just-completed
// higher-timeframe bar and true when the arriving bar starts a new
// bucket; otherwise it returns the zero value and false.
func (r *Resampler) Update(bar types.Bar) (types.Bar, bool) {
	bucket := bucketStart(bar.Timestamp, r.width)

	if !r.haveBucket {
		r.startBucket(bucket, bar)
		return types.Bar{}, false
	}

	if bucket.Equal(r.bucketStart) {
		r.high = max(r.high, bar.High)
		r.low = min(r.low, bar.Low)
		r.close = bar.Close
		r.volume += bar.Volume
		return types.Bar{}, false
	}

	completed := types.Bar{
		Timestamp: r.bucketStart,
		Open:      r.open,
		High:      r.high,
		Low:       r.low,
		Close:     r.close,
		Volume:    r.volume,
		Symbol:    r.symbol,
		Timeframe: r.Timeframe,
	}
	r.startBucket(bucket, bar)
	return completed, true
}

func (r *Resampler) startBucket(bucket time.Time, bar types.Bar) {
	r.haveBucket = true
	r.bucketStart = bucket
	r.open = bar.Open
	r.high = bar.High
	r.low = bar.Low
	r.close = bar.Close
	r.volume = bar.Volume
	r.symbol = bar.Symbol
}
