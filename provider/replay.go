package provider

import (
	"time"

	"github.com/evdnx/barsim/types"
)

// ReplayProvider wraps another BarProvider and sleeps Interval between
// successive Next calls, giving a live-feed feel to a historical stream
// for demos and manual step-through; never used by Engine itself, which
// always drains a provider as fast as it can.
type ReplayProvider struct {
	inner    BarProvider
	Interval time.Duration
	started  bool
}

// NewReplay wraps inner, pacing Next calls by interval.
func NewReplay(inner BarProvider, interval time.Duration) *ReplayProvider {
	return &ReplayProvider{inner: inner, Interval: interval}
}

func (r *ReplayProvider) Next() (types.Bar, bool, error) {
	if r.started {
		time.Sleep(r.Interval)
	}
	r.started = true
	return r.inner.Next()
}

func (r *ReplayProvider) Reset() error {
	r.started = false
	return r.inner.Reset()
}

func (r *ReplayProvider) Symbol() string    { return r.inner.Symbol() }
func (r *ReplayProvider) Timeframe() string { return r.inner.Timeframe() }
