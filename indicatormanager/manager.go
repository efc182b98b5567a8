// Package indicatormanager owns every configured indicator and the
// per-timeframe resamplers feeding the non-1m ones, and guarantees the
// no-look-ahead timing discipline spec.md §4.4 requires: a value visible
// at bar T is a pure function of bars [0..T].
package indicatormanager

import (
	"fmt"

	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/indicator"
	"github.com/evdnx/barsim/resample"
	"github.com/evdnx/barsim/types"
)

// Manager routes each incoming 1m bar to the right indicators, resampling
// into higher timeframes as needed.
type Manager struct {
	timeframes map[string]string // indicator name -> timeframe ("1m" default)
	indicators map[string]indicator.Indicator
	resamplers map[string]*resample.Resampler // timeframe -> resampler
}

// New builds a Manager from a validated spec map (see
// config.EngineConfig.Indicators).
func New(specs map[string]config.IndicatorSpec) (*Manager, error) {
	m := &Manager{
		timeframes: map[string]string{},
		indicators: map[string]indicator.Indicator{},
		resamplers: map[string]*resample.Resampler{},
	}
	for name, spec := range specs {
		if err := spec.Validate(name); err != nil {
			return nil, err
		}
		ind, err := indicator.New(spec)
		if err != nil {
			return nil, fmt.Errorf("indicatormanager: %w", err)
		}
		tf := spec.Timeframe
		if tf == "" {
			tf = "1m"
		}
		m.timeframes[name] = tf
		m.indicators[name] = ind
		if tf != "1m" {
			if _, ok := m.resamplers[tf]; !ok {
				r, err := resample.New(tf)
				if err != nil {
					return nil, fmt.Errorf("indicatormanager: indicator %q: %w", name, err)
				}
				m.resamplers[tf] = r
			}
		}
	}
	return m, nil
}

// Update feeds one completed 1m bar through the manager: 1m indicators
// first, then every resampler, forwarding any newly-completed
// higher-timeframe bar to the indicators configured on that timeframe.
func (m *Manager) Update(bar types.Bar) {
	for name, ind := range m.indicators {
		if m.timeframes[name] == "1m" {
			ind.Update(bar)
		}
	}
	for tf, r := range m.resamplers {
		completed, ok := r.Update(bar)
		if !ok {
			continue
		}
		for name, ind := range m.indicators {
			if m.timeframes[name] == tf {
				ind.Update(completed)
			}
		}
	}
}

// All returns the current value of every configured indicator.
func (m *Manager) All() map[string]types.IndicatorValue {
	out := make(map[string]types.IndicatorValue, len(m.indicators))
	for name, ind := range m.indicators {
		out[name] = ind.Value()
	}
	return out
}
