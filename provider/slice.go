package provider

import "github.com/evdnx/barsim/types"

// SliceProvider wraps an in-memory bar slice; the module's tests use it
// to feed the engine, multi-asset engine and step engine.
type SliceProvider struct {
	symbol    string
	timeframe string
	bars      []types.Bar
	pos       int
}

// NewSlice builds a SliceProvider over bars, which must already be in
// ascending timestamp order.
func NewSlice(symbol, timeframe string, bars []types.Bar) *SliceProvider {
	return &SliceProvider{symbol: symbol, timeframe: timeframe, bars: bars}
}

func (s *SliceProvider) Next() (types.Bar, bool, error) {
	if s.pos >= len(s.bars) {
		return types.Bar{}, false, nil
	}
	var prev types.Bar
	havePrev := s.pos > 0
	if havePrev {
		prev = s.bars[s.pos-1]
	}
	b := s.bars[s.pos]
	if err := validateOrder(prev, b, havePrev); err != nil {
		return types.Bar{}, false, err
	}
	s.pos++
	return b, true, nil
}

func (s *SliceProvider) Reset() error {
	s.pos = 0
	return nil
}

func (s *SliceProvider) Symbol() string    { return s.symbol }
func (s *SliceProvider) Timeframe() string { return s.timeframe }
