package engine

import (
	"fmt"

	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/execution"
	"github.com/evdnx/barsim/portfolio"
	"github.com/evdnx/barsim/provider"
	"github.com/evdnx/barsim/strategy"
	"github.com/evdnx/barsim/types"
)

// StepObservation is what Step/Reset hand back to an external
// controller: the bar just processed, the indicator values visible
// after it, a snapshot of open positions, running equity, the step
// counter, and whether the stream is exhausted.
type StepObservation struct {
	Bar        types.Bar
	Indicators map[string]types.IndicatorValue
	Positions  []types.Position
	Equity     float64
	StepCount  int
	Done       bool
}

// StepEngine exposes the same 4-phase bar loop as Engine, but lets an
// external controller supply the on_bar decision directly instead of a
// Strategy implementation — the shape an RL-style training loop or a
// manual step-through UI needs. Internally it runs a plain Engine with
// a no-op strategy.Base; each Step's action is enqueued after that
// step's bar is processed, exactly as if strategy.OnBar had returned it,
// so it fills on the following Step's phase 1.
type StepEngine struct {
	symbol   string
	cfg      config.EngineConfig
	provider provider.BarProvider

	engine    *Engine
	stepCount int
	done      bool
}

// NewStep constructs a StepEngine for one symbol's provider.
func NewStep(symbol string, cfg config.EngineConfig, p provider.BarProvider) (*StepEngine, error) {
	s := &StepEngine{symbol: symbol, cfg: cfg, provider: p}
	if _, err := s.Reset(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset rewinds the bar provider and starts a fresh portfolio and
// engine, returning the zero-step observation.
func (s *StepEngine) Reset() (StepObservation, error) {
	if err := s.provider.Reset(); err != nil {
		return StepObservation{}, fmt.Errorf("step engine: reset provider: %w", err)
	}
	exec := execution.Model{Slippage: s.cfg.Slippage, TakerFee: s.cfg.TakerFee, MakerFee: s.cfg.MakerFee}
	pf := portfolio.New(exec, s.cfg.InitialEquity, s.cfg.MaxPositions)
	e, err := New(s.symbol, s.cfg, &strategy.Base{}, pf)
	if err != nil {
		return StepObservation{}, fmt.Errorf("step engine: %w", err)
	}
	s.engine = e
	s.stepCount = 0
	s.done = false
	return StepObservation{
		Indicators: e.Indicators.All(),
		Positions:  nil,
		Equity:     pf.Equity,
		StepCount:  0,
	}, nil
}

// Step advances to the next bar and runs the full 4-phase loop against
// it (any order queued by a previous Step's action fills here, in
// phase 1), then enqueues action — mirroring a strategy.OnBar return
// value — so it fills on the following Step call. reward is the equity
// delta realized this step. Once the provider is exhausted, Step
// returns Done=true without consuming further input.
func (s *StepEngine) Step(action *types.Order) (StepObservation, float64, bool, error) {
	if s.done {
		return StepObservation{Done: true, StepCount: s.stepCount}, 0, true, nil
	}
	bar, ok, err := s.provider.Next()
	if err != nil {
		return StepObservation{Done: true, StepCount: s.stepCount}, 0, true, err
	}
	if !ok {
		s.done = true
		return s.observation(types.Bar{}, true), 0, true, nil
	}

	prevEquity := s.engine.Portfolio.Equity
	berr := s.engine.OnBar(bar)
	s.stepCount++
	reward := s.engine.Portfolio.Equity - prevEquity
	obs := s.observation(bar, false)

	if action != nil {
		s.engine.enqueue(*action)
	}
	if berr != nil {
		return obs, reward, false, berr
	}
	return obs, reward, false, nil
}

func (s *StepEngine) observation(bar types.Bar, done bool) StepObservation {
	return StepObservation{
		Bar:        bar,
		Indicators: s.engine.Indicators.All(),
		Positions:  s.engine.positionsSnapshot(),
		Equity:     s.engine.Portfolio.Equity,
		StepCount:  s.stepCount,
		Done:       done,
	}
}
