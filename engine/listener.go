package engine

import "github.com/evdnx/barsim/types"

// Listener observes bar-loop progression without being able to mutate
// it, matching the registrar/notifier pattern spec.md §9 calls for:
// listeners are stored in an ordered slice and invoked synchronously.
type Listener interface {
	OnBar(bar types.Bar)
	OnFill(fill types.Fill)
	OnExit(fill types.Fill, trade types.Trade)
	OnSignal(orders []types.Order)
	OnReject(reason string, order types.Order)
}

// BaseListener supplies no-op defaults so callers only override the
// events they care about.
type BaseListener struct{}

func (BaseListener) OnBar(bar types.Bar)                          {}
func (BaseListener) OnFill(fill types.Fill)                       {}
func (BaseListener) OnExit(fill types.Fill, trade types.Trade)    {}
func (BaseListener) OnSignal(orders []types.Order)                {}
func (BaseListener) OnReject(reason string, order types.Order)    {}
