package types

// Order is the value a strategy callback emits to open or manage a
// position. All exit-management fields are optional and independent;
// a nil pointer means "not configured".
type Order struct {
	Kind   OrderKind
	Side   Side
	Symbol string // empty = the engine's bound symbol
	Group  string // position-group label; empty = ungrouped

	// Size is the explicit notional size in quote units. Nil defers to
	// the engine's configured sizer / DefaultSizeUSD.
	Size *float64

	// Exit management, all relative to the eventual fill price.
	TPPct             *float64
	SLPct             *float64
	BETriggerPct      *float64
	BELockPct         *float64
	TrailPct          *float64
	TrailActivatePct  *float64
	PartialTPPct      *float64
	PartialTPNewTPPct *float64

	// CancelPendingLimits, when true, clears the pending LIMIT queue for
	// this symbol. May be set standalone (see CancelPendingLimitsOrder)
	// or alongside a regular order.
	CancelPendingLimits bool

	// LIMIT-only.
	LimitPrice   float64
	UseMakerFee  bool // LIMIT: maker fee only when true; the zero value (false) charges the taker fee. STOP/MARKET ignore
	MinPositions int
	MergePosition bool

	// STOP-only.
	StopPrice float64

	// LIMIT/STOP: 0 = no timeout.
	TimeoutBars int
}

// CancelPendingLimitsOrder returns the sentinel value a strategy returns
// from on_bar to clear the pending LIMIT queue without placing a new
// order.
func CancelPendingLimitsOrder() Order {
	return Order{CancelPendingLimits: true}
}

// PendingOrder is the engine-internal representation of a queued LIMIT
// or STOP order awaiting trigger or timeout.
type PendingOrder struct {
	Order
	BarsElapsed int
}

// TimedOut reports whether this pending order should be dropped before
// being tested against the current bar.
func (p PendingOrder) TimedOut() bool {
	return p.TimeoutBars > 0 && p.BarsElapsed >= p.TimeoutBars
}

func f64(v float64) *float64 { return &v }

// F64 is a small helper for constructing optional-percentage order
// fields from a literal, e.g. types.Order{TPPct: types.F64(0.05)}.
func F64(v float64) *float64 { return f64(v) }
