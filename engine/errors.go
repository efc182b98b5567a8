package engine

import (
	"fmt"
	"time"
)

// StrategyError wraps any panic or error recovered from a strategy
// callback, attaching the timestamp of the bar being processed when it
// happened. Portfolio mutations already committed in earlier phases of
// the same bar stand — "no partial results" applies at callback
// granularity, not bar-phase granularity, since phases 1–3 are
// engine-owned and individually deterministic.
type StrategyError struct {
	Bar time.Time
	Err error
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("strategy callback failed at bar %s: %v", e.Bar.Format(time.RFC3339), e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }
