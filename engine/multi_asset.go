package engine

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/portfolio"
	"github.com/evdnx/barsim/provider"
	"github.com/evdnx/barsim/strategy"
	"github.com/evdnx/barsim/types"
)

// MultiAssetEngine drives several symbols' bar streams against one
// shared portfolio, merging bars into a single chronological sequence
// (ties broken by a stable, alphabetical symbol order) and enforcing an
// optional total-exposure cap across every symbol's fills.
type MultiAssetEngine struct {
	Cfg       config.MultiAssetConfig
	Portfolio *portfolio.Portfolio
	Engines   map[string]*Engine

	symbolOrder map[string]int
	providers   map[string]provider.BarProvider
}

// NewMultiAsset builds one Engine per symbol sharing pf, wiring each
// Engine's ExposureGate to Cfg.MaxTotalExposureUSD when it is set.
func NewMultiAsset(cfg config.MultiAssetConfig, strategies map[string]strategy.Strategy, providers map[string]provider.BarProvider, pf *portfolio.Portfolio) (*MultiAssetEngine, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("multi-asset engine: at least one symbol required")
	}
	symbols := make([]string, 0, len(strategies))
	for sym := range strategies {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	order := make(map[string]int, len(symbols))
	engines := make(map[string]*Engine, len(symbols))
	m := &MultiAssetEngine{Cfg: cfg, Portfolio: pf, providers: providers}

	for i, sym := range symbols {
		order[sym] = i
		symCfg := cfg.Base
		if sc, ok := cfg.SymbolConfigs[sym]; ok {
			symCfg = sc.Merged(cfg.Base)
		}
		e, err := New(sym, symCfg, strategies[sym], pf)
		if err != nil {
			return nil, fmt.Errorf("multi-asset engine: symbol %s: %w", sym, err)
		}
		if cfg.MaxTotalExposureUSD > 0 {
			e.ExposureGate = m.admitExposure
		}
		engines[sym] = e
	}
	m.symbolOrder = order
	m.Engines = engines
	return m, nil
}

// admitExposure reports whether adding sizeUSD of new notional keeps the
// shared portfolio's total open-position size within
// Cfg.MaxTotalExposureUSD.
func (m *MultiAssetEngine) admitExposure(sizeUSD float64) bool {
	total := sizeUSD
	for i := range m.Portfolio.Positions {
		total += m.Portfolio.Positions[i].Size
	}
	return total <= m.Cfg.MaxTotalExposureUSD
}

type barHeapItem struct {
	symbol string
	bar    types.Bar
	order  int
}

type barHeap []barHeapItem

func (h barHeap) Len() int { return len(h) }
func (h barHeap) Less(i, j int) bool {
	if !h[i].bar.Timestamp.Equal(h[j].bar.Timestamp) {
		return h[i].bar.Timestamp.Before(h[j].bar.Timestamp)
	}
	return h[i].order < h[j].order
}
func (h barHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *barHeap) Push(x any)        { *h = append(*h, x.(barHeapItem)) }
func (h *barHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Run drains every provider to completion, dispatching bars to their
// symbol's Engine in strict chronological order. It stops at the first
// strategy error or provider read error and returns it.
func (m *MultiAssetEngine) Run() error {
	h := &barHeap{}
	heap.Init(h)
	for sym, p := range m.providers {
		bar, ok, err := p.Next()
		if err != nil {
			return fmt.Errorf("multi-asset engine: provider %s: %w", sym, err)
		}
		if ok {
			heap.Push(h, barHeapItem{symbol: sym, bar: bar, order: m.symbolOrder[sym]})
		}
	}

	for h.Len() > 0 {
		item := heap.Pop(h).(barHeapItem)
		e, ok := m.Engines[item.symbol]
		if !ok {
			continue
		}
		if err := e.OnBar(item.bar); err != nil {
			return err
		}
		next, ok, err := m.providers[item.symbol].Next()
		if err != nil {
			return fmt.Errorf("multi-asset engine: provider %s: %w", item.symbol, err)
		}
		if ok {
			heap.Push(h, barHeapItem{symbol: item.symbol, bar: next, order: item.order})
		}
	}
	return nil
}
