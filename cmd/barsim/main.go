// Command barsim runs a declarative SMA-crossover strategy against a CSV
// bar file and serves its live equity/drawdown/fill metrics over HTTP,
// following the flag set, /healthz+/metrics mux and graceful-shutdown
// shape chidi150c-coinbase/main.go uses for its backtest/live entrypoint.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/evdnx/barsim/config"
	"github.com/evdnx/barsim/engine"
	"github.com/evdnx/barsim/execution"
	"github.com/evdnx/barsim/logger"
	"github.com/evdnx/barsim/portfolio"
	"github.com/evdnx/barsim/provider"
	"github.com/evdnx/barsim/results"
	"github.com/evdnx/barsim/strategy"
	"github.com/evdnx/barsim/types"
)

func main() {
	var (
		csvPath    string
		symbol     string
		timeframe  string
		fastPeriod int
		slowPeriod int
		equity     float64
		sizeUSD    float64
		slPct      float64
		tpPct      float64
		port       int
	)
	flag.StringVar(&csvPath, "csv", "", "Path to a CSV bar file (time,open,high,low,close,volume)")
	flag.StringVar(&symbol, "symbol", "BTCUSD", "Symbol label stamped on every bar")
	flag.StringVar(&timeframe, "timeframe", "1m", "Timeframe label stamped on every bar")
	flag.IntVar(&fastPeriod, "fast", 10, "Fast SMA period")
	flag.IntVar(&slowPeriod, "slow", 30, "Slow SMA period")
	flag.Float64Var(&equity, "equity", 10000, "Starting equity")
	flag.Float64Var(&sizeUSD, "size", 1000, "Notional size per order, in quote units")
	flag.Float64Var(&slPct, "sl", 0.02, "Stop-loss percent, relative to entry")
	flag.Float64Var(&tpPct, "tp", 0.04, "Take-profit percent, relative to entry")
	flag.IntVar(&port, "port", 9100, "Port to serve /metrics and /healthz on")
	flag.Parse()

	if csvPath == "" {
		log.Fatal("barsim: -csv is required")
	}

	lg, err := logger.NewZapLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "barsim: logger: %v\n", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		lg.Info("serving metrics", logger.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("metrics server stopped", logger.Err(err))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, csvPath, symbol, timeframe, fastPeriod, slowPeriod, equity, sizeUSD, slPct, tpPct, lg); err != nil {
		lg.Error("run failed", logger.Err(err))
	}

	shutdownCtx, c := context.WithTimeout(context.Background(), 2*time.Second)
	defer c()
	_ = srv.Shutdown(shutdownCtx)
}

func run(ctx context.Context, csvPath, symbol, timeframe string, fastPeriod, slowPeriod int, equity, sizeUSD, slPct, tpPct float64, lg logger.Logger) error {
	fastName := fmt.Sprintf("sma_%d", fastPeriod)
	slowName := fmt.Sprintf("sma_%d", slowPeriod)

	cfg := config.DefaultEngineConfig()
	cfg.InitialEquity = equity
	cfg.DefaultSizeUSD = sizeUSD
	cfg.Indicators = map[string]config.IndicatorSpec{
		fastName: {Kind: config.KindSMA, Period: fastPeriod},
		slowName: {Kind: config.KindSMA, Period: slowPeriod},
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	strat, err := strategy.NewDeclarative(strategy.DeclarativeConfig{
		Indicators: cfg.Indicators,
		EntryLong:  []strategy.Condition{{Kind: strategy.Crossover, Fast: fastName, Slow: slowName}},
		EntryShort: []strategy.Condition{{Kind: strategy.Crossunder, Fast: fastName, Slow: slowName}},
		Exit: strategy.ExitConfig{
			SLPct: types.F64(slPct),
			TPPct: types.F64(tpPct),
		},
	})
	if err != nil {
		return fmt.Errorf("strategy: %w", err)
	}

	p, err := provider.NewCSV(csvPath, provider.CSVOptions{
		Symbol:    symbol,
		Timeframe: timeframe,
		OnError:   provider.OnErrorWarnAndSkip,
		Log:       lg,
	})
	if err != nil {
		return fmt.Errorf("provider: %w", err)
	}

	pf := portfolio.New(execution.Default(), cfg.InitialEquity, cfg.MaxPositions)
	e, err := engine.New(symbol, cfg, strat, pf)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	var firstClose, lastClose float64
	n := 0
	for {
		select {
		case <-ctx.Done():
			lg.Info("interrupted", logger.Int("bars_processed", n))
			return nil
		default:
		}
		bar, ok, err := p.Next()
		if err != nil {
			return fmt.Errorf("bar stream: %w", err)
		}
		if !ok {
			break
		}
		if n == 0 {
			firstClose = bar.Close
		}
		lastClose = bar.Close
		n++
		if err := e.OnBar(bar); err != nil {
			lg.Error("strategy callback failed", logger.Err(err))
			return err
		}
	}

	r := results.Build(pf, firstClose, lastClose)
	lg.Info("run complete",
		logger.Int("bars", n),
		logger.Int("trades", r.Summary.TotalTrades),
		logger.Float64("return_pct", r.Summary.ReturnPct),
		logger.Float64("max_drawdown_pct", r.Summary.MaxDrawdownPct),
		logger.Float64("win_rate", r.Summary.WinRate),
		logger.Float64("profit_factor", r.Summary.ProfitFactor),
	)
	return nil
}
