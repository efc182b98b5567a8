package provider

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evdnx/barsim/testutils"
	"github.com/evdnx/barsim/types"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "bars.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestCSVProviderParsesGoodRows(t *testing.T) {
	csv := "time,open,high,low,close,volume\n" +
		"2020-01-01T00:00:00Z,100,105,99,103,10\n" +
		"2020-01-01T00:01:00Z,103,106,102,104,12\n"
	path := writeTempCSV(t, csv)

	p, err := NewCSV(path, CSVOptions{Symbol: "BTCUSD", Timeframe: "1m"})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	var bars []types.Bar
	for {
		b, ok, err := p.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		bars = append(bars, b)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Open != 100 || bars[1].Close != 104 {
		t.Fatalf("unexpected bar contents: %+v", bars)
	}
	if bars[0].Symbol != "BTCUSD" || bars[0].Timeframe != "1m" {
		t.Fatalf("expected symbol/timeframe stamped, got %+v", bars[0])
	}
}

func TestCSVProviderUnixTimestamps(t *testing.T) {
	csv := "timestamp,open,high,low,close,volume\n" +
		"1577836800,100,105,99,103,10\n"
	path := writeTempCSV(t, csv)

	p, err := NewCSV(path, CSVOptions{Symbol: "BTCUSD"})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	b, ok, err := p.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	want := time.Unix(1577836800, 0).UTC()
	if !b.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v, want %v", b.Timestamp, want)
	}
}

func TestCSVProviderStopsOnMalformedRowByDefault(t *testing.T) {
	csv := "time,open,high,low,close,volume\n" +
		"2020-01-01T00:00:00Z,100,105,99,103,10\n" +
		"not-a-time,100,105,99,103,10\n"
	path := writeTempCSV(t, csv)

	if _, err := NewCSV(path, CSVOptions{Symbol: "BTCUSD", OnError: OnErrorStop}); err == nil {
		t.Fatalf("expected error on malformed row with OnErrorStop")
	}
}

func TestCSVProviderWarnAndSkipsMalformedRow(t *testing.T) {
	csv := "time,open,high,low,close,volume\n" +
		"2020-01-01T00:00:00Z,100,105,99,103,10\n" +
		"not-a-time,100,105,99,103,10\n" +
		"2020-01-01T00:02:00Z,103,106,102,104,12\n"
	path := writeTempCSV(t, csv)

	log := testutils.NewMockLogger()
	p, err := NewCSV(path, CSVOptions{Symbol: "BTCUSD", OnError: OnErrorWarnAndSkip, Log: log})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	var bars []types.Bar
	for {
		b, ok, err := p.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		bars = append(bars, b)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 good rows to survive, got %d", len(bars))
	}
	if log.LastMessage() == "" {
		t.Fatalf("expected a warning to be logged for the skipped row")
	}
}

func TestCSVProviderStartEndFilter(t *testing.T) {
	csv := "time,open,high,low,close,volume\n" +
		"2020-01-01T00:00:00Z,100,105,99,103,10\n" +
		"2020-01-01T00:01:00Z,103,106,102,104,12\n" +
		"2020-01-01T00:02:00Z,104,107,103,105,11\n"
	path := writeTempCSV(t, csv)

	start := time.Date(2020, 1, 1, 0, 1, 0, 0, time.UTC)
	p, err := NewCSV(path, CSVOptions{Symbol: "BTCUSD", Start: start})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	var bars []types.Bar
	for {
		b, ok, _ := p.Next()
		if !ok {
			break
		}
		bars = append(bars, b)
	}
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars at/after start filter, got %d", len(bars))
	}
}

func TestCSVProviderResetRewinds(t *testing.T) {
	csv := "time,open,high,low,close,volume\n" +
		"2020-01-01T00:00:00Z,100,105,99,103,10\n"
	path := writeTempCSV(t, csv)

	p, err := NewCSV(path, CSVOptions{Symbol: "BTCUSD"})
	if err != nil {
		t.Fatalf("NewCSV: %v", err)
	}
	p.Next()
	if _, ok, _ := p.Next(); ok {
		t.Fatalf("expected stream exhausted")
	}
	if err := p.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, ok, _ := p.Next(); !ok {
		t.Fatalf("expected a bar after Reset")
	}
}

func TestSliceProviderOrderValidation(t *testing.T) {
	bars := []types.Bar{
		{Timestamp: time.Unix(60, 0), Open: 1, High: 1, Low: 1, Close: 1},
		{Timestamp: time.Unix(0, 0), Open: 1, High: 1, Low: 1, Close: 1},
	}
	p := NewSlice("BTCUSD", "1m", bars)
	if _, _, err := p.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	if _, _, err := p.Next(); err == nil {
		t.Fatalf("expected out-of-order timestamp to be rejected")
	}
}

func TestSliceProviderResetAndIdentity(t *testing.T) {
	bars := []types.Bar{
		{Timestamp: time.Unix(0, 0), Open: 1, High: 1, Low: 1, Close: 1},
		{Timestamp: time.Unix(60, 0), Open: 2, High: 2, Low: 2, Close: 2},
	}
	p := NewSlice("ETHUSD", "1m", bars)
	if p.Symbol() != "ETHUSD" || p.Timeframe() != "1m" {
		t.Fatalf("unexpected symbol/timeframe: %s %s", p.Symbol(), p.Timeframe())
	}
	p.Next()
	p.Next()
	if _, ok, _ := p.Next(); ok {
		t.Fatalf("expected exhaustion")
	}
	p.Reset()
	if _, ok, _ := p.Next(); !ok {
		t.Fatalf("expected a bar after Reset")
	}
}

func TestReplayProviderDelegatesAndPaces(t *testing.T) {
	bars := []types.Bar{
		{Timestamp: time.Unix(0, 0), Open: 1, High: 1, Low: 1, Close: 1},
		{Timestamp: time.Unix(60, 0), Open: 2, High: 2, Low: 2, Close: 2},
	}
	inner := NewSlice("BTCUSD", "1m", bars)
	r := NewReplay(inner, time.Millisecond)

	start := time.Now()
	b0, ok, err := r.Next()
	if err != nil || !ok {
		t.Fatalf("first Next: ok=%v err=%v", ok, err)
	}
	if b0.Open != 1 {
		t.Fatalf("unexpected first bar: %+v", b0)
	}
	if _, ok, _ := r.Next(); !ok {
		t.Fatalf("expected a second bar")
	}
	if time.Since(start) < time.Millisecond {
		t.Fatalf("expected pacing delay before second bar")
	}
	if r.Symbol() != "BTCUSD" || r.Timeframe() != "1m" {
		t.Fatalf("unexpected delegated symbol/timeframe")
	}
}
