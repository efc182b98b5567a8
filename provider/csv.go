package provider

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evdnx/barsim/logger"
	"github.com/evdnx/barsim/types"
)

// ErrorPolicy selects how CSVProvider reacts to a per-row parsing
// problem.
type ErrorPolicy int

const (
	// OnErrorStop aborts loading on the first bad row (default).
	OnErrorStop ErrorPolicy = iota
	// OnErrorWarnAndSkip logs the row through Log and continues.
	OnErrorWarnAndSkip
)

// CSVOptions configures CSVProvider's column lookup and error handling.
type CSVOptions struct {
	Symbol        string
	Timeframe     string
	TimestampCol  string // defaults to "time" then "timestamp"
	Start, End    time.Time
	OnError       ErrorPolicy
	Log           logger.Logger
}

// CSVProvider decodes a timestamp,open,high,low,close,volume CSV file,
// following the flexible-header, case-insensitive lookup and
// RFC3339-or-unix-seconds timestamp parsing the teacher's loadCSV uses,
// generalized into a restartable BarProvider.
type CSVProvider struct {
	opts CSVOptions
	bars []types.Bar
	pos  int
}

// NewCSV reads and parses path eagerly (matching the teacher's
// load-then-iterate shape) and returns a ready-to-use provider.
func NewCSV(path string, opts CSVOptions) (*CSVProvider, error) {
	if opts.TimestampCol == "" {
		opts.TimestampCol = "time"
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("provider: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var bars []types.Bar
	var headers []string
	rowIdx := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("provider: read %s: %w", path, err)
		}
		if rowIdx == 0 {
			headers = rec
			rowIdx++
			continue
		}
		rowIdx++
		row := make(map[string]string, len(headers))
		for j, h := range headers {
			k := strings.ToLower(strings.TrimSpace(h))
			if j < len(rec) {
				row[k] = strings.TrimSpace(rec[j])
			}
		}
		bar, err := parseRow(row, opts)
		if err != nil {
			if opts.OnError == OnErrorWarnAndSkip {
				if opts.Log != nil {
					opts.Log.Warn("skipping malformed CSV row", logger.Int("row", rowIdx), logger.Err(err))
				}
				continue
			}
			return nil, fmt.Errorf("provider: row %d: %w", rowIdx, err)
		}
		if !opts.Start.IsZero() && bar.Timestamp.Before(opts.Start) {
			continue
		}
		if !opts.End.IsZero() && bar.Timestamp.After(opts.End) {
			continue
		}
		bars = append(bars, bar)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return &CSVProvider{opts: opts, bars: bars}, nil
}

func first(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func parseRow(row map[string]string, opts CSVOptions) (types.Bar, error) {
	ts := first(row, strings.ToLower(opts.TimestampCol), "time", "timestamp")
	op, hp, lp, cp := first(row, "open"), first(row, "high"), first(row, "low"), first(row, "close")
	vp := first(row, "volume", "vol")
	if ts == "" || op == "" || hp == "" || lp == "" || cp == "" {
		return types.Bar{}, fmt.Errorf("%w: missing required column", ErrMalformedBar)
	}
	t, err := parseTimeFlexible(ts)
	if err != nil {
		return types.Bar{}, fmt.Errorf("%w: %v", ErrMalformedBar, err)
	}
	o, oerr := strconv.ParseFloat(op, 64)
	h, herr := strconv.ParseFloat(hp, 64)
	l, lerr := strconv.ParseFloat(lp, 64)
	c, cerr := strconv.ParseFloat(cp, 64)
	v, _ := strconv.ParseFloat(vp, 64) // volume is optional; default 0
	if oerr != nil || herr != nil || lerr != nil || cerr != nil {
		return types.Bar{}, fmt.Errorf("%w: non-numeric OHLC field", ErrMalformedBar)
	}
	bar := types.Bar{
		Timestamp: t,
		Open:      o,
		High:      h,
		Low:       l,
		Close:     c,
		Volume:    v,
		Symbol:    opts.Symbol,
		Timeframe: opts.Timeframe,
	}
	if !bar.Valid() {
		return types.Bar{}, malformed(bar, "OHLC invariant violated")
	}
	return bar, nil
}

func parseTimeFlexible(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("bad timestamp: %s", s)
}

func (c *CSVProvider) Next() (types.Bar, bool, error) {
	if c.pos >= len(c.bars) {
		return types.Bar{}, false, nil
	}
	b := c.bars[c.pos]
	c.pos++
	return b, true, nil
}

func (c *CSVProvider) Reset() error {
	c.pos = 0
	return nil
}

func (c *CSVProvider) Symbol() string    { return c.opts.Symbol }
func (c *CSVProvider) Timeframe() string { return c.opts.Timeframe }
