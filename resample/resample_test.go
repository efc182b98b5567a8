package resample

import (
	"testing"
	"time"

	"github.com/evdnx/barsim/types"
)

func TestS5FifteenMinuteBucket(t *testing.T) {
	r, err := New("15m")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	base := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	var completed types.Bar
	var got bool
	for i := 0; i < 18; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		v := float64(i)
		completed, got = r.Update(types.Bar{Timestamp: ts, Open: v, High: v, Low: v, Close: v, Volume: 1})
		if i < 15 {
			if got {
				t.Fatalf("unexpected emission at minute %d", i)
			}
			continue
		}
		if i == 15 {
			if !got {
				t.Fatal("expected the 16th bar (t=10:15) to close the [10:00,10:15) bucket")
			}
			if completed.Open != 0 || completed.High != 14 || completed.Low != 0 || completed.Close != 14 || completed.Volume != 15 {
				t.Fatalf("unexpected completed bar: %+v", completed)
			}
			if !completed.Timestamp.Equal(base) {
				t.Fatalf("expected bucket start %v, got %v", base, completed.Timestamp)
			}
		} else if got {
			t.Fatalf("unexpected second emission at minute %d", i)
		}
	}
}

func TestAlignmentIndependentOfStreamStart(t *testing.T) {
	// Bucket boundaries derive from epoch, not from the first bar seen.
	r2, _ := New("5m")
	want := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

	base2 := time.Date(2026, 3, 4, 12, 1, 0, 0, time.UTC)
	// The first emitted bucket is the one the 12:01 start falls into.
	var completed types.Bar
	var haveFirst bool
	for i := 0; i < 10; i++ {
		c, got := r2.Update(types.Bar{Timestamp: base2.Add(time.Duration(i) * time.Minute), Open: 1, High: 1, Low: 1, Close: 1, Volume: 1})
		if got && !haveFirst {
			completed = c
			haveFirst = true
		}
	}
	if !completed.Timestamp.Equal(want) {
		t.Fatalf("expected bucket aligned at %v regardless of stream start, got %v", want, completed.Timestamp)
	}
}
