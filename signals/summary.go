package signals

import (
	"fmt"
	"io"

	"github.com/quantbench/backtester/market"
)

// Summary counts signal states and entry transitions over a series.
type Summary struct {
	Shorts int // bars with signal -1
	Holds  int // bars with signal 0 (or out-of-domain values)
	Longs  int // bars with signal +1

	LongEntries  int // transitions into +1
	ShortEntries int // transitions into -1
}

// Summarize tallies the series' signal column. Consecutive repeats of the
// same signal count as one entry.
func Summarize(series *market.Series) Summary {
	var s Summary
	prev := 0
	for _, b := range series.Bars {
		switch b.Signal {
		case 1:
			s.Longs++
			if prev != 1 {
				s.LongEntries++
			}
		case -1:
			s.Shorts++
			if prev != -1 {
				s.ShortEntries++
			}
		default:
			s.Holds++
		}
		prev = b.Signal
	}
	return s
}

// Print writes a two-line human summary.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Signals (bars) -> short: %d, hold: %d, long: %d\n", s.Shorts, s.Holds, s.Longs)
	fmt.Fprintf(w, "Entries        -> long: %d, short: %d\n", s.LongEntries, s.ShortEntries)
}
