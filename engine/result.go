package engine

import "time"

// Record is the per-bar output: the marked-to-market portfolio value and the
// summed realized PnL of every position closed during that bar (zero when
// nothing closed).
type Record struct {
	Time           time.Time
	PortfolioValue float64
	TradePnL       float64
}

// Result is a completed simulation run.
type Result struct {
	Records   []Record
	FinalCash float64
}

// ClosedTrades counts bars on which at least one position closed.
func (r Result) ClosedTrades() int {
	n := 0
	for _, rec := range r.Records {
		if rec.TradePnL != 0 {
			n++
		}
	}
	return n
}

// Equity returns the portfolio value curve.
func (r Result) Equity() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.PortfolioValue
	}
	return out
}

// TradePnLs returns the per-bar realized PnL column.
func (r Result) TradePnLs() []float64 {
	out := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		out[i] = rec.TradePnL
	}
	return out
}
