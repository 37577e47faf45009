package engine

import "time"

// Side distinguishes long and short positions.
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	}
	return "unknown"
}

// Position is one open trade. Every field is fixed when the position opens;
// the stop and take levels are never recomputed (no trailing stops).
type Position struct {
	Side       Side
	Quantity   float64
	EntryPrice float64
	StopLoss   float64
	TakeProfit float64
}

// openPosition pairs a Position with the bookkeeping the journal needs.
type openPosition struct {
	Position

	id       string
	openTime time.Time
}
