// Package indicators provides streaming technical analysis indicators.
package indicators

// Indicator computes a single streaming value from successive prices.
// It is deterministic and safe to use in replays and backtests.
type Indicator interface {
	// Name returns a stable identifier like "RSI(14)".
	Name() string

	// Warmup returns how many updates are needed before Ready() can be true.
	Warmup() int

	// Reset clears all internal state.
	Reset()

	// Update consumes the next bar's price.
	Update(price float64)

	// Ready reports whether the indicator's values are meaningful.
	Ready() bool
}

// ewma is the shared exponential-moving-average core. The first value is
// seeded with an SMA over the warmup window.
type ewma struct {
	period     int
	multiplier float64

	value     float64
	count     int
	warmupSum float64
}

func newEWMA(period int) *ewma {
	return &ewma{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *ewma) reset() {
	e.value = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *ewma) update(v float64) {
	if e.count < e.period {
		e.warmupSum += v
		e.count++
		if e.count == e.period {
			e.value = e.warmupSum / float64(e.period)
		}
		return
	}
	e.value = (v-e.value)*e.multiplier + e.value
}

func (e *ewma) ready() bool { return e.count >= e.period }
