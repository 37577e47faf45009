package indicators

import "fmt"

// MACD is a streaming Moving Average Convergence Divergence indicator: the
// difference of a fast and a slow EMA, plus an EMA signal line over that
// difference.
type MACD struct {
	fastPeriod, slowPeriod, signalPeriod int

	fast   *ewma
	slow   *ewma
	signal *ewma
}

// NewMACD creates a MACD with the given fast/slow/signal periods.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,

		fast:   newEWMA(fast),
		slow:   newEWMA(slow),
		signal: newEWMA(signal),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

func (m *MACD) Warmup() int { return m.slowPeriod + m.signalPeriod }

func (m *MACD) Reset() {
	m.fast.reset()
	m.slow.reset()
	m.signal.reset()
}

func (m *MACD) Update(price float64) {
	m.fast.update(price)
	m.slow.update(price)
	if m.fast.ready() && m.slow.ready() {
		m.signal.update(m.fast.value - m.slow.value)
	}
}

// Ready reports whether both the MACD line and its signal line are warmed up.
func (m *MACD) Ready() bool { return m.signal.ready() }

// Value returns the MACD line (fast EMA − slow EMA).
func (m *MACD) Value() float64 {
	if !m.fast.ready() || !m.slow.ready() {
		return 0
	}
	return m.fast.value - m.slow.value
}

// Signal returns the signal line (EMA over the MACD line).
func (m *MACD) Signal() float64 {
	if !m.signal.ready() {
		return 0
	}
	return m.signal.value
}
