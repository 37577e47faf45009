package indicators

import (
	"fmt"
	"math"
)

// Bollinger is a streaming Bollinger Bands indicator: an SMA middle band
// with upper/lower bands dev population standard deviations away.
type Bollinger struct {
	period int
	dev    float64

	window []float64
}

// NewBollinger creates Bollinger Bands with the given window and deviation
// multiple.
func NewBollinger(period int, dev float64) *Bollinger {
	return &Bollinger{
		period: period,
		dev:    dev,
		window: make([]float64, 0, period),
	}
}

func (b *Bollinger) Name() string {
	return fmt.Sprintf("BB(%d,%.2f)", b.period, b.dev)
}

func (b *Bollinger) Warmup() int { return b.period }

func (b *Bollinger) Reset() {
	b.window = b.window[:0]
}

func (b *Bollinger) Update(price float64) {
	b.window = append(b.window, price)
	if len(b.window) > b.period {
		b.window = b.window[1:]
	}
}

func (b *Bollinger) Ready() bool { return len(b.window) >= b.period }

// Mid returns the middle band (SMA of the window).
func (b *Bollinger) Mid() float64 {
	if !b.Ready() {
		return 0
	}
	sum := 0.0
	for _, v := range b.window {
		sum += v
	}
	return sum / float64(len(b.window))
}

// Upper returns the upper band.
func (b *Bollinger) Upper() float64 {
	if !b.Ready() {
		return 0
	}
	return b.Mid() + b.dev*b.sigma()
}

// Lower returns the lower band.
func (b *Bollinger) Lower() float64 {
	if !b.Ready() {
		return 0
	}
	return b.Mid() - b.dev*b.sigma()
}

// sigma is the population standard deviation of the window.
func (b *Bollinger) sigma() float64 {
	mean := b.Mid()
	ss := 0.0
	for _, v := range b.window {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(b.window)))
}
