package indicators

import "fmt"

// RSI is a streaming Relative Strength Index with Wilder smoothing.
type RSI struct {
	period int

	prev     float64
	havePrev bool

	count            int
	sumGain, sumLoss float64
	avgGain, avgLoss float64
}

// NewRSI creates an RSI indicator with the given lookback period.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

// Warmup is period+1: the first price only establishes a reference.
func (r *RSI) Warmup() int { return r.period + 1 }

func (r *RSI) Reset() {
	*r = RSI{period: r.period}
}

func (r *RSI) Update(price float64) {
	if !r.havePrev {
		r.prev = price
		r.havePrev = true
		return
	}
	delta := price - r.prev
	r.prev = price

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	r.count++
	if r.count <= r.period {
		r.sumGain += gain
		r.sumLoss += loss
		if r.count == r.period {
			r.avgGain = r.sumGain / float64(r.period)
			r.avgLoss = r.sumLoss / float64(r.period)
		}
		return
	}

	// Wilder smoothing
	n := float64(r.period)
	r.avgGain = (r.avgGain*(n-1) + gain) / n
	r.avgLoss = (r.avgLoss*(n-1) + loss) / n
}

func (r *RSI) Ready() bool { return r.count >= r.period }

// Value returns the RSI in [0, 100]. With no losses in the window the value
// saturates at 100.
func (r *RSI) Value() float64 {
	if !r.Ready() {
		return 0
	}
	if r.avgLoss == 0 {
		return 100
	}
	rs := r.avgGain / r.avgLoss
	return 100 - 100/(1+rs)
}
