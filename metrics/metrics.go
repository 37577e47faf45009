// Package metrics computes performance statistics from an equity curve.
package metrics

import "math"

// HoursPerYear is the default bars-per-year for hourly 24/7 crypto data.
const HoursPerYear = 365 * 24

// Metrics bundles the standard performance statistics of a run. Values that
// cannot be computed (too little data, zero volatility) are NaN.
type Metrics struct {
	TotalReturn  float64 `json:"total_return"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	SortinoRatio float64 `json:"sortino_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	CalmarRatio  float64 `json:"calmar_ratio"`
	WinRate      float64 `json:"win_rate"`
}

// All computes every metric from the portfolio value curve and the per-bar
// trade PnL column.
func All(equity, tradePnL []float64, riskFreeAnnual float64, barsPerYear int) Metrics {
	ret := BarReturns(equity)
	return Metrics{
		TotalReturn:  TotalReturn(equity),
		SharpeRatio:  Sharpe(ret, barsPerYear, riskFreeAnnual),
		SortinoRatio: Sortino(ret, barsPerYear, riskFreeAnnual),
		MaxDrawdown:  MaxDrawdown(equity),
		CalmarRatio:  Calmar(equity, barsPerYear),
		WinRate:      WinRate(tradePnL),
	}
}

// BarReturns is the per-bar fractional change of the equity curve,
// with non-finite entries dropped.
func BarReturns(equity []float64) []float64 {
	var out []float64
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		r := equity[i]/equity[i-1] - 1
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// TotalReturn is the gross fractional return over the whole curve.
func TotalReturn(equity []float64) float64 {
	eq := finite(equity)
	if len(eq) < 2 || eq[0] == 0 {
		return math.NaN()
	}
	return eq[len(eq)-1]/eq[0] - 1
}

// AnnualGrowth is the compound annual growth rate of the curve.
func AnnualGrowth(equity []float64, barsPerYear int) float64 {
	eq := finite(equity)
	if len(eq) < 2 || eq[0] == 0 || barsPerYear <= 0 {
		return math.NaN()
	}
	years := float64(len(eq)) / float64(barsPerYear)
	total := eq[len(eq)-1]/eq[0] - 1
	return math.Pow(1+total, 1/years) - 1
}

// MaxDrawdown is the deepest peak-to-trough decline, as a negative fraction.
func MaxDrawdown(equity []float64) float64 {
	mdd, _ := DrawdownSeries(equity)
	return mdd
}

// DrawdownSeries returns the max drawdown and the full per-bar drawdown
// series (each value relative to the running peak).
func DrawdownSeries(equity []float64) (float64, []float64) {
	eq := finite(equity)
	if len(eq) == 0 {
		return math.NaN(), nil
	}
	dd := make([]float64, len(eq))
	peak := eq[0]
	mdd := 0.0
	for i, v := range eq {
		if v > peak {
			peak = v
		}
		dd[i] = v/peak - 1
		if dd[i] < mdd {
			mdd = dd[i]
		}
	}
	return mdd, dd
}

// Sharpe is the annualized Sharpe ratio of per-bar returns against an
// annual risk-free rate (converted per-bar linearly).
func Sharpe(returns []float64, barsPerYear int, riskFreeAnnual float64) float64 {
	r := finite(returns)
	if len(r) == 0 || barsPerYear <= 0 {
		return math.NaN()
	}
	rfBar := riskFreeAnnual / float64(barsPerYear)

	mean, vol := meanStd(r, rfBar, false)
	if vol == 0 || math.IsNaN(vol) {
		return math.NaN()
	}
	return math.Sqrt(float64(barsPerYear)) * mean / vol
}

// Sortino is like Sharpe but penalizes only downside volatility.
func Sortino(returns []float64, barsPerYear int, riskFreeAnnual float64) float64 {
	r := finite(returns)
	if len(r) == 0 || barsPerYear <= 0 {
		return math.NaN()
	}
	rfBar := riskFreeAnnual / float64(barsPerYear)

	mean, dvol := meanStd(r, rfBar, true)
	if dvol == 0 || math.IsNaN(dvol) {
		return math.NaN()
	}
	return math.Sqrt(float64(barsPerYear)) * mean / dvol
}

// Calmar is the annual growth rate over the absolute max drawdown.
func Calmar(equity []float64, barsPerYear int) float64 {
	cg := AnnualGrowth(equity, barsPerYear)
	mdd := MaxDrawdown(equity)
	denom := math.Abs(mdd)
	if denom == 0 || math.IsNaN(denom) || math.IsNaN(cg) {
		return math.NaN()
	}
	return cg / denom
}

// WinRate is the fraction of closed trades with positive PnL. Zero entries
// (bars with no close) are ignored.
func WinRate(tradePnL []float64) float64 {
	wins, losses := 0, 0
	for _, v := range tradePnL {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v > 0 {
			wins++
		} else if v < 0 {
			losses++
		}
	}
	total := wins + losses
	if total == 0 {
		return math.NaN()
	}
	return float64(wins) / float64(total)
}

// meanStd returns the mean of excess returns and their population standard
// deviation. With downside true, the deviation covers negative excess
// returns only.
func meanStd(returns []float64, rfBar float64, downside bool) (float64, float64) {
	mean := 0.0
	for _, v := range returns {
		mean += v - rfBar
	}
	mean /= float64(len(returns))

	var sample []float64
	for _, v := range returns {
		ex := v - rfBar
		if downside && ex >= 0 {
			continue
		}
		sample = append(sample, ex)
	}
	if len(sample) == 0 {
		return mean, math.NaN()
	}

	sMean := 0.0
	for _, v := range sample {
		sMean += v
	}
	sMean /= float64(len(sample))

	ss := 0.0
	for _, v := range sample {
		d := v - sMean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(len(sample)))
}

func finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out = append(out, v)
	}
	return out
}
