package optimize

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantbench/backtester/market"
	"github.com/quantbench/backtester/metrics"
)

// waveSeries produces an oscillating price curve long enough to warm up the
// indicators and trigger trades.
func waveSeries(n int) *market.Series {
	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, n)
	for i := range bars {
		price := 100 + 20*math.Sin(float64(i)/8) + 0.01*float64(i)
		bars[i] = market.Bar{Time: base.Add(time.Duration(i) * time.Hour), Close: price}
	}
	return market.NewSeries(bars, "close")
}

func TestSplitChronological(t *testing.T) {
	s := waveSeries(100)

	train, test, val, err := Split(s, 0.6, 0.2, 0.2)
	assert.NoError(t, err)
	assert.Equal(t, 60, train.Len())
	assert.Equal(t, 20, test.Len())
	assert.Equal(t, 20, val.Len())

	// Slices must be in time order with no overlap.
	assert.True(t, train.Bars[train.Len()-1].Time.Before(test.Bars[0].Time))
	assert.True(t, test.Bars[test.Len()-1].Time.Before(val.Bars[0].Time))
}

func TestSplitRecomputesValidationShare(t *testing.T) {
	s := waveSeries(100)

	_, _, val, err := Split(s, 0.5, 0.25, 0.9)
	assert.NoError(t, err)
	assert.Equal(t, 25, val.Len())
}

func TestSplitTooSmall(t *testing.T) {
	_, _, _, err := Split(waveSeries(5), 0.6, 0.2, 0.2)
	assert.Error(t, err)
}

func TestSplitBadRatios(t *testing.T) {
	_, _, _, err := Split(waveSeries(100), 0.8, 0.3, -0.1)
	assert.Error(t, err)
}

func TestEvaluateInvalidParams(t *testing.T) {
	s := waveSeries(50)

	p := Params{
		RSIPeriod:          10,
		RSIOverbought:      70,
		RSIOversold:        30,
		MACDFast:           12,
		MACDSlow:           26,
		MACDSignal:         9,
		BBPeriod:           20,
		BBDev:              2,
		LotSize:            -1, // rejected by the engine config
		StopLossFraction:   0.02,
		TakeProfitFraction: 0.04,
	}

	_, err := Evaluate(s, p, Options{})
	var ice *InvalidConfigError
	assert.ErrorAs(t, err, &ice)
	assert.Equal(t, p, ice.Params)
}

func TestEvaluateRuns(t *testing.T) {
	s := waveSeries(300)

	p := Params{
		RSIPeriod:          5,
		RSIOverbought:      60,
		RSIOversold:        40,
		MACDFast:           5,
		MACDSlow:           10,
		MACDSignal:         3,
		BBPeriod:           10,
		BBDev:              1.5,
		LotSize:            1,
		StopLossFraction:   0.05,
		TakeProfitFraction: 0.05,
	}

	tr, err := Evaluate(s, p, Options{StartingCapital: 10000, BarsPerYear: metrics.HoursPerYear})
	assert.NoError(t, err)
	assert.Equal(t, p, tr.Params)
	assert.Greater(t, tr.FinalCash, 0.0)

	// The input series must stay untouched.
	assert.False(t, s.Has("signal"))
}

func TestSearchReproducible(t *testing.T) {
	s := waveSeries(300)
	opt := Options{Trials: 30, Seed: 7, StartingCapital: 100000, MinClosedTrades: 1}

	b1, r1, err1 := Search(s, opt)
	b2, r2, err2 := Search(s, opt)

	assert.Equal(t, err1, err2)
	assert.Equal(t, r1, r2)
	if err1 == nil {
		assert.Equal(t, b1.Params, b2.Params)
		assert.InDelta(t, b1.Calmar, b2.Calmar, 1e-12)
	}
}

func TestSearchNoFeasibleTrial(t *testing.T) {
	s := waveSeries(300)

	// No candidate can close a million trades.
	_, rejected, err := Search(s, Options{Trials: 5, Seed: 1, MinClosedTrades: 1_000_000})
	assert.True(t, errors.Is(err, ErrNoFeasibleTrial))
	assert.Equal(t, 5, rejected)
}

func TestSummaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "summary.json")

	s := Summary{
		BestValue: 1.25,
		BestParams: Params{
			RSIPeriod: 14, RSIOverbought: 70, RSIOversold: 30,
			MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
			BBPeriod: 20, BBDev: 2,
			LotSize: 1, StopLossFraction: 0.02, TakeProfitFraction: 0.04,
		},
		CashTest: 105000,
		MetricsTest: metrics.Metrics{
			TotalReturn: 0.05,
			WinRate:     math.NaN(), // scrubbed to 0 on save
		},
	}
	assert.NoError(t, SaveSummary(s, path))

	got, err := LoadSummary(path)
	assert.NoError(t, err)
	assert.Equal(t, s.BestParams, got.BestParams)
	assert.InDelta(t, 1.25, got.BestValue, 1e-9)
	assert.Equal(t, 0.0, got.MetricsTest.WinRate)
}

func TestLoadSummaryMissingFile(t *testing.T) {
	_, err := LoadSummary(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}
