// Package optimize searches signal and engine parameters for the best
// risk-adjusted return.
package optimize

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/quantbench/backtester/engine"
	"github.com/quantbench/backtester/market"
	"github.com/quantbench/backtester/metrics"
	"github.com/quantbench/backtester/signals"
)

// Params is one candidate parameter set: the indicator settings plus the
// engine's position sizing and exit thresholds.
type Params struct {
	RSIPeriod     int     `json:"rsi_period"`
	RSIOverbought float64 `json:"rsi_overbought"`
	RSIOversold   float64 `json:"rsi_oversold"`

	MACDFast   int `json:"macd_fast"`
	MACDSlow   int `json:"macd_slow"`
	MACDSignal int `json:"macd_signal"`

	BBPeriod int     `json:"bb_period"`
	BBDev    float64 `json:"bb_dev"`

	LotSize            float64 `json:"lot_size"`
	StopLossFraction   float64 `json:"stop_loss_fraction"`
	TakeProfitFraction float64 `json:"take_profit_fraction"`
}

// Options controls a search run.
type Options struct {
	Trials          int   // candidate count, 200 if <= 0
	Seed            int64 // PRNG seed for reproducible searches
	MinClosedTrades int   // candidates closing fewer trades are rejected, 5 if <= 0

	CommissionRate  float64
	StartingCapital float64
	PriceField      string

	RiskFreeAnnual float64
	BarsPerYear    int // metrics.HoursPerYear if <= 0
}

// Trial is one evaluated candidate.
type Trial struct {
	Params       Params          `json:"params"`
	Calmar       float64         `json:"calmar"`
	ClosedTrades int             `json:"closed_trades"`
	FinalCash    float64         `json:"final_cash"`
	Metrics      metrics.Metrics `json:"metrics"`
}

// InvalidConfigError marks a candidate whose parameters could not be
// evaluated at all. The search treats it as a rejected trial rather than a
// fatal error; there is no magic penalty value.
type InvalidConfigError struct {
	Params Params
	Err    error
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// ErrNoFeasibleTrial is returned when every candidate was rejected.
var ErrNoFeasibleTrial = errors.New("no feasible trial")

// Split divides the series chronologically into train/test/validation
// slices. Ratios must be positive; if they do not sum to 1 the validation
// share absorbs the remainder.
func Split(s *market.Series, trainRatio, testRatio, valRatio float64) (train, test, val *market.Series, err error) {
	n := s.Len()
	if n < 10 {
		return nil, nil, nil, fmt.Errorf("series too small to split: %d bars", n)
	}
	if trainRatio+testRatio+valRatio != 1.0 {
		valRatio = 1.0 - trainRatio - testRatio
	}
	if trainRatio <= 0 || testRatio <= 0 || valRatio <= 0 {
		return nil, nil, nil, fmt.Errorf("split ratios must be positive and sum to 1")
	}

	trainEnd := int(float64(n) * trainRatio)
	testEnd := int(float64(n) * (trainRatio + testRatio))
	return s.Slice(0, trainEnd), s.Slice(trainEnd, testEnd), s.Slice(testEnd, n), nil
}

// Evaluate crafts signals with p on a copy of the series, runs the engine,
// and computes metrics. Parameter sets the pipeline rejects come back as
// *InvalidConfigError.
func Evaluate(series *market.Series, p Params, opt Options) (Trial, error) {
	barsPerYear := opt.BarsPerYear
	if barsPerYear <= 0 {
		barsPerYear = metrics.HoursPerYear
	}
	field := opt.PriceField
	if field == "" {
		field = "close"
	}

	sigCfg := signals.Config{
		PriceField:    field,
		RSIPeriod:     p.RSIPeriod,
		RSIOverbought: p.RSIOverbought,
		RSIOversold:   p.RSIOversold,
		MACDFast:      p.MACDFast,
		MACDSlow:      p.MACDSlow,
		MACDSignal:    p.MACDSignal,
		BBPeriod:      p.BBPeriod,
		BBDev:         p.BBDev,
	}

	engCfg := engine.DefaultConfig()
	engCfg.PriceField = field
	engCfg.LotSize = p.LotSize
	engCfg.StopLossFraction = p.StopLossFraction
	engCfg.TakeProfitFraction = p.TakeProfitFraction
	if opt.CommissionRate > 0 {
		engCfg.CommissionRate = opt.CommissionRate
	}
	if opt.StartingCapital > 0 {
		engCfg.StartingCapital = opt.StartingCapital
	}
	if err := engCfg.Validate(); err != nil {
		return Trial{}, &InvalidConfigError{Params: p, Err: err}
	}

	work := series.Clone()
	if err := signals.Craft(work, sigCfg); err != nil {
		return Trial{}, &InvalidConfigError{Params: p, Err: err}
	}

	res, err := engine.New(engCfg).Run(work)
	if err != nil {
		return Trial{}, &InvalidConfigError{Params: p, Err: err}
	}

	equity := res.Equity()
	m := metrics.All(equity, res.TradePnLs(), opt.RiskFreeAnnual, barsPerYear)

	return Trial{
		Params:       p,
		Calmar:       m.CalmarRatio,
		ClosedTrades: res.ClosedTrades(),
		FinalCash:    res.FinalCash,
		Metrics:      m,
	}, nil
}

// Search draws random candidates from the standard ranges and returns the
// one with the highest Calmar ratio on the series. Rejected counts both
// invalid configurations and candidates failing the closed-trades or
// finite-Calmar filters. Returns ErrNoFeasibleTrial when nothing passes.
func Search(series *market.Series, opt Options) (best Trial, rejected int, err error) {
	trials := opt.Trials
	if trials <= 0 {
		trials = 200
	}
	minClosed := opt.MinClosedTrades
	if minClosed <= 0 {
		minClosed = 5
	}

	rng := rand.New(rand.NewSource(opt.Seed))
	found := false

	for i := 0; i < trials; i++ {
		p := randomParams(rng)

		tr, err := Evaluate(series, p, opt)
		if err != nil {
			var ice *InvalidConfigError
			if errors.As(err, &ice) {
				rejected++
				continue
			}
			return Trial{}, rejected, err
		}
		if tr.ClosedTrades < minClosed || math.IsNaN(tr.Calmar) || math.IsInf(tr.Calmar, 0) {
			rejected++
			continue
		}
		if !found || tr.Calmar > best.Calmar {
			best = tr
			found = true
		}
	}

	if !found {
		return Trial{}, rejected, ErrNoFeasibleTrial
	}
	return best, rejected, nil
}

// randomParams samples the standard search ranges.
func randomParams(rng *rand.Rand) Params {
	return Params{
		RSIPeriod:     intIn(rng, 20, 76),
		RSIOverbought: float64(intIn(rng, 65, 80)),
		RSIOversold:   float64(intIn(rng, 20, 26)),

		MACDFast:   intIn(rng, 10, 14),
		MACDSlow:   intIn(rng, 15, 25),
		MACDSignal: intIn(rng, 5, 7),

		BBPeriod: intIn(rng, 10, 25),
		BBDev:    floatIn(rng, 1.5, 3.0),

		LotSize:            floatIn(rng, 0.5, 4.0),
		StopLossFraction:   floatIn(rng, 0.03, 0.06),
		TakeProfitFraction: floatIn(rng, 0.04, 0.15),
	}
}

func intIn(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

func floatIn(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
