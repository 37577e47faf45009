// Package signals derives discrete trading signals from price indicators.
package signals

import (
	"fmt"

	"github.com/quantbench/backtester/indicators"
	"github.com/quantbench/backtester/market"
)

// Config holds the indicator parameters behind the vote.
type Config struct {
	PriceField string `json:"price_field" yaml:"price_field"`

	RSIPeriod     int     `json:"rsi_period" yaml:"rsi_period"`
	RSIOverbought float64 `json:"rsi_overbought" yaml:"rsi_overbought"`
	RSIOversold   float64 `json:"rsi_oversold" yaml:"rsi_oversold"`

	MACDFast   int `json:"macd_fast" yaml:"macd_fast"`
	MACDSlow   int `json:"macd_slow" yaml:"macd_slow"`
	MACDSignal int `json:"macd_signal" yaml:"macd_signal"`

	BBPeriod int     `json:"bb_period" yaml:"bb_period"`
	BBDev    float64 `json:"bb_dev" yaml:"bb_dev"`
}

// DefaultConfig returns the standard indicator parameters.
func DefaultConfig() Config {
	return Config{
		PriceField:    "close",
		RSIPeriod:     10,
		RSIOverbought: 76,
		RSIOversold:   26,
		MACDFast:      12,
		MACDSlow:      26,
		MACDSignal:    9,
		BBPeriod:      25,
		BBDev:         2.032004,
	}
}

// Validate checks the configuration for parameter values the indicators
// cannot be built with.
func (c Config) Validate() error {
	if c.RSIPeriod <= 0 {
		return fmt.Errorf("rsi_period must be positive, got %d", c.RSIPeriod)
	}
	if c.RSIOversold >= c.RSIOverbought {
		return fmt.Errorf("rsi_oversold (%v) must be below rsi_overbought (%v)", c.RSIOversold, c.RSIOverbought)
	}
	if c.MACDFast <= 0 || c.MACDSlow <= 0 || c.MACDSignal <= 0 {
		return fmt.Errorf("macd periods must be positive")
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	if c.BBPeriod <= 0 {
		return fmt.Errorf("bb_period must be positive, got %d", c.BBPeriod)
	}
	if c.BBDev <= 0 {
		return fmt.Errorf("bb_dev must be positive, got %v", c.BBDev)
	}
	return nil
}

// Craft computes RSI, MACD and Bollinger votes for every bar and attaches
// the 2-of-3 majority signal to the series in place.
//
// Vote rules:
//   - RSI: below oversold +1, above overbought -1
//   - MACD: line above signal +1, below -1
//   - Bollinger: price below lower band +1, above upper band -1
//
// Indicators still warming up vote 0, so early bars always read hold.
func Craft(series *market.Series, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	field := cfg.PriceField
	if field == "" {
		field = "close"
	}
	if !series.Has(field) {
		return &market.MissingFieldError{Field: field}
	}

	rsi := indicators.NewRSI(cfg.RSIPeriod)
	macd := indicators.NewMACD(cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	bb := indicators.NewBollinger(cfg.BBPeriod, cfg.BBDev)

	for i := range series.Bars {
		price, err := series.Bars[i].Field(field)
		if err != nil {
			return err
		}

		rsi.Update(price)
		macd.Update(price)
		bb.Update(price)

		votes := 0
		if rsi.Ready() {
			switch v := rsi.Value(); {
			case v < cfg.RSIOversold:
				votes++
			case v > cfg.RSIOverbought:
				votes--
			}
		}
		if macd.Ready() {
			switch line, sig := macd.Value(), macd.Signal(); {
			case line > sig:
				votes++
			case line < sig:
				votes--
			}
		}
		if bb.Ready() {
			switch {
			case price < bb.Lower():
				votes++
			case price > bb.Upper():
				votes--
			}
		}

		switch {
		case votes >= 2:
			series.Bars[i].Signal = 1
		case votes <= -2:
			series.Bars[i].Signal = -1
		default:
			series.Bars[i].Signal = 0
		}
	}

	series.MarkField("signal")
	return nil
}
