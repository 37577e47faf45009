package engine

import "fmt"

// Config holds the engine's trading parameters.
type Config struct {
	// StopLossFraction is the fractional distance from entry to stop-loss.
	StopLossFraction float64 `json:"stop_loss_fraction" yaml:"stop_loss_fraction"`

	// TakeProfitFraction is the fractional distance from entry to take-profit.
	TakeProfitFraction float64 `json:"take_profit_fraction" yaml:"take_profit_fraction"`

	// LotSize is the fixed quantity per position.
	LotSize float64 `json:"lot_size" yaml:"lot_size"`

	// CommissionRate is the fraction of notional charged on every open and close.
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`

	// PriceField names the input field holding the price.
	PriceField string `json:"price_field" yaml:"price_field"`

	// StartingCapital is the initial cash balance.
	StartingCapital float64 `json:"starting_capital" yaml:"starting_capital"`
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() Config {
	return Config{
		StopLossFraction:   0.02,
		TakeProfitFraction: 0.04,
		LotSize:            1.0,
		CommissionRate:     0.125 / 100,
		PriceField:         "close",
		StartingCapital:    1_000_000,
	}
}

// Validate checks the configuration for values the simulation cannot run with.
func (c Config) Validate() error {
	if c.StopLossFraction <= 0 || c.StopLossFraction >= 1 {
		return fmt.Errorf("stop_loss_fraction must be in (0, 1), got %v", c.StopLossFraction)
	}
	if c.TakeProfitFraction <= 0 || c.TakeProfitFraction >= 1 {
		return fmt.Errorf("take_profit_fraction must be in (0, 1), got %v", c.TakeProfitFraction)
	}
	if c.LotSize <= 0 {
		return fmt.Errorf("lot_size must be positive, got %v", c.LotSize)
	}
	if c.CommissionRate < 0 || c.CommissionRate >= 1 {
		return fmt.Errorf("commission_rate must be in [0, 1), got %v", c.CommissionRate)
	}
	if c.PriceField == "" {
		return fmt.Errorf("price_field is required")
	}
	if c.StartingCapital <= 0 {
		return fmt.Errorf("starting_capital must be positive, got %v", c.StartingCapital)
	}
	return nil
}
