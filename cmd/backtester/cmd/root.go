package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "A signal-driven trade-simulation and research tool",
	Long: `Backtester simulates a voting indicator strategy over historical bar data.

It provides tools for:
  - Crafting discrete signals from RSI, MACD and Bollinger Bands
  - Simulating leveraged-free long/short trading with fixed SL/TP exits
  - Computing performance metrics from the resulting equity curve
  - Searching indicator and engine parameters for the best Calmar ratio
  - Downloading historical kline archives from Binance Vision`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
