package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantbench/backtester/market"
	"github.com/quantbench/backtester/signals"
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Craft indicator signals and print a summary",
	Long: `Signals loads a bar CSV, computes RSI, MACD and Bollinger Band votes,
and prints how often each discrete signal fires. Use it to sanity check
indicator parameters before running a full simulation.`,
	RunE: runSignals,
}

var (
	sigCSVPath       string
	sigPriceField    string
	sigRSIPeriod     int
	sigRSIOverbought float64
	sigRSIOversold   float64
	sigMACDFast      int
	sigMACDSlow      int
	sigMACDSignal    int
	sigBBPeriod      int
	sigBBDev         float64
)

func init() {
	rootCmd.AddCommand(signalsCmd)

	signalsCmd.Flags().StringVarP(&sigCSVPath, "csv", "f", "", "path to bar CSV (required)")
	signalsCmd.Flags().StringVar(&sigPriceField, "price-field", "close", "input field holding the price")
	signalsCmd.Flags().IntVar(&sigRSIPeriod, "rsi-period", 10, "RSI lookback period")
	signalsCmd.Flags().Float64Var(&sigRSIOverbought, "rsi-overbought", 76, "RSI overbought threshold")
	signalsCmd.Flags().Float64Var(&sigRSIOversold, "rsi-oversold", 26, "RSI oversold threshold")
	signalsCmd.Flags().IntVar(&sigMACDFast, "macd-fast", 12, "MACD fast EMA period")
	signalsCmd.Flags().IntVar(&sigMACDSlow, "macd-slow", 26, "MACD slow EMA period")
	signalsCmd.Flags().IntVar(&sigMACDSignal, "macd-signal", 9, "MACD signal EMA period")
	signalsCmd.Flags().IntVar(&sigBBPeriod, "bb-period", 25, "Bollinger Band period")
	signalsCmd.Flags().Float64Var(&sigBBDev, "bb-dev", 2.032004, "Bollinger Band width in standard deviations")
	_ = signalsCmd.MarkFlagRequired("csv")
}

func runSignals(cmd *cobra.Command, args []string) error {
	cfg := signals.Config{
		PriceField:    sigPriceField,
		RSIPeriod:     sigRSIPeriod,
		RSIOverbought: sigRSIOverbought,
		RSIOversold:   sigRSIOversold,
		MACDFast:      sigMACDFast,
		MACDSlow:      sigMACDSlow,
		MACDSignal:    sigMACDSignal,
		BBPeriod:      sigBBPeriod,
		BBDev:         sigBBDev,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	series, err := market.LoadCSV(sigCSVPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", sigCSVPath, err)
	}
	if err := signals.Craft(series, cfg); err != nil {
		return fmt.Errorf("craft signals: %w", err)
	}

	fmt.Printf("Bars: %d\n", series.Len())
	signals.Summarize(series).Print(os.Stdout)
	return nil
}
