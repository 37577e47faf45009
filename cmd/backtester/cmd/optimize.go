package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbench/backtester/market"
	"github.com/quantbench/backtester/metrics"
	"github.com/quantbench/backtester/optimize"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Random-search parameters for the best Calmar ratio",
	Long: `Optimize splits the dataset chronologically into train/test/validation
slices, random-searches indicator and engine parameters on the training
slice, re-evaluates the winner on the test slice, and saves a JSON summary.

Example:
  backtester optimize --csv data/BTCUSDT_hourly.csv --trials 500 --out results/summary.json`,
	RunE: runOptimize,
}

var (
	optCSVPath    string
	optTrials     int
	optSeed       int64
	optMinClosed  int
	optCommission float64
	optCapital    float64
	optPriceField string
	optOutPath    string
	optTrainRatio float64
	optTestRatio  float64
)

func init() {
	rootCmd.AddCommand(optimizeCmd)

	optimizeCmd.Flags().StringVarP(&optCSVPath, "csv", "f", "", "path to bar CSV (required)")
	optimizeCmd.Flags().IntVarP(&optTrials, "trials", "n", 200, "number of random candidates")
	optimizeCmd.Flags().Int64Var(&optSeed, "seed", 42, "PRNG seed for reproducible searches")
	optimizeCmd.Flags().IntVar(&optMinClosed, "min-trades", 5, "minimum closed trades for a candidate to count")
	optimizeCmd.Flags().Float64Var(&optCommission, "commission", 0.125/100, "commission rate per open/close")
	optimizeCmd.Flags().Float64Var(&optCapital, "capital", 1_000_000, "starting capital")
	optimizeCmd.Flags().StringVar(&optPriceField, "price-field", "close", "input field holding the price")
	optimizeCmd.Flags().StringVarP(&optOutPath, "out", "o", "results/summary.json", "path for the JSON summary")
	optimizeCmd.Flags().Float64Var(&optTrainRatio, "train", 0.6, "training slice ratio")
	optimizeCmd.Flags().Float64Var(&optTestRatio, "test", 0.2, "test slice ratio")
	_ = optimizeCmd.MarkFlagRequired("csv")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	series, err := market.LoadCSV(optCSVPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", optCSVPath, err)
	}

	train, test, val, err := optimize.Split(series, optTrainRatio, optTestRatio, 1-optTrainRatio-optTestRatio)
	if err != nil {
		return err
	}
	log.Info().
		Int("train", train.Len()).
		Int("test", test.Len()).
		Int("validation", val.Len()).
		Msg("dataset split")

	opt := optimize.Options{
		Trials:          optTrials,
		Seed:            optSeed,
		MinClosedTrades: optMinClosed,
		CommissionRate:  optCommission,
		StartingCapital: optCapital,
		PriceField:      optPriceField,
		BarsPerYear:     metrics.HoursPerYear,
	}

	best, rejected, err := optimize.Search(train, opt)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	log.Info().
		Int("trials", optTrials).
		Int("rejected", rejected).
		Float64("calmar", best.Calmar).
		Int("closed_trades", best.ClosedTrades).
		Msg("search complete")

	holdout, err := optimize.Evaluate(test, best.Params, opt)
	if err != nil {
		return fmt.Errorf("holdout evaluation: %w", err)
	}

	fmt.Printf("Best Calmar (train): %.4f over %d closed trades\n", best.Calmar, best.ClosedTrades)
	fmt.Printf("Holdout Calmar:      %.4f, final cash %.2f\n", holdout.Calmar, holdout.FinalCash)
	fmt.Printf("Params: RSI %d/%.0f/%.0f  MACD %d/%d/%d  BB %d/%.3f  lot %.3f  SL %.3f  TP %.3f\n",
		best.Params.RSIPeriod, best.Params.RSIOverbought, best.Params.RSIOversold,
		best.Params.MACDFast, best.Params.MACDSlow, best.Params.MACDSignal,
		best.Params.BBPeriod, best.Params.BBDev,
		best.Params.LotSize, best.Params.StopLossFraction, best.Params.TakeProfitFraction)

	summary := optimize.Summary{
		BestValue:   best.Calmar,
		BestParams:  best.Params,
		CashTest:    holdout.FinalCash,
		MetricsTest: holdout.Metrics,
	}
	if err := optimize.SaveSummary(summary, optOutPath); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	log.Info().Str("path", optOutPath).Msg("summary saved")
	return nil
}
