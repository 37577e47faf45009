package cmd

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/quantbench/backtester/config"
	"github.com/quantbench/backtester/engine"
	"github.com/quantbench/backtester/journal"
	"github.com/quantbench/backtester/market"
	"github.com/quantbench/backtester/metrics"
	"github.com/quantbench/backtester/signals"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: signals, simulation, metrics",
	Long: `Run loads a bar CSV, crafts RSI/MACD/Bollinger voting signals, simulates
trading with fixed stop-loss/take-profit exits, and prints performance metrics.

Example:
  backtester run --csv data/BTCUSDT_hourly.csv --stop 0.02 --tp 0.04`,
	RunE: runRun,
}

var (
	runCSVPath    string
	runConfigPath string
	runPriceField string
	runStop       float64
	runTP         float64
	runLot        float64
	runCommission float64
	runCapital    float64
	runJournal    string
	runDBPath     string
	runTradesFile string
	runEquityFile string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runCSVPath, "csv", "f", "", "path to bar CSV (required unless --config sets data.csv)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to YAML/JSON config file")
	runCmd.Flags().StringVar(&runPriceField, "price-field", "close", "input field holding the price")
	runCmd.Flags().Float64Var(&runStop, "stop", 0.02, "stop-loss fraction")
	runCmd.Flags().Float64Var(&runTP, "tp", 0.04, "take-profit fraction")
	runCmd.Flags().Float64Var(&runLot, "lot", 1.0, "fixed quantity per position")
	runCmd.Flags().Float64Var(&runCommission, "commission", 0.125/100, "commission rate per open/close")
	runCmd.Flags().Float64Var(&runCapital, "capital", 1_000_000, "starting capital")
	runCmd.Flags().StringVar(&runJournal, "journal", "", "journal type (csv, sqlite); empty disables")
	runCmd.Flags().StringVar(&runDBPath, "db", "./backtest.sqlite", "path to SQLite journal DB")
	runCmd.Flags().StringVar(&runTradesFile, "trades", "./trades.csv", "path to CSV trades journal")
	runCmd.Flags().StringVar(&runEquityFile, "equity", "./equity.csv", "path to CSV equity journal")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Data.CSV == "" {
		return fmt.Errorf("no input: pass --csv or set data.csv in the config")
	}

	series, err := market.LoadCSV(cfg.Data.CSV)
	if err != nil {
		return fmt.Errorf("load %s: %w", cfg.Data.CSV, err)
	}
	log.Info().Int("bars", series.Len()).Str("csv", cfg.Data.CSV).Msg("dataset loaded")

	if err := signals.Craft(series, cfg.Signals); err != nil {
		return fmt.Errorf("craft signals: %w", err)
	}
	summary := signals.Summarize(series)
	log.Info().
		Int("long_bars", summary.Longs).
		Int("short_bars", summary.Shorts).
		Int("long_entries", summary.LongEntries).
		Int("short_entries", summary.ShortEntries).
		Msg("signals crafted")

	eng := engine.New(cfg.Engine)

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		eng.SetJournal(j)
	}

	start := time.Now()
	res, err := eng.Run(series)
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("closed_trades", res.ClosedTrades()).
		Float64("final_cash", res.FinalCash).
		Msg("simulation complete")

	m := metrics.All(res.Equity(), res.TradePnLs(), 0, metrics.HoursPerYear)
	printReport(os.Stdout, cfg.Engine, res, m)
	return nil
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	if runConfigPath != "" {
		cfg, err := config.LoadFromFile(runConfigPath)
		if err != nil {
			return nil, err
		}
		if runCSVPath != "" {
			cfg.Data.CSV = runCSVPath
		}
		return cfg, nil
	}

	cfg := config.Default()
	cfg.Data.CSV = runCSVPath
	cfg.Engine.PriceField = runPriceField
	cfg.Signals.PriceField = runPriceField
	cfg.Engine.StopLossFraction = runStop
	cfg.Engine.TakeProfitFraction = runTP
	cfg.Engine.LotSize = runLot
	cfg.Engine.CommissionRate = runCommission
	cfg.Engine.StartingCapital = runCapital
	cfg.Journal = config.JournalConfig{
		Type:       runJournal,
		TradesFile: runTradesFile,
		EquityFile: runEquityFile,
		DBPath:     runDBPath,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "":
		return nil, nil
	case "csv":
		return journal.NewCSV(jc.TradesFile, jc.EquityFile)
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	}
	return nil, fmt.Errorf("unknown journal type %q", jc.Type)
}

func printReport(w io.Writer, cfg engine.Config, res engine.Result, m metrics.Metrics) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Bars:            %d\n", len(res.Records))
	fmt.Fprintf(w, "Closed Trades:   %d\n", res.ClosedTrades())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Engine Configuration")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Stop Loss:       %.2f%%\n", cfg.StopLossFraction*100)
	fmt.Fprintf(w, "Take Profit:     %.2f%%\n", cfg.TakeProfitFraction*100)
	fmt.Fprintf(w, "Lot Size:        %.4f\n", cfg.LotSize)
	fmt.Fprintf(w, "Commission:      %.4f%%\n", cfg.CommissionRate*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Capital:   %.2f\n", cfg.StartingCapital)
	fmt.Fprintf(w, "Final Cash:      %.2f\n", res.FinalCash)
	fmt.Fprintf(w, "Total Return:    %s\n", pct(m.TotalReturn))
	fmt.Fprintf(w, "Sharpe Ratio:    %s\n", num(m.SharpeRatio))
	fmt.Fprintf(w, "Sortino Ratio:   %s\n", num(m.SortinoRatio))
	fmt.Fprintf(w, "Max Drawdown:    %s\n", pct(m.MaxDrawdown))
	fmt.Fprintf(w, "Calmar Ratio:    %s\n", num(m.CalmarRatio))
	fmt.Fprintf(w, "Win Rate:        %s\n", pct(m.WinRate))
	fmt.Fprintln(w)
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}
