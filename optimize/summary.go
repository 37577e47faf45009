package optimize

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/quantbench/backtester/metrics"
)

// Summary is the persisted outcome of a search plus its holdout evaluation.
type Summary struct {
	BestValue   float64         `json:"best_value"`
	BestParams  Params          `json:"best_params"`
	CashTest    float64         `json:"cash_test"`
	MetricsTest metrics.Metrics `json:"metrics_test"`
}

// SaveSummary writes the summary as indented JSON, creating parent
// directories as needed. JSON has no NaN, so unset metrics are written as 0.
func SaveSummary(s Summary, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	s.BestValue = scrub(s.BestValue)
	s.CashTest = scrub(s.CashTest)
	s.MetricsTest = scrubMetrics(s.MetricsTest)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadSummary reads a summary previously written by SaveSummary.
func LoadSummary(path string) (Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Summary{}, err
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return Summary{}, err
	}
	return s, nil
}

func scrub(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func scrubMetrics(m metrics.Metrics) metrics.Metrics {
	m.TotalReturn = scrub(m.TotalReturn)
	m.SharpeRatio = scrub(m.SharpeRatio)
	m.SortinoRatio = scrub(m.SortinoRatio)
	m.MaxDrawdown = scrub(m.MaxDrawdown)
	m.CalmarRatio = scrub(m.CalmarRatio)
	m.WinRate = scrub(m.WinRate)
	return m
}
