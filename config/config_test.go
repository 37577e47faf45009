package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFileYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
data:
  csv: /tmp/bars.csv
engine:
  stop_loss_fraction: 0.03
  take_profit_fraction: 0.06
  lot_size: 2
  commission_rate: 0.001
  price_field: close
  starting_capital: 500000
journal:
  type: sqlite
  db_path: /tmp/test.db
`)

	cfg, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/bars.csv", cfg.Data.CSV)
	assert.Equal(t, 0.03, cfg.Engine.StopLossFraction)
	assert.Equal(t, 2.0, cfg.Engine.LotSize)
	assert.Equal(t, "sqlite", cfg.Journal.Type)

	// Unset signal parameters keep their defaults.
	assert.Equal(t, 10, cfg.Signals.RSIPeriod)
}

func TestLoadFromFileJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{
  "data": {"csv": "/tmp/bars.csv"},
  "engine": {
    "stop_loss_fraction": 0.02,
    "take_profit_fraction": 0.04,
    "lot_size": 1,
    "commission_rate": 0.00125,
    "price_field": "close",
    "starting_capital": 1000000
  }
}`)

	cfg, err := LoadFromFile(path)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp/bars.csv", cfg.Data.CSV)
	assert.Equal(t, 0.02, cfg.Engine.StopLossFraction)
}

func TestLoadFromFileInvalidValues(t *testing.T) {
	path := writeFile(t, "config.yaml", `
engine:
  stop_loss_fraction: -1
`)
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileGarbage(t *testing.T) {
	path := writeFile(t, "config.yaml", "::: not a config {{{")
	_, err := LoadFromFile(path)
	assert.Error(t, err)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestValidateJournal(t *testing.T) {
	cfg := Default()
	cfg.Journal.Type = "csv"
	assert.Error(t, cfg.Validate())

	cfg.Journal.TradesFile = "/tmp/t.csv"
	cfg.Journal.EquityFile = "/tmp/e.csv"
	assert.NoError(t, cfg.Validate())

	cfg.Journal = JournalConfig{Type: "sqlite"}
	assert.Error(t, cfg.Validate())

	cfg.Journal.DBPath = "/tmp/j.db"
	assert.NoError(t, cfg.Validate())

	cfg.Journal = JournalConfig{Type: "kafka"}
	assert.Error(t, cfg.Validate())
}

func TestSaveToFileRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Data.CSV = "/tmp/bars.csv"
	cfg.Engine.LotSize = 3

	for _, name := range []string{"out.yaml", "out.json"} {
		path := filepath.Join(dir, name)
		assert.NoError(t, cfg.SaveToFile(path))

		got, err := LoadFromFile(path)
		assert.NoError(t, err)
		assert.Equal(t, cfg.Data.CSV, got.Data.CSV)
		assert.Equal(t, 3.0, got.Engine.LotSize)
	}
}
