package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohan-0202/QuantForge/types"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backtest.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
database_url: postgres://localhost:5432/quantforge
strategy: rsi
tickers:
  - ticker: AAPL
  - ticker: BTC-USD
    asset_class: CRYPTOCURRENCY
initial_cash: 100000
start_date: 2023-01-01
end_date: 2023-06-30
allow_short: true
risk_free_rate: 0.02
value_history_csv: values.csv
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, validConfig))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Strategy != "rsi" {
		t.Errorf("Strategy = %q", cfg.Strategy)
	}
	if !cfg.Start().Equal(testDay("2023-01-01")) || !cfg.End().Equal(testDay("2023-06-30")) {
		t.Errorf("parsed range %v - %v", cfg.Start(), cfg.End())
	}
	if !cfg.AllowShort || cfg.AllowMargin {
		t.Errorf("flags: short=%v margin=%v", cfg.AllowShort, cfg.AllowMargin)
	}
	if cfg.PeriodsPerYear != defaultPeriodsPerYear {
		t.Errorf("PeriodsPerYear = %d, want the default", cfg.PeriodsPerYear)
	}

	items := cfg.Items()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0] != (types.TradeableItem{ID: "AAPL", AssetClass: types.AssetClassEquity}) {
		t.Errorf("items[0] = %+v, bare tickers should default to equities", items[0])
	}
	if items[1] != (types.TradeableItem{ID: "BTC-USD", AssetClass: types.AssetClassCrypto}) {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestLoadConfigOpenEndedRange(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, `
database_url: postgres://localhost:5432/quantforge
strategy: rsi
tickers:
  - ticker: AAPL
initial_cash: 100000
start_date: 2023-01-01
`))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.End().Before(cfg.Start()) {
		t.Errorf("open-ended end %v precedes start %v", cfg.End(), cfg.Start())
	}
}

func TestLoadConfigPeriodsPerYear(t *testing.T) {
	base := "database_url: x\nstrategy: rsi\ntickers: [{ticker: AAPL}]\ninitial_cash: 1000\nstart_date: 2023-01-01\n"
	tests := []struct {
		name string
		yaml string
		want int
	}{
		{"absent defaults", base, defaultPeriodsPerYear},
		{"non-positive defaults", base + "periods_per_year: -5\n", defaultPeriodsPerYear},
		{"explicit value kept", base + "periods_per_year: 365\n", 365},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfigFile(t, tt.yaml))
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			if cfg.PeriodsPerYear != tt.want {
				t.Errorf("PeriodsPerYear = %d, want %d", cfg.PeriodsPerYear, tt.want)
			}
		})
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			"missing database url",
			"strategy: rsi\ntickers: [{ticker: AAPL}]\ninitial_cash: 1000\nstart_date: 2023-01-01\n",
			MissingDSNErr,
		},
		{
			"missing strategy",
			"database_url: x\ntickers: [{ticker: AAPL}]\ninitial_cash: 1000\nstart_date: 2023-01-01\n",
			NoStrategyErr,
		},
		{
			"no tickers",
			"database_url: x\nstrategy: rsi\ninitial_cash: 1000\nstart_date: 2023-01-01\n",
			NoTickersErr,
		},
		{
			"zero cash",
			"database_url: x\nstrategy: rsi\ntickers: [{ticker: AAPL}]\nstart_date: 2023-01-01\n",
			InvalidCashErr,
		},
		{
			"bad start date",
			"database_url: x\nstrategy: rsi\ntickers: [{ticker: AAPL}]\ninitial_cash: 1000\nstart_date: Jan 1 2023\n",
			InvalidDateErr,
		},
		{
			"bad end date",
			"database_url: x\nstrategy: rsi\ntickers: [{ticker: AAPL}]\ninitial_cash: 1000\nstart_date: 2023-01-01\nend_date: soon\n",
			InvalidDateErr,
		},
		{
			"inverted range",
			"database_url: x\nstrategy: rsi\ntickers: [{ticker: AAPL}]\ninitial_cash: 1000\nstart_date: 2023-06-01\nend_date: 2023-01-01\n",
			DateRangeErr,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadConfig error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
