package engine

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rohan-0202/QuantForge/types"
)

var (
	NoTickersErr   = errors.New("at least one ticker must be configured")
	NoStrategyErr  = errors.New("strategy name must be configured")
	InvalidCashErr = errors.New("initial cash must be positive")
	DateRangeErr   = errors.New("end date must not precede start date")
	InvalidDateErr = errors.New("dates must use the YYYY-MM-DD format")
	MissingDSNErr  = errors.New("database url must be configured")
)

const defaultPeriodsPerYear = 252

// TickerConfig names one instrument of the backtest universe.
type TickerConfig struct {
	Ticker     string `yaml:"ticker"`
	AssetClass string `yaml:"asset_class"`
}

// BacktestConfig is the YAML-backed description of one backtest run.
type BacktestConfig struct {
	DatabaseURL    string         `yaml:"database_url"`
	Strategy       string         `yaml:"strategy"`
	Tickers        []TickerConfig `yaml:"tickers"`
	InitialCash    float64        `yaml:"initial_cash"`
	StartDate      string         `yaml:"start_date"`
	EndDate        string         `yaml:"end_date"`
	AllowMargin    bool           `yaml:"allow_margin"`
	AllowShort     bool           `yaml:"allow_short"`
	RiskFreeRate   float64        `yaml:"risk_free_rate"`
	PeriodsPerYear int            `yaml:"periods_per_year"`
	ValueCSVPath   string         `yaml:"value_history_csv"`
	Progress       bool           `yaml:"progress"`

	start time.Time
	end   time.Time
}

// LoadConfig reads, parses and validates a backtest configuration file.
func LoadConfig(path string) (*BacktestConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &BacktestConfig{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.PeriodsPerYear <= 0 {
		cfg.PeriodsPerYear = defaultPeriodsPerYear
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *BacktestConfig) validate() error {
	if c.DatabaseURL == "" {
		return MissingDSNErr
	}
	if c.Strategy == "" {
		return NoStrategyErr
	}
	if len(c.Tickers) == 0 {
		return NoTickersErr
	}
	if c.InitialCash <= 0 {
		return InvalidCashErr
	}

	start, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return fmt.Errorf("start_date %q: %w", c.StartDate, InvalidDateErr)
	}
	c.start = start

	if c.EndDate == "" {
		// Open-ended run: simulate through the latest available data.
		c.end = DayOf(time.Now())
	} else {
		end, err := time.Parse("2006-01-02", c.EndDate)
		if err != nil {
			return fmt.Errorf("end_date %q: %w", c.EndDate, InvalidDateErr)
		}
		c.end = end
	}
	if c.end.Before(c.start) {
		return DateRangeErr
	}
	return nil
}

// Start returns the parsed simulation start date.
func (c *BacktestConfig) Start() time.Time { return c.start }

// End returns the parsed simulation end date.
func (c *BacktestConfig) End() time.Time { return c.end }

// Items maps the configured tickers onto tradeable items. Unknown asset
// class strings default to equities.
func (c *BacktestConfig) Items() []types.TradeableItem {
	items := make([]types.TradeableItem, 0, len(c.Tickers))
	for _, t := range c.Tickers {
		class := types.AssetClass(t.AssetClass)
		if class == "" {
			class = types.AssetClassEquity
		}
		items = append(items, types.TradeableItem{ID: t.Ticker, AssetClass: class})
	}
	return items
}
