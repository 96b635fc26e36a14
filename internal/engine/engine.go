package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rohan-0202/QuantForge/internal/ledger"
	"github.com/rohan-0202/QuantForge/types"
)

// Engine wires the data store, the portfolio and the strategy together and
// owns one backtest run end to end.
type Engine struct {
	db        dataStore
	cfg       *BacktestConfig
	portfolio *ledger.Portfolio
	strategy  Strategy
	log       *zap.Logger
}

func NewEngine(cfg *BacktestConfig, portfolio *ledger.Portfolio, strat Strategy, db dataStore, log *zap.Logger) *Engine {
	return &Engine{
		db:        db,
		cfg:       cfg,
		portfolio: portfolio,
		strategy:  strat,
		log:       log,
	}
}

// Run loads history, steps the simulation across every trading day in range
// and returns the final metrics summary.
func (e *Engine) Run(ctx context.Context) (ledger.Summary, error) {
	data, err := e.loadData(ctx)
	if err != nil {
		return ledger.Summary{}, err
	}

	dates := tradingDatesInRange(data, e.portfolio.StartDate(), e.cfg.End())
	if len(dates) == 0 {
		return ledger.Summary{}, NoTradingDatesErr
	}
	e.log.Info("running backtest",
		zap.String("strategy", e.strategy.Name()),
		zap.Time("start", e.portfolio.StartDate()),
		zap.Time("end", e.cfg.End()),
		zap.Int("tradingDays", len(dates)))

	metrics := ledger.NewPortfolioMetrics(e.portfolio)
	bt := newBacktester(e.portfolio, e.strategy, metrics, data, dates, e.log, e.cfg.Progress)
	if err := bt.run(); err != nil {
		return ledger.Summary{}, err
	}

	if e.cfg.ValueCSVPath != "" {
		if err := writeValueHistoryCSVFile(e.cfg.ValueCSVPath, metrics.ValueHistory()); err != nil {
			return ledger.Summary{}, err
		}
	}

	summary, err := metrics.Final(e.cfg.RiskFreeRate, e.cfg.PeriodsPerYear)
	if err != nil {
		return ledger.Summary{}, fmt.Errorf("final metrics: %w", err)
	}
	return summary, nil
}

// loadData fetches every declared data series for every allowed item,
// reaching back far enough before the start date to cover the strategy's
// lookback window.
func (e *Engine) loadData(ctx context.Context) (Dataset, error) {
	requirements, lookbackDays := e.strategy.DataRequirements()
	histStart := e.portfolio.StartDate().AddDate(0, 0, -lookbackDays)
	end := e.cfg.End()

	data := make(Dataset)
	for _, item := range e.portfolio.AllowedItems() {
		itemData := make(ItemData, len(requirements))
		for _, req := range requirements {
			series, err := e.loadSeries(ctx, item, req, histStart, end)
			if err != nil {
				return nil, fmt.Errorf("load %s for %s: %w", req, item, err)
			}
			itemData[req] = series
		}
		data[item] = itemData
	}
	return data, nil
}

func (e *Engine) loadSeries(ctx context.Context, item types.TradeableItem, req types.DataRequirement, start, end time.Time) (Series, error) {
	switch req {
	case types.DataRequirementBars:
		bars, err := e.db.FetchTickerBars(ctx, item.ID, start, end)
		if err != nil {
			return nil, err
		}
		return BarSeries(bars), nil
	case types.DataRequirementOptions:
		quotes, err := e.db.FetchOptionSnapshots(ctx, item.ID, start, end)
		if err != nil {
			return nil, err
		}
		return OptionSeries(quotes), nil
	default:
		return nil, UnsupportedRequirementErr
	}
}

// tradingDatesInRange intersects the dataset's trading days with the
// simulation window.
func tradingDatesInRange(data Dataset, start, end time.Time) []time.Time {
	all := TradingDates(data)
	dates := make([]time.Time, 0, len(all))
	for _, d := range all {
		if d.Before(start) || d.After(end) {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}
