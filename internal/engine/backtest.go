package engine

import (
	"errors"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rohan-0202/QuantForge/internal/ledger"
	"github.com/rohan-0202/QuantForge/types"
)

var NoTradingDatesErr = errors.New("no trading dates in simulation range")

type backtester struct {
	portfolio *ledger.Portfolio
	strategy  Strategy
	metrics   *ledger.PortfolioMetrics
	data      Dataset
	dates     []time.Time
	log       *zap.Logger
	progress  bool
}

func newBacktester(portfolio *ledger.Portfolio, strat Strategy, metrics *ledger.PortfolioMetrics, data Dataset, dates []time.Time, log *zap.Logger, progress bool) *backtester {
	return &backtester{
		portfolio: portfolio,
		strategy:  strat,
		metrics:   metrics,
		data:      data,
		dates:     dates,
		log:       log,
		progress:  progress,
	}
}

// run steps the simulation one trading day at a time, in order. Each day:
// value the portfolio, mask history to the day, look up the next day's bars
// and hand both to the strategy. Valuation never sees the next day, and
// fills never use the current day's prices: the strategy already observed
// those when it formed its signal, so the earliest causal fill is the next
// day's open.
func (b *backtester) run() error {
	if len(b.dates) == 0 {
		return NoTradingDatesErr
	}

	var bar *progressbar.ProgressBar
	if b.progress {
		bar = initProgressBar(len(b.dates))
	}

	for i, day := range b.dates {
		if err := b.recordValuation(day); err != nil {
			return err
		}

		masked, err := Mask(b.data, day)
		if err != nil {
			return err
		}

		if i == len(b.dates)-1 {
			// Terminal day: no lookahead target exists, nothing to execute.
			b.log.Debug("reached last trading day", zap.Time("date", day))
			b.tick(bar)
			continue
		}

		next := dayBars(b.data, b.portfolio.AllowedItems(), b.dates[i+1])
		if len(next) == 0 {
			b.log.Warn("skipping strategy execution, no next-day data",
				zap.Time("date", day),
				zap.Time("nextDate", b.dates[i+1]))
			b.tick(bar)
			continue
		}

		if err := b.strategy.Execute(masked, next); err != nil {
			// A failed day is a no-trade day, not a dead simulation.
			b.log.Error("strategy execution failed, treating as no trade",
				zap.Time("date", day),
				zap.Error(err))
		}
		b.tick(bar)
	}
	return nil
}

// recordValuation prices the portfolio at the day's open and records it.
// With nothing held the value is just cash and is always recorded. With open
// positions, a bar is needed for every held item: pricing only part of the
// book would fabricate a value, so those days are skipped instead.
func (b *backtester) recordValuation(day time.Time) error {
	held := b.portfolio.HeldItems()
	if len(held) == 0 {
		return b.metrics.Update(day, b.portfolio.Cash())
	}

	bars := dayBars(b.data, held, day)
	if len(bars) < len(held) {
		b.log.Warn("skipping valuation, missing bars for held items",
			zap.Time("date", day),
			zap.Int("held", len(held)),
			zap.Int("priced", len(bars)))
		return nil
	}

	prices := make(map[types.TradeableItem]decimal.Decimal, len(bars))
	for item, dayBar := range bars {
		prices[item] = dayBar.Open
	}
	value, err := b.portfolio.Value(prices)
	if err != nil {
		b.log.Warn("skipping valuation", zap.Time("date", day), zap.Error(err))
		return nil
	}
	return b.metrics.Update(day, value)
}

func (b *backtester) tick(bar *progressbar.ProgressBar) {
	if bar != nil {
		bar.Add(1)
	}
}

func initProgressBar(days int) *progressbar.ProgressBar {
	return progressbar.NewOptions(days,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
