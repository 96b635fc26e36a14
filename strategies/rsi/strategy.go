package rsi

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rohan-0202/QuantForge/internal/engine"
	"github.com/rohan-0202/QuantForge/internal/ledger"
	"github.com/rohan-0202/QuantForge/types"
)

var InvalidOptionsErr = errors.New("invalid rsi strategy options")

type Options struct {
	Window     int
	Oversold   float64
	Overbought float64
}

func DefaultOptions() Options {
	return Options{Window: 14, Oversold: 30, Overbought: 70}
}

// Strategy trades RSI threshold crossings: buy when the latest RSI drops
// below the oversold level, close out when it rises above overbought.
// Buys split the available cash equally and fill whole shares at the next
// day's open.
type Strategy struct {
	portfolio *ledger.Portfolio
	opts      Options
}

func New(portfolio *ledger.Portfolio, opts Options) (*Strategy, error) {
	if opts.Window <= 1 {
		return nil, fmt.Errorf("window must be greater than 1: %w", InvalidOptionsErr)
	}
	if opts.Oversold <= 0 || opts.Oversold >= 100 || opts.Overbought <= 0 || opts.Overbought >= 100 {
		return nil, fmt.Errorf("thresholds must be between 0 and 100: %w", InvalidOptionsErr)
	}
	if opts.Oversold >= opts.Overbought {
		return nil, fmt.Errorf("oversold must be below overbought: %w", InvalidOptionsErr)
	}
	return &Strategy{portfolio: portfolio, opts: opts}, nil
}

func (s *Strategy) Name() string { return "rsi" }

func (s *Strategy) DataRequirements() ([]types.DataRequirement, int) {
	// Triple the window gives the smoothed average room to settle before the
	// first simulated day.
	return []types.DataRequirement{types.DataRequirementBars}, s.opts.Window * 3
}

func (s *Strategy) Execute(data engine.Dataset, nextDay map[types.TradeableItem]types.Bar) error {
	buys, sells := s.signals(data)

	// Sells first: closing frees the cash the buys allocate.
	for _, item := range sells {
		if err := s.closeAll(item, nextDay); err != nil {
			return err
		}
	}
	return s.allocateBuys(buys, nextDay)
}

// signals computes the latest RSI per item and buckets items into buy and
// sell lists. Items without enough masked history are skipped.
func (s *Strategy) signals(data engine.Dataset) (buys, sells []types.TradeableItem) {
	for _, item := range s.portfolio.AllowedItems() {
		itemData, ok := data[item]
		if !ok {
			continue
		}
		bars, ok := itemData[types.DataRequirementBars].(engine.BarSeries)
		if !ok || len(bars) < s.opts.Window+1 {
			continue
		}
		closes := make([]float64, len(bars))
		for i, bar := range bars {
			closes[i] = bar.Close.InexactFloat64()
		}
		value := latestRSI(closes, s.opts.Window)

		switch {
		case value < s.opts.Oversold:
			buys = append(buys, item)
		case value > s.opts.Overbought && s.portfolio.HasPosition(item):
			sells = append(sells, item)
		}
	}
	return buys, sells
}

func (s *Strategy) closeAll(item types.TradeableItem, nextDay map[types.TradeableItem]types.Bar) error {
	bar, ok := nextDay[item]
	if !ok {
		// No fill price for tomorrow; hold the position another day.
		return nil
	}
	for _, pos := range s.portfolio.OpenPositionsFor(item) {
		tx, err := ledger.NewTransaction(item, pos.OpenTransaction().Quantity().Neg(), bar.Open, engine.DayOf(bar.Timestamp), decimal.Zero)
		if err != nil {
			return err
		}
		if _, err := s.portfolio.ClosePosition(pos, tx); err != nil {
			return err
		}
	}
	return nil
}

// allocateBuys splits available cash equally across the buy signals that
// have a next-day price, buying whole shares at the next open.
func (s *Strategy) allocateBuys(buys []types.TradeableItem, nextDay map[types.TradeableItem]types.Bar) error {
	var priced []types.TradeableItem
	for _, item := range buys {
		if bar, ok := nextDay[item]; ok && bar.Open.IsPositive() {
			priced = append(priced, item)
		}
	}
	if len(priced) == 0 {
		return nil
	}

	cash := s.portfolio.Cash()
	if !cash.IsPositive() {
		return nil
	}
	budget := cash.Div(decimal.NewFromInt(int64(len(priced))))

	for _, item := range priced {
		bar := nextDay[item]
		quantity := budget.Div(bar.Open).Floor()
		if !quantity.IsPositive() {
			continue
		}
		tx, err := ledger.NewTransaction(item, quantity, bar.Open, engine.DayOf(bar.Timestamp), decimal.Zero)
		if err != nil {
			return err
		}
		if !s.portfolio.CanTrade(tx) {
			// Rejected orders (cash ran out mid-allocation) are skipped.
			continue
		}
		if _, err := s.portfolio.OpenPosition(tx); err != nil {
			return err
		}
	}
	return nil
}

// latestRSI computes the most recent RSI value using Wilder's smoothing.
func latestRSI(closes []float64, window int) float64 {
	if len(closes) < window+1 {
		return 50
	}

	var avgGain, avgLoss float64
	for i := 1; i <= window; i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			avgGain += delta
		} else {
			avgLoss -= delta
		}
	}
	avgGain /= float64(window)
	avgLoss /= float64(window)

	for i := window + 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if delta > 0 {
			gain = delta
		} else {
			loss = -delta
		}
		avgGain = (avgGain*float64(window-1) + gain) / float64(window)
		avgLoss = (avgLoss*float64(window-1) + loss) / float64(window)
	}

	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
