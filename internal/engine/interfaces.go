package engine

import (
	"context"
	"time"

	"github.com/rohan-0202/QuantForge/types"
)

type dataStore interface {
	FetchTickerBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Bar, error)
	FetchOptionSnapshots(ctx context.Context, ticker string, start, end time.Time) ([]types.OptionQuote, error)
}

// Strategy is the pluggable decision maker the loop drives. Execute is called
// once per simulated day (never on the last one) with the masked view of
// history and the next day's bars; it is solely responsible for turning its
// signals into ledger transactions via OpenPosition/ClosePosition, pricing
// them only off nextDay. An error from Execute means no trade happened that
// day; the loop logs it and moves on.
type Strategy interface {
	Name() string

	// DataRequirements declares which data series the strategy consumes and
	// how many calendar days of history it needs before the simulation start.
	DataRequirements() ([]types.DataRequirement, int)

	Execute(data Dataset, nextDay map[types.TradeableItem]types.Bar) error
}
