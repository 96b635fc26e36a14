package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rohan-0202/QuantForge/types"
)

var UnsupportedRequirementErr = errors.New("no masking rule for data requirement")

// Series is one data series for a single instrument. The set of
// implementations is closed: every series kind needs its own masking rule.
type Series interface {
	isSeries()
}

// BarSeries is a chronological OHLCV path, maskable by row timestamp.
type BarSeries []types.Bar

// OptionSeries holds point-in-time option chain snapshots, maskable by the
// LastUpdated freshness field rather than a path timestamp.
type OptionSeries []types.OptionQuote

func (BarSeries) isSeries()    {}
func (OptionSeries) isSeries() {}

// ItemData maps each declared data requirement to its series for one item.
type ItemData map[types.DataRequirement]Series

// Dataset is the full loaded history for every instrument in the universe.
type Dataset map[types.TradeableItem]ItemData

// DayOf normalizes a timestamp to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Mask projects the dataset down to what was visible as of cutoff. The rule
// is keyed by the declared requirement, never by inspecting the data: bar
// series keep rows with Timestamp <= cutoff, option series keep rows with
// LastUpdated <= cutoff. A requirement without an explicit rule fails the
// whole mask, because silently passing it through would reintroduce
// lookahead.
func Mask(data Dataset, cutoff time.Time) (Dataset, error) {
	masked := make(Dataset, len(data))
	for item, itemData := range data {
		maskedItem := make(ItemData, len(itemData))
		for req, series := range itemData {
			switch req {
			case types.DataRequirementBars:
				bars, ok := series.(BarSeries)
				if !ok {
					return nil, fmt.Errorf("%s declared as %s but holds %T: %w", item, req, series, UnsupportedRequirementErr)
				}
				kept := make(BarSeries, 0, len(bars))
				for _, bar := range bars {
					if !bar.Timestamp.After(cutoff) {
						kept = append(kept, bar)
					}
				}
				maskedItem[req] = kept

			case types.DataRequirementOptions:
				quotes, ok := series.(OptionSeries)
				if !ok {
					return nil, fmt.Errorf("%s declared as %s but holds %T: %w", item, req, series, UnsupportedRequirementErr)
				}
				kept := make(OptionSeries, 0, len(quotes))
				for _, quote := range quotes {
					if !quote.LastUpdated.After(cutoff) {
						kept = append(kept, quote)
					}
				}
				maskedItem[req] = kept

			default:
				return nil, fmt.Errorf("%s requirement %q: %w", item, req, UnsupportedRequirementErr)
			}
		}
		masked[item] = maskedItem
	}
	return masked, nil
}

// TradingDates collects the sorted union of calendar days that have at least
// one bar, across every instrument's bar series. Option snapshots do not
// define trading days.
func TradingDates(data Dataset) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, itemData := range data {
		bars, ok := itemData[types.DataRequirementBars].(BarSeries)
		if !ok {
			continue
		}
		for _, bar := range bars {
			seen[DayOf(bar.Timestamp)] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// dayBars extracts each item's bar for one calendar day. Items without a bar
// on that day are simply absent from the result.
func dayBars(data Dataset, items []types.TradeableItem, day time.Time) map[types.TradeableItem]types.Bar {
	out := make(map[types.TradeableItem]types.Bar)
	for _, item := range items {
		itemData, ok := data[item]
		if !ok {
			continue
		}
		bars, ok := itemData[types.DataRequirementBars].(BarSeries)
		if !ok {
			continue
		}
		for _, bar := range bars {
			if DayOf(bar.Timestamp).Equal(day) {
				out[item] = bar
				break
			}
		}
	}
	return out
}
