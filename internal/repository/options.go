package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rohan-0202/QuantForge/types"
)

type optionRow struct {
	Expiration        time.Time
	Type              string
	Strike            decimal.Decimal
	LastPrice         decimal.Decimal
	Bid               decimal.Decimal
	Ask               decimal.Decimal
	Volume            int64
	OpenInterest      int64
	ImpliedVolatility decimal.Decimal
	LastUpdated       time.Time
}

type optionQuerier interface {
	selectOptions(ctx context.Context, ticker string, start, end time.Time) ([]optionRow, error)
}

const selectOptionsSQL = `
SELECT expiration_date, option_type, strike, last_price, bid, ask, volume, open_interest, implied_volatility, last_updated
FROM options_data
WHERE ticker = $1 AND last_updated >= $2 AND last_updated <= $3
ORDER BY expiration_date ASC`

func (q *pgxQueries) selectOptions(ctx context.Context, ticker string, start, end time.Time) ([]optionRow, error) {
	rows, err := q.conn.Query(ctx, selectOptionsSQL, ticker, start, end)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[optionRow])
}

// FetchOptionSnapshots retrieves option chain snapshots for a ticker whose
// last_updated freshness falls within [start, end]. Returns ErrNoOptionRows
// if the range is empty.
func (db *Database) FetchOptionSnapshots(ctx context.Context, ticker string, start, end time.Time) ([]types.OptionQuote, error) {
	rows, err := db.options.selectOptions(ctx, ticker, start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoOptionRows
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoOptionRows
	}
	return convertOptions(rows, ticker), nil
}

func convertOptions(rows []optionRow, ticker string) []types.OptionQuote {
	var quotes []types.OptionQuote
	for _, row := range rows {
		quotes = append(quotes, types.OptionQuote{
			Ticker:            ticker,
			Expiration:        row.Expiration,
			Type:              types.OptionType(row.Type),
			Strike:            row.Strike,
			LastPrice:         row.LastPrice,
			Bid:               row.Bid,
			Ask:               row.Ask,
			Volume:            row.Volume,
			OpenInterest:      row.OpenInterest,
			ImpliedVolatility: row.ImpliedVolatility,
			LastUpdated:       row.LastUpdated,
		})
	}
	return quotes
}
