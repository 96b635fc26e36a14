package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/rohan-0202/QuantForge/types"
)

type barRow struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

type barQuerier interface {
	selectBars(ctx context.Context, ticker string, start, end time.Time) ([]barRow, error)
}

const selectBarsSQL = `
SELECT timestamp, open, high, low, close, volume
FROM historical_prices
WHERE ticker = $1 AND timestamp >= $2 AND timestamp <= $3
ORDER BY timestamp ASC`

func (q *pgxQueries) selectBars(ctx context.Context, ticker string, start, end time.Time) ([]barRow, error) {
	rows, err := q.conn.Query(ctx, selectBarsSQL, ticker, start, end)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[barRow])
}

// FetchTickerBars retrieves the OHLCV rows for a ticker within [start, end],
// ordered by timestamp. Returns ErrNoBars if the range is empty.
func (db *Database) FetchTickerBars(ctx context.Context, ticker string, start, end time.Time) ([]types.Bar, error) {
	rows, err := db.bars.selectBars(ctx, ticker, start, end)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoBars
		}
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoBars
	}
	return convertBars(rows, ticker), nil
}

func convertBars(rows []barRow, ticker string) []types.Bar {
	var bars []types.Bar
	for _, row := range rows {
		bars = append(bars, types.Bar{
			Ticker:    ticker,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			Volume:    row.Volume,
			Timestamp: row.Timestamp,
		})
	}
	return bars
}
