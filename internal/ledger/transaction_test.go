package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohan-0202/QuantForge/types"
)

var aapl = types.TradeableItem{ID: "AAPL", AssetClass: types.AssetClassEquity}
var msft = types.TradeableItem{ID: "MSFT", AssetClass: types.AssetClassEquity}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustTx(t *testing.T, item types.TradeableItem, qty, price float64, date string, cost float64) Transaction {
	t.Helper()
	tx, err := NewTransaction(item, decimal.NewFromFloat(qty), decimal.NewFromFloat(price), day(date), decimal.NewFromFloat(cost))
	require.NoError(t, err)
	return tx
}

func TestNewTransactionValidation(t *testing.T) {
	tests := []struct {
		name    string
		item    types.TradeableItem
		qty     float64
		price   float64
		cost    float64
		date    time.Time
		wantErr error
	}{
		{"valid buy", aapl, 10, 150, 10, day("2023-01-10"), nil},
		{"valid short", aapl, -10, 150, 0, day("2023-01-10"), nil},
		{"zero quantity", aapl, 0, 150, 0, day("2023-01-10"), ZeroQuantityErr},
		{"zero price", aapl, 10, 0, 0, day("2023-01-10"), InvalidPriceErr},
		{"negative price", aapl, 10, -1, 0, day("2023-01-10"), InvalidPriceErr},
		{"negative cost", aapl, 10, 150, -0.5, day("2023-01-10"), NegativeCostErr},
		{"missing item", types.TradeableItem{}, 10, 150, 0, day("2023-01-10"), MissingItemErr},
		{"missing date", aapl, 10, 150, 0, time.Time{}, MissingDateErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransaction(tt.item, decimal.NewFromFloat(tt.qty), decimal.NewFromFloat(tt.price), tt.date, decimal.NewFromFloat(tt.cost))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTransactionAccessors(t *testing.T) {
	tx := mustTx(t, aapl, 10, 150, "2023-01-10", 10)

	assert.Equal(t, aapl, tx.Item())
	assert.True(t, tx.Quantity().Equal(decimal.NewFromInt(10)))
	assert.True(t, tx.Price().Equal(decimal.NewFromInt(150)))
	assert.True(t, tx.Cost().Equal(decimal.NewFromInt(10)))
	assert.Equal(t, day("2023-01-10"), tx.Date())
}
