package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openLong(t *testing.T) Position {
	t.Helper()
	return Position{open: mustTx(t, aapl, 10, 150, "2023-01-10", 10), id: 1}
}

func TestPositionCostBasis(t *testing.T) {
	long := openLong(t)
	assert.True(t, long.CostBasis().Equal(decimal.NewFromInt(1510)), "got %s", long.CostBasis())

	short := Position{open: mustTx(t, aapl, -10, 150, "2023-01-10", 10), id: 2}
	assert.True(t, short.CostBasis().Equal(decimal.NewFromInt(-1490)), "got %s", short.CostBasis())
}

func TestPositionLifecycle(t *testing.T) {
	pos := openLong(t)
	require.False(t, pos.IsClosed())
	_, ok := pos.CloseTransaction()
	require.False(t, ok)
	assert.True(t, pos.SaleProceeds().IsZero())
	assert.True(t, pos.RealizedProfitLoss().IsZero())

	closed, err := pos.closed(mustTx(t, aapl, -10, 170, "2023-02-10", 10))
	require.NoError(t, err)
	require.True(t, closed.IsClosed())

	// 10 * 170 - 10 fee.
	assert.True(t, closed.SaleProceeds().Equal(decimal.NewFromInt(1690)), "got %s", closed.SaleProceeds())
	// 1690 proceeds - 1510 basis.
	assert.True(t, closed.RealizedProfitLoss().Equal(decimal.NewFromInt(180)), "got %s", closed.RealizedProfitLoss())
	assert.True(t, closed.Value(decimal.NewFromInt(200)).IsZero())
	assert.True(t, closed.UnrealizedProfitLoss(decimal.NewFromInt(200)).IsZero())

	// The original value is untouched.
	assert.False(t, pos.IsClosed())
}

func TestPositionCloseValidation(t *testing.T) {
	pos := openLong(t)

	tests := []struct {
		name    string
		close   Transaction
		wantErr error
	}{
		{"item mismatch", mustTx(t, msft, -10, 170, "2023-02-10", 0), ItemMismatchErr},
		{"same-day close", mustTx(t, aapl, -10, 170, "2023-01-10", 0), CloseDateErr},
		{"close before open", mustTx(t, aapl, -10, 170, "2023-01-09", 0), CloseDateErr},
		{"partial close", mustTx(t, aapl, -4, 170, "2023-02-10", 0), PartialCloseErr},
		{"same-direction close", mustTx(t, aapl, 10, 170, "2023-02-10", 0), PartialCloseErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pos.closed(tt.close)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	closed, err := pos.closed(mustTx(t, aapl, -10, 170, "2023-02-10", 0))
	require.NoError(t, err)
	_, err = closed.closed(mustTx(t, aapl, -10, 170, "2023-03-10", 0))
	assert.ErrorIs(t, err, AlreadyClosedErr)
}

func TestPositionMarkToMarket(t *testing.T) {
	long := openLong(t)
	assert.True(t, long.Value(decimal.NewFromInt(160)).Equal(decimal.NewFromInt(1600)))
	assert.True(t, long.UnrealizedProfitLoss(decimal.NewFromInt(160)).Equal(decimal.NewFromInt(100)))
	assert.True(t, long.UnrealizedProfitLoss(decimal.NewFromInt(140)).Equal(decimal.NewFromInt(-100)))

	short := Position{open: mustTx(t, aapl, -10, 150, "2023-01-10", 0), id: 3}
	assert.True(t, short.Value(decimal.NewFromInt(160)).Equal(decimal.NewFromInt(-1600)))
	assert.True(t, short.UnrealizedProfitLoss(decimal.NewFromInt(140)).Equal(decimal.NewFromInt(100)))
}

func TestShortPositionRoundTrip(t *testing.T) {
	pos := Position{open: mustTx(t, aapl, -10, 150, "2023-01-10", 5), id: 4}
	closed, err := pos.closed(mustTx(t, aapl, 10, 130, "2023-02-10", 5))
	require.NoError(t, err)

	// Sold at 150 (basis -1495), bought back at 130 plus fee (-1305 proceeds).
	assert.True(t, closed.SaleProceeds().Equal(decimal.NewFromInt(-1305)), "got %s", closed.SaleProceeds())
	assert.True(t, closed.RealizedProfitLoss().Equal(decimal.NewFromInt(190)), "got %s", closed.RealizedProfitLoss())
}
