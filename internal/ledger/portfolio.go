package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohan-0202/QuantForge/types"
)

var (
	InvalidInitialCashErr  = errors.New("initial cash must be positive")
	NoAllowedItemsErr      = errors.New("allowed tradeable items cannot be empty")
	TradingNotPermittedErr = errors.New("transaction is not permitted")
	PositionNotFoundErr    = errors.New("position not found in open positions")
	MissingPriceErr        = errors.New("price not found for tradeable item")
)

// Portfolio is the ledger: it is the sole owner of the cash balance and of
// all open and closed positions. Cash only moves through OpenPosition and
// ClosePosition. A single goroutine drives the simulation, so there is no
// internal locking.
type Portfolio struct {
	cash        decimal.Decimal
	startDate   time.Time
	allowMargin bool
	allowShort  bool

	allowed    []types.TradeableItem
	allowedSet map[types.TradeableItem]struct{}

	open   map[types.TradeableItem][]Position
	closed []Position

	nextPositionID uint64
}

func NewPortfolio(initialCash decimal.Decimal, allowed []types.TradeableItem, startDate time.Time, allowMargin, allowShort bool) (*Portfolio, error) {
	if !initialCash.IsPositive() {
		return nil, InvalidInitialCashErr
	}
	if len(allowed) == 0 {
		return nil, NoAllowedItemsErr
	}
	allowedSet := make(map[types.TradeableItem]struct{}, len(allowed))
	items := make([]types.TradeableItem, 0, len(allowed))
	for _, item := range allowed {
		if item.IsZero() {
			return nil, MissingItemErr
		}
		if _, ok := allowedSet[item]; ok {
			continue
		}
		allowedSet[item] = struct{}{}
		items = append(items, item)
	}
	return &Portfolio{
		cash:        initialCash,
		startDate:   startDate,
		allowMargin: allowMargin,
		allowShort:  allowShort,
		allowed:     items,
		allowedSet:  allowedSet,
		open:        make(map[types.TradeableItem][]Position),
	}, nil
}

func (p *Portfolio) Cash() decimal.Decimal { return p.cash }
func (p *Portfolio) StartDate() time.Time  { return p.startDate }
func (p *Portfolio) AllowMargin() bool     { return p.allowMargin }
func (p *Portfolio) AllowShort() bool      { return p.allowShort }

// AllowedItems returns a copy of the fixed instrument universe.
func (p *Portfolio) AllowedItems() []types.TradeableItem {
	out := make([]types.TradeableItem, len(p.allowed))
	copy(out, p.allowed)
	return out
}

func (p *Portfolio) HasPosition(item types.TradeableItem) bool {
	return len(p.open[item]) > 0
}

// HeldItems returns the items that currently have at least one open position.
func (p *Portfolio) HeldItems() []types.TradeableItem {
	out := make([]types.TradeableItem, 0, len(p.open))
	for _, item := range p.allowed {
		if len(p.open[item]) > 0 {
			out = append(out, item)
		}
	}
	return out
}

// OpenPositionsFor returns copies of the open positions for one item.
func (p *Portfolio) OpenPositionsFor(item types.TradeableItem) []Position {
	positions := p.open[item]
	if len(positions) == 0 {
		return nil
	}
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// ClosedPositions returns a copy of the closed-position history.
func (p *Portfolio) ClosedPositions() []Position {
	out := make([]Position, len(p.closed))
	copy(out, p.closed)
	return out
}

// RealizedProfitLoss sums the realized P&L over all closed positions.
func (p *Portfolio) RealizedProfitLoss() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.closed {
		total = total.Add(pos.RealizedProfitLoss())
	}
	return total
}

// CanTrade reports whether the transaction is permitted by the portfolio's
// trading rules. A transaction that exactly offsets an existing open position
// is always permitted: closes bypass the cash, margin and short checks.
func (p *Portfolio) CanTrade(tx Transaction) bool {
	if _, ok := p.allowedSet[tx.item]; !ok {
		return false
	}

	for _, pos := range p.open[tx.item] {
		if pos.open.quantity.Equal(tx.quantity.Neg()) {
			return true
		}
	}

	if tx.quantity.IsNegative() {
		// Opening a short.
		return p.allowShort
	}
	if p.cash.LessThan(tx.price.Mul(tx.quantity).Add(tx.cost)) {
		return p.allowMargin
	}
	return true
}

// OpenPosition opens a new position for the transaction and adjusts cash by
// the cost basis. For a short the quantity is negative, so cash increases by
// the proceeds net of the fee.
func (p *Portfolio) OpenPosition(tx Transaction) (Position, error) {
	if !p.CanTrade(tx) {
		return Position{}, fmt.Errorf("%s: %w", tx, TradingNotPermittedErr)
	}

	p.nextPositionID++
	pos := Position{open: tx, id: p.nextPositionID}
	p.open[tx.item] = append(p.open[tx.item], pos)
	p.cash = p.cash.Sub(pos.CostBasis())
	return pos, nil
}

// ClosePosition unwinds one of the portfolio's tracked open positions. The
// close transaction must match the open leg's item, be dated strictly after
// the open date, and exactly negate the open quantity: partial closes are
// rejected. On success the position moves from the open map to the closed
// list and cash grows by the sale proceeds.
func (p *Portfolio) ClosePosition(position Position, close Transaction) (Position, error) {
	if position.IsClosed() {
		return Position{}, AlreadyClosedErr
	}
	if close.item != position.open.item {
		return Position{}, ItemMismatchErr
	}
	if !close.date.After(position.open.date) {
		return Position{}, CloseDateErr
	}
	if !close.quantity.Equal(position.open.quantity.Neg()) {
		return Position{}, PartialCloseErr
	}

	item := position.open.item
	stored := p.open[item]
	idx := -1
	for i := range stored {
		if position.id != 0 && stored[i].id == position.id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Position{}, PositionNotFoundErr
	}

	closed, err := stored[idx].closed(close)
	if err != nil {
		return Position{}, err
	}

	stored = append(stored[:idx], stored[idx+1:]...)
	if len(stored) == 0 {
		delete(p.open, item)
	} else {
		p.open[item] = stored
	}

	p.closed = append(p.closed, closed)
	p.cash = p.cash.Add(closed.SaleProceeds())
	return closed, nil
}

// Value is cash plus every open position marked at the supplied prices.
// Closed positions contribute nothing: their cash effect already happened.
func (p *Portfolio) Value(prices map[types.TradeableItem]decimal.Decimal) (decimal.Decimal, error) {
	total := p.cash
	for item, positions := range p.open {
		price, ok := prices[item]
		if !ok {
			return decimal.Zero, fmt.Errorf("%s: %w", item, MissingPriceErr)
		}
		for _, pos := range positions {
			total = total.Add(pos.Value(price))
		}
	}
	return total, nil
}
