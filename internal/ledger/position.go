package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	AlreadyClosedErr = errors.New("position is already closed")
	ItemMismatchErr  = errors.New("close transaction item does not match open transaction")
	CloseDateErr     = errors.New("close transaction date must be after open transaction date")
	PartialCloseErr  = errors.New("close transaction quantity must exactly negate the open quantity")
)

// Position pairs an opening transaction with an optional closing one. It is
// an immutable value: closing produces a new Position, the portfolio then
// replaces its stored copy.
type Position struct {
	open  Transaction
	close Transaction

	// id is stamped by the owning portfolio when the position is opened and
	// is how ClosePosition finds the stored copy again.
	id uint64
}

func (p Position) OpenTransaction() Transaction { return p.open }

// CloseTransaction returns the closing transaction and whether the position
// has one.
func (p Position) CloseTransaction() (Transaction, bool) {
	return p.close, p.IsClosed()
}

func (p Position) IsClosed() bool {
	return !p.close.isZero()
}

// CostBasis is the signed cash outlay to establish the position including
// fees. Negative for shorts: opening a short takes cash in.
func (p Position) CostBasis() decimal.Decimal {
	return p.open.price.Mul(p.open.quantity).Add(p.open.cost)
}

// SaleProceeds is the cash received when the position was unwound, net of
// the closing fee. Zero while the position is open.
func (p Position) SaleProceeds() decimal.Decimal {
	if !p.IsClosed() {
		return decimal.Zero
	}
	return p.close.price.Mul(p.close.quantity.Neg()).Sub(p.close.cost)
}

// RealizedProfitLoss is SaleProceeds less CostBasis, zero while open.
func (p Position) RealizedProfitLoss() decimal.Decimal {
	if !p.IsClosed() {
		return decimal.Zero
	}
	return p.SaleProceeds().Sub(p.CostBasis())
}

// UnrealizedProfitLoss marks the open position against price. Zero once closed.
func (p Position) UnrealizedProfitLoss(price decimal.Decimal) decimal.Decimal {
	if p.IsClosed() {
		return decimal.Zero
	}
	return price.Sub(p.open.price).Mul(p.open.quantity)
}

// Value is the position's contribution to total portfolio value at the given
// mark price. The cash exchanged at open already lives in the portfolio's
// cash balance, so this is just price times quantity. Zero once closed.
func (p Position) Value(price decimal.Decimal) decimal.Decimal {
	if p.IsClosed() {
		return decimal.Zero
	}
	return price.Mul(p.open.quantity)
}

// closed validates the close transaction against the open leg and returns a
// new closed Position. The date rule matches the portfolio-level contract:
// same-day closes are rejected.
func (p Position) closed(close Transaction) (Position, error) {
	if p.IsClosed() {
		return Position{}, AlreadyClosedErr
	}
	if close.item != p.open.item {
		return Position{}, ItemMismatchErr
	}
	if !close.date.After(p.open.date) {
		return Position{}, CloseDateErr
	}
	if !close.quantity.Equal(p.open.quantity.Neg()) {
		return Position{}, PartialCloseErr
	}
	return Position{open: p.open, close: close, id: p.id}, nil
}
