package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rohan-0202/QuantForge/types"
)

var (
	ZeroQuantityErr = errors.New("transaction quantity cannot be zero")
	InvalidPriceErr = errors.New("transaction price must be positive")
	NegativeCostErr = errors.New("transaction cost cannot be negative")
	MissingItemErr  = errors.New("transaction tradeable item must be set")
	MissingDateErr  = errors.New("transaction date must be set")
)

// Transaction is an immutable record of a single trade. Quantity is signed:
// positive opens/adds a long (or closes a short), negative opens a short
// (or closes a long).
type Transaction struct {
	item     types.TradeableItem
	quantity decimal.Decimal
	price    decimal.Decimal
	date     time.Time
	cost     decimal.Decimal
}

// NewTransaction validates and builds a Transaction. Transactions are only
// constructed here; the zero value is never a valid trade.
func NewTransaction(item types.TradeableItem, quantity, price decimal.Decimal, date time.Time, cost decimal.Decimal) (Transaction, error) {
	if item.IsZero() {
		return Transaction{}, MissingItemErr
	}
	if quantity.IsZero() {
		return Transaction{}, ZeroQuantityErr
	}
	if !price.IsPositive() {
		return Transaction{}, InvalidPriceErr
	}
	if date.IsZero() {
		return Transaction{}, MissingDateErr
	}
	if cost.IsNegative() {
		return Transaction{}, NegativeCostErr
	}
	return Transaction{
		item:     item,
		quantity: quantity,
		price:    price,
		date:     date,
		cost:     cost,
	}, nil
}

func (t Transaction) Item() types.TradeableItem { return t.item }
func (t Transaction) Quantity() decimal.Decimal { return t.quantity }
func (t Transaction) Price() decimal.Decimal    { return t.price }
func (t Transaction) Date() time.Time           { return t.date }
func (t Transaction) Cost() decimal.Decimal     { return t.cost }

// isZero reports whether the transaction is the zero value, i.e. was never
// built through NewTransaction.
func (t Transaction) isZero() bool {
	return t.item.IsZero()
}

func (t Transaction) String() string {
	return fmt.Sprintf("Transaction{%s qty=%s price=%s date=%s cost=%s}",
		t.item.ID, t.quantity, t.price, t.date.Format("2006-01-02"), t.cost)
}
