package types

import "fmt"

// TradeableItem identifies a single tradeable instrument. It is a plain
// comparable value so it can be used as a map key throughout the ledger.
type TradeableItem struct {
	ID         string
	AssetClass AssetClass
}

func (t TradeableItem) String() string {
	return fmt.Sprintf("%s (%s)", t.ID, t.AssetClass)
}

// IsZero reports whether the item carries no identity.
func (t TradeableItem) IsZero() bool {
	return t.ID == ""
}
