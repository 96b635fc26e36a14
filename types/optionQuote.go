package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// OptionQuote is one point-in-time snapshot of a single option contract.
// LastUpdated is the freshness field: it tells when the snapshot was taken,
// which is what visibility masking keys off (not Expiration).
type OptionQuote struct {
	Ticker            string          `json:"ticker"`
	Expiration        time.Time       `json:"expiration"`
	Type              OptionType      `json:"type"`
	Strike            decimal.Decimal `json:"strike"`
	LastPrice         decimal.Decimal `json:"lastPrice"`
	Bid               decimal.Decimal `json:"bid"`
	Ask               decimal.Decimal `json:"ask"`
	Volume            int64           `json:"volume"`
	OpenInterest      int64           `json:"openInterest"`
	ImpliedVolatility decimal.Decimal `json:"impliedVolatility"`
	LastUpdated       time.Time       `json:"lastUpdated"`
}
