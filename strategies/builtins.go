package strategies

import (
	"github.com/rohan-0202/QuantForge/internal/engine"
	"github.com/rohan-0202/QuantForge/internal/ledger"
	"github.com/rohan-0202/QuantForge/strategies/rsi"
)

// Default returns a registry with every builtin strategy registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("rsi", func(portfolio *ledger.Portfolio) (engine.Strategy, error) {
		return rsi.New(portfolio, rsi.DefaultOptions())
	})
	return r
}
