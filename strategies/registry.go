// Package strategies holds the strategy registry and the builtin strategy
// implementations. Strategies are looked up by name through an explicit
// registry; there is no scanning or reflection involved.
package strategies

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rohan-0202/QuantForge/internal/engine"
	"github.com/rohan-0202/QuantForge/internal/ledger"
)

var UnknownStrategyErr = errors.New("strategy not registered")

// Factory builds a strategy bound to the portfolio it will trade.
type Factory func(portfolio *ledger.Portfolio) (engine.Strategy, error)

// Registry is an explicit name-to-factory map.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Create instantiates the named strategy against the portfolio.
func (r *Registry) Create(name string, portfolio *ledger.Portfolio) (engine.Strategy, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%q (available: %v): %w", name, r.List(), UnknownStrategyErr)
	}
	return factory(portfolio)
}

// List returns the sorted names of all registered strategies.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
