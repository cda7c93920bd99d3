package strategies

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/quantforge/algotick/core"
)

// Params are the free-form strategy parameters from the run configuration.
type Params struct {
	Symbol     string  `yaml:"symbol"`
	Quantity   float64 `yaml:"quantity"`
	FastPeriod int     `yaml:"fast_period"`
	SlowPeriod int     `yaml:"slow_period"`
}

// Factory builds a strategy from configuration parameters.
type Factory func(params Params) (core.Strategy, error)

var registry = map[string]Factory{
	"buy-hold": func(params Params) (core.Strategy, error) {
		if params.Symbol == "" || params.Quantity <= 0 {
			return nil, fmt.Errorf("buy-hold requires symbol and quantity")
		}
		return NewBuyHold(params.Symbol, params.Quantity), nil
	},
	"sma-cross": func(params Params) (core.Strategy, error) {
		if params.Symbol == "" || params.Quantity <= 0 {
			return nil, fmt.Errorf("sma-cross requires symbol and quantity")
		}
		fast, slow := params.FastPeriod, params.SlowPeriod
		if fast == 0 {
			fast = 50
		}
		if slow == 0 {
			slow = 200
		}
		return NewSMACross(params.Symbol, fast, slow, params.Quantity), nil
	},
}

// Get resolves a registered strategy by name.
func Get(name string, params Params) (core.Strategy, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
	return factory(params)
}

// Names lists the registered strategy names.
func Names() []string {
	names := lo.Keys(registry)
	sort.Strings(names)
	return names
}
