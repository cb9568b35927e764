package options

import (
	"context"
	"fmt"
	"sort"

	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/providers"
)

// DefaultNearWindow is how many contracts the near-the-money filters keep.
const DefaultNearWindow = 5

// SpotFunc supplies the current underlying price for the near-the-money
// filters.
type SpotFunc func(ctx context.Context) (float64, error)

// Chain is the option chain accessor for one underlying. Every accessor
// re-fetches through the provider (and its HTTP cache); nothing is held
// between calls.
type Chain struct {
	symbol   string
	provider providers.Provider
	window   int
	spot     SpotFunc
}

type ChainOption func(*Chain)

// WithNearWindow overrides the near-the-money contract count.
func WithNearWindow(n int) ChainOption {
	return func(c *Chain) {
		c.window = n
	}
}

// WithSpotFunc overrides where the filters get the underlying price.
// Defaults to the spot reported with the chain itself.
func WithSpotFunc(f SpotFunc) ChainOption {
	return func(c *Chain) {
		c.spot = f
	}
}

func NewChain(symbol string, provider providers.Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		symbol:   symbol,
		provider: provider,
		window:   DefaultNearWindow,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AllData fetches the full chain.
func (c *Chain) AllData(ctx context.Context) (*models.OptionChainData, error) {
	data, err := c.provider.OptionChain(ctx, c.symbol)
	if err != nil {
		return nil, fmt.Errorf("AllData: %w", err)
	}

	return data, nil
}

func (c *Chain) Calls(ctx context.Context) ([]models.ChainContract, error) {
	data, err := c.AllData(ctx)
	if err != nil {
		return nil, err
	}

	return data.ByType(models.Call), nil
}

func (c *Chain) Puts(ctx context.Context) ([]models.ChainContract, error) {
	data, err := c.AllData(ctx)
	if err != nil {
		return nil, err
	}

	return data.ByType(models.Put), nil
}

// NearCalls returns the window of calls with strikes nearest the current
// spot price.
func (c *Chain) NearCalls(ctx context.Context) ([]models.ChainContract, error) {
	return c.near(ctx, models.Call)
}

// NearPuts returns the window of puts with strikes nearest the current
// spot price.
func (c *Chain) NearPuts(ctx context.Context) ([]models.ChainContract, error) {
	return c.near(ctx, models.Put)
}

func (c *Chain) near(ctx context.Context, t models.OptionType) ([]models.ChainContract, error) {
	data, err := c.AllData(ctx)
	if err != nil {
		return nil, err
	}

	spot := data.Spot
	if c.spot != nil {
		spot, err = c.spot(ctx)
		if err != nil {
			return nil, fmt.Errorf("near: failed to fetch spot price: %w", err)
		}
	}

	contracts := data.ByType(t)

	sort.SliceStable(contracts, func(i, j int) bool {
		di := abs(contracts[i].Strike - spot)
		dj := abs(contracts[j].Strike - spot)
		if di != dj {
			return di < dj
		}
		return contracts[i].Strike < contracts[j].Strike
	})

	if len(contracts) > c.window {
		contracts = contracts[:c.window]
	}

	sort.SliceStable(contracts, func(i, j int) bool {
		if !contracts[i].Expiration.Equal(contracts[j].Expiration) {
			return contracts[i].Expiration.Before(contracts[j].Expiration)
		}
		return contracts[i].Strike < contracts[j].Strike
	})

	return contracts, nil
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
