package options

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/providers"
)

// chainStubProvider serves a fixed chain and rejects everything else.
type chainStubProvider struct {
	data *models.OptionChainData
}

func (s *chainStubProvider) Name() string { return "stub" }

func (s *chainStubProvider) History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	return nil, providers.ErrNotSupported
}

func (s *chainStubProvider) Actions(ctx context.Context, symbol string, start time.Time) ([]models.CorporateAction, error) {
	return nil, providers.ErrNotSupported
}

func (s *chainStubProvider) Quote(ctx context.Context, symbol string) (*models.QuoteSnapshot, error) {
	return nil, providers.ErrNotSupported
}

func (s *chainStubProvider) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	return nil, providers.ErrNotSupported
}

func (s *chainStubProvider) OptionChain(ctx context.Context, symbol string) (*models.OptionChainData, error) {
	return s.data, nil
}

func testChainData() *models.OptionChainData {
	expiry := time.Date(2023, 7, 21, 0, 0, 0, 0, time.UTC)
	later := expiry.AddDate(0, 1, 0)

	var contracts []models.ChainContract
	for _, strike := range []float64{80, 85, 90, 95, 100, 105, 110, 115, 120} {
		contracts = append(contracts,
			models.ChainContract{Underlying: "AAPL", Expiration: expiry, Strike: strike, Type: models.Call},
			models.ChainContract{Underlying: "AAPL", Expiration: expiry, Strike: strike, Type: models.Put},
		)
	}
	// A second expiration with a strike closer to spot than most of the
	// first page.
	contracts = append(contracts,
		models.ChainContract{Underlying: "AAPL", Expiration: later, Strike: 101, Type: models.Call},
	)

	return &models.OptionChainData{
		Underlying:  "AAPL",
		Spot:        101.5,
		Expirations: []time.Time{expiry, later},
		Contracts:   contracts,
	}
}

func TestChainFilters(t *testing.T) {
	chain := NewChain("AAPL", &chainStubProvider{data: testChainData()})
	ctx := context.Background()

	calls, err := chain.Calls(ctx)
	require.NoError(t, err)
	require.Len(t, calls, 10)
	for _, c := range calls {
		assert.Equal(t, models.Call, c.Type)
	}

	puts, err := chain.Puts(ctx)
	require.NoError(t, err)
	require.Len(t, puts, 9)
	for _, c := range puts {
		assert.Equal(t, models.Put, c.Type)
	}
}

func TestNearCalls(t *testing.T) {
	chain := NewChain("AAPL", &chainStubProvider{data: testChainData()})

	near, err := chain.NearCalls(context.Background())
	require.NoError(t, err)
	require.Len(t, near, DefaultNearWindow)

	// Strikes nearest 101.5: 100, 101, 105, 95, 110. Results come back
	// ordered by expiration then strike.
	strikes := make([]float64, len(near))
	for i, c := range near {
		strikes[i] = c.Strike
	}
	assert.Equal(t, []float64{95, 100, 105, 110, 101}, strikes)

	// The later expiration sorts last despite being second-nearest.
	assert.True(t, near[4].Expiration.After(near[0].Expiration))
}

func TestNearPuts(t *testing.T) {
	chain := NewChain("AAPL", &chainStubProvider{data: testChainData()})

	near, err := chain.NearPuts(context.Background())
	require.NoError(t, err)
	require.Len(t, near, DefaultNearWindow)

	strikes := make([]float64, len(near))
	for i, c := range near {
		strikes[i] = c.Strike
	}
	assert.Equal(t, []float64{90, 95, 100, 105, 110}, strikes)
}

func TestNearWindowOption(t *testing.T) {
	chain := NewChain("AAPL", &chainStubProvider{data: testChainData()}, WithNearWindow(2))

	near, err := chain.NearPuts(context.Background())
	require.NoError(t, err)
	require.Len(t, near, 2)

	strikes := []float64{near[0].Strike, near[1].Strike}
	assert.Equal(t, []float64{100, 105}, strikes)
}

func TestNearSpotFunc(t *testing.T) {
	// Override the chain spot so the window centers far from the
	// reported price.
	chain := NewChain("AAPL", &chainStubProvider{data: testChainData()},
		WithNearWindow(3),
		WithSpotFunc(func(ctx context.Context) (float64, error) {
			return 84, nil
		}))

	near, err := chain.NearPuts(context.Background())
	require.NoError(t, err)
	require.Len(t, near, 3)

	strikes := []float64{near[0].Strike, near[1].Strike, near[2].Strike}
	assert.Equal(t, []float64{80, 85, 90}, strikes)
}
