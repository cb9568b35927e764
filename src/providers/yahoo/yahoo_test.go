package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jklein88/finq/src/httpcache"
	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/providers"
)

const chartPayload = `{
	"chart": {
		"result": [{
			"meta": {"symbol": "AAPL", "currency": "USD", "regularMarketPrice": 103.0},
			"timestamp": [1704153600, 1704240000, 1704326400],
			"indicators": {
				"quote": [{
					"open": [100, 101, null],
					"high": [102, 103, 104],
					"low": [99, 100, 101],
					"close": [101, 102, 103],
					"volume": [1000, 2000, 3000]
				}],
				"adjclose": [{"adjclose": [100.5, 101.5, 102.5]}]
			},
			"events": {
				"dividends": {"1704240000": {"amount": 0.24, "date": 1704240000}},
				"splits": {"1704326400": {"date": 1704326400, "numerator": 4, "denominator": 1, "splitRatio": "4:1"}}
			}
		}],
		"error": null
	}
}`

const quoteSummaryPayload = `{
	"quoteSummary": {
		"result": [{
			"price": {
				"symbol": "AAPL",
				"longName": "Apple Inc.",
				"currency": "USD",
				"marketState": "CLOSED",
				"regularMarketPrice": {"raw": 189.5},
				"marketCap": {"raw": 2900000000000}
			},
			"summaryDetail": {
				"dividendRate": {"raw": 0.96},
				"trailingAnnualDividendRate": {"raw": 0.92}
			},
			"assetProfile": {
				"sector": "Technology",
				"industry": "Consumer Electronics",
				"fullTimeEmployees": 161000,
				"longBusinessSummary": "Designs and sells devices."
			},
			"defaultKeyStatistics": {
				"sharesOutstanding": {"raw": 15600000000}
			}
		}],
		"error": null
	}
}`

func optionsPayload(callKey, putKey string) string {
	return fmt.Sprintf(`{
	"optionChain": {
		"result": [{
			"underlyingSymbol": "AAPL",
			"expirationDates": [1710000000],
			"quote": {"regularMarketPrice": 100.0},
			"options": [{
				"%s": [
					{"contractSymbol": "AAPL240309C00095000", "strike": 95, "lastPrice": 6.1, "bid": 6.0, "ask": 6.2, "volume": 10, "openInterest": 50, "expiration": 1710000000},
					{"contractSymbol": "AAPL240309C00100000", "strike": 100, "lastPrice": 2.5, "bid": 2.4, "ask": 2.6, "volume": 25, "openInterest": 80, "expiration": 1710000000}
				],
				"%s": [
					{"contractSymbol": "AAPL240309P00100000", "strike": 100, "lastPrice": 2.3, "bid": 2.2, "ask": 2.4, "volume": 15, "openInterest": 60, "expiration": 1710000000}
				]
			}]
		}],
		"error": null
	}
}`, callKey, putKey)
}

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session, err := httpcache.NewSession(httpcache.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return NewClient(session, append([]Option{WithBaseURL(server.URL)}, opts...)...)
}

func chartHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"), r.URL.Path)
		fmt.Fprint(w, chartPayload)
	})
}

func TestHistory(t *testing.T) {
	client := newTestClient(t, chartHandler(t))

	bars, err := client.History(context.Background(), "AAPL", time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 100.5, bars[0].AdjClose)
	assert.Equal(t, int64(1000), bars[0].Volume)

	// Null open on the third row degrades to zero, not a dropped bar.
	assert.Equal(t, 0.0, bars[2].Open)
	assert.Equal(t, 103.0, bars[2].Close)

	for i := 1; i < len(bars); i++ {
		assert.True(t, bars[i].Date.After(bars[i-1].Date))
	}
}

func TestActions(t *testing.T) {
	client := newTestClient(t, chartHandler(t))

	actions, err := client.Actions(context.Background(), "AAPL", time.Time{})
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, models.ActionDividend, actions[0].Kind)
	assert.Equal(t, 0.24, actions[0].Value)

	assert.Equal(t, models.ActionSplit, actions[1].Kind)
	assert.Equal(t, 4.0, actions[1].Value)
}

func quoteHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			http.SetCookie(w, &http.Cookie{Name: "A3", Value: "token"})
		case r.URL.Path == "/v1/test/getcrumb":
			fmt.Fprint(w, "abc123")
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/"):
			assert.Equal(t, "abc123", r.URL.Query().Get("crumb"))
			fmt.Fprint(w, quoteSummaryPayload)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})
}

func TestQuote(t *testing.T) {
	client := newTestClient(t, quoteHandler(t))

	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 189.5, quote.Price)
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, "CLOSED", quote.MarketState)
	assert.Equal(t, 0.96, quote.ForwardDividendRate)
	assert.Equal(t, 0.92, quote.TrailingDividendRate)
	assert.Equal(t, 1.56e10, quote.SharesOutstanding)
}

func TestQuoteSchemaFieldPreference(t *testing.T) {
	schema := providers.DefaultSchema()
	schema.DividendRateFields = []string{"trailingAnnualDividendRate", "dividendRate"}

	client := newTestClient(t, quoteHandler(t), WithSchema(schema))

	quote, err := client.Quote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, 0.92, quote.ForwardDividendRate)
	assert.Equal(t, 0.96, quote.TrailingDividendRate)
}

func TestProfile(t *testing.T) {
	client := newTestClient(t, quoteHandler(t))

	profile, err := client.Profile(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "Apple Inc.", profile.Name)
	assert.Equal(t, "Technology", profile.Sector)
	assert.Equal(t, "Consumer Electronics", profile.Industry)
	assert.Equal(t, int64(161000), profile.Employees)
}

func TestOptionChain(t *testing.T) {
	for _, tc := range []struct {
		name    string
		callKey string
		putKey  string
	}{
		{"plural literals", "calls", "puts"},
		{"singular literals", "call", "put"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			payload := optionsPayload(tc.callKey, tc.putKey)
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.True(t, strings.HasPrefix(r.URL.Path, "/v7/finance/options/"), r.URL.Path)
				fmt.Fprint(w, payload)
			}))

			chain, err := client.OptionChain(context.Background(), "AAPL")
			require.NoError(t, err)

			assert.Equal(t, 100.0, chain.Spot)
			require.Len(t, chain.Expirations, 1)
			require.Len(t, chain.Contracts, 3)

			calls := chain.ByType(models.Call)
			puts := chain.ByType(models.Put)
			assert.Len(t, calls, 2)
			assert.Len(t, puts, 1)
			assert.Equal(t, 95.0, calls[0].Strike)
			assert.Equal(t, 100.0, puts[0].Strike)
		})
	}
}

func TestHistoryInvalidTicker(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	}))

	_, err := client.History(context.Background(), "NOTAREALTICKER", time.Time{}, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No data found")
}
