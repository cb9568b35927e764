package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/jklein88/finq/src/httpcache"
	"github.com/jklein88/finq/src/models"
)

type rawValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price *struct {
		Symbol             string   `json:"symbol"`
		LongName           string   `json:"longName"`
		Currency           string   `json:"currency"`
		MarketState        string   `json:"marketState"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		MarketCap          rawValue `json:"marketCap"`
	} `json:"price"`

	SummaryDetail map[string]json.RawMessage `json:"summaryDetail"`

	AssetProfile *struct {
		Sector              string `json:"sector"`
		Industry            string `json:"industry"`
		FullTimeEmployees   int64  `json:"fullTimeEmployees"`
		LongBusinessSummary string `json:"longBusinessSummary"`
	} `json:"assetProfile"`

	DefaultKeyStatistics *struct {
		SharesOutstanding rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`
}

// ensureCrumb bootstraps the cookie and crumb the quoteSummary endpoint
// requires. Both requests bypass the cache: a stale crumb is rejected.
func (c *Client) ensureCrumb(ctx context.Context) error {
	if c.crumb != "" {
		return nil
	}

	ctx = httpcache.NoCache(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.CrumbURL, nil)
	if err != nil {
		return fmt.Errorf("ensureCrumb: failed to create cookie request: %w", err)
	}
	req.Header.Set("User-Agent", uuid.NewString())

	res, err := c.session.Client().Do(req)
	if err != nil {
		return fmt.Errorf("ensureCrumb: failed to fetch cookie: %w", err)
	}
	io.Copy(io.Discard, res.Body)
	res.Body.Close()

	if cookie := res.Header.Get("Set-Cookie"); cookie != "" {
		c.cookie = cookie
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return fmt.Errorf("ensureCrumb: failed to create crumb request: %w", err)
	}
	req.Header.Set("User-Agent", uuid.NewString())
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	res, err = c.session.Client().Do(req)
	if err != nil {
		return fmt.Errorf("ensureCrumb: failed to fetch crumb: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("ensureCrumb: failed to read crumb: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("ensureCrumb: crumb endpoint returned %s", res.Status)
	}

	c.crumb = string(body)
	return nil
}

func (c *Client) fetchQuoteSummary(ctx context.Context, symbol string, modules string) (*quoteSummaryResult, error) {
	if err := c.ensureCrumb(ctx); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s&crumb=%s", c.BaseURL, symbol, modules, c.crumb)

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data quoteSummaryResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("fetchQuoteSummary: failed to unmarshal response: %w", err)
	}

	if data.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("fetchQuoteSummary: %w", data.QuoteSummary.Error)
	}

	if len(data.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("fetchQuoteSummary: no data found for symbol %s", symbol)
	}

	return &data.QuoteSummary.Result[0], nil
}

func (c *Client) Quote(ctx context.Context, symbol string) (*models.QuoteSnapshot, error) {
	result, err := c.fetchQuoteSummary(ctx, symbol, "price%2CsummaryDetail%2CdefaultKeyStatistics")
	if err != nil {
		return nil, fmt.Errorf("Quote: %w", err)
	}

	snapshot := &models.QuoteSnapshot{Symbol: symbol}

	if result.Price != nil {
		snapshot.Price = result.Price.RegularMarketPrice.Raw
		snapshot.MarketCap = result.Price.MarketCap.Raw
		snapshot.Currency = result.Price.Currency
		snapshot.MarketState = result.Price.MarketState
	}

	if result.DefaultKeyStatistics != nil {
		snapshot.SharesOutstanding = result.DefaultKeyStatistics.SharesOutstanding.Raw
	}

	// The dividend rate has moved between summaryDetail fields across API
	// revisions; the schema orders the candidates.
	rates := make([]float64, 0, len(c.schema.DividendRateFields))
	for _, field := range c.schema.DividendRateFields {
		rates = append(rates, summaryDetailValue(result.SummaryDetail, field))
	}
	if len(rates) > 0 {
		snapshot.ForwardDividendRate = rates[0]
	}
	if len(rates) > 1 {
		snapshot.TrailingDividendRate = rates[1]
	}

	return snapshot, nil
}

func summaryDetailValue(detail map[string]json.RawMessage, field string) float64 {
	raw, ok := detail[field]
	if !ok {
		return 0
	}

	var v rawValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}

	return v.Raw
}

func (c *Client) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	result, err := c.fetchQuoteSummary(ctx, symbol, "assetProfile%2Cprice")
	if err != nil {
		return nil, fmt.Errorf("Profile: %w", err)
	}

	profile := &models.CompanyProfile{}

	if result.Price != nil {
		profile.Name = result.Price.LongName
	}

	if result.AssetProfile != nil {
		profile.Sector = result.AssetProfile.Sector
		profile.Industry = result.AssetProfile.Industry
		profile.Employees = result.AssetProfile.FullTimeEmployees
		profile.Summary = result.AssetProfile.LongBusinessSummary
	}

	return profile, nil
}
