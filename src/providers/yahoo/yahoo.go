// Package yahoo adapts the Yahoo Finance JSON endpoints to the provider
// contract. Endpoint shapes are versioned externally via providers.Schema.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jklein88/finq/src/httpcache"
	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/providers"
)

const DefaultBaseURL = "https://query2.finance.yahoo.com"

// DefaultHistoryStart matches the fixed lookback the accessors were built
// around: full daily history from 1990 to the present.
var DefaultHistoryStart = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)

type Client struct {
	BaseURL  string
	CrumbURL string
	schema   providers.Schema
	session  *httpcache.Session

	cookie string
	crumb  string
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.BaseURL = url
		c.CrumbURL = url
	}
}

func WithSchema(schema providers.Schema) Option {
	return func(c *Client) {
		c.schema = schema
	}
}

func NewClient(session *httpcache.Session, opts ...Option) *Client {
	c := &Client{
		BaseURL:  DefaultBaseURL,
		CrumbURL: "https://fc.yahoo.com",
		schema:   providers.DefaultSchema(),
		session:  session,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Name() string {
	return "yahoo"
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("yahoo.get: failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", uuid.NewString())
	req.Header.Set("Accept", "application/json")
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	res, err := c.session.Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo.get: failed to fetch %s: %w", url, err)
	}

	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo.get: failed to read response body: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo.get: %s returned %s: %s", url, res.Status, string(body))
	}

	return body, nil
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
			Events struct {
				Dividends map[string]struct {
					Amount float64 `json:"amount"`
					Date   int64   `json:"date"`
				} `json:"dividends"`
				Splits map[string]struct {
					Date        int64  `json:"date"`
					Numerator   int64  `json:"numerator"`
					Denominator int64  `json:"denominator"`
					SplitRatio  string `json:"splitRatio"`
				} `json:"splits"`
			} `json:"events"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (c *Client) fetchChart(ctx context.Context, symbol string, start, end time.Time, events bool) (*chartResponse, error) {
	if end.IsZero() {
		end = time.Now()
	}

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&period1=%d&period2=%d", c.BaseURL, symbol, start.Unix(), end.Unix())
	if events {
		url += "&events=div%2Csplits"
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data chartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("fetchChart: failed to unmarshal response: %w", err)
	}

	if data.Chart.Error != nil {
		return nil, fmt.Errorf("fetchChart: %w", data.Chart.Error)
	}

	if len(data.Chart.Result) == 0 {
		return nil, fmt.Errorf("fetchChart: no data found for symbol %s", symbol)
	}

	return &data, nil
}

func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	if start.IsZero() {
		start = DefaultHistoryStart
	}

	data, err := c.fetchChart(ctx, symbol, start, end, false)
	if err != nil {
		return nil, fmt.Errorf("History: %w", err)
	}

	result := data.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("History: no quote indicators for symbol %s", symbol)
	}

	quote := result.Indicators.Quote[0]

	var adjClose []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjClose = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]models.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Yahoo pads trading halts with nulls; those rows carry no bar.
		if i >= len(quote.Close) || quote.Close[i] == nil {
			continue
		}

		bar := models.Bar{
			Date:     time.Unix(ts, 0).UTC().Truncate(24 * time.Hour),
			Close:    *quote.Close[i],
			AdjClose: *quote.Close[i],
		}

		if i < len(quote.Open) && quote.Open[i] != nil {
			bar.Open = *quote.Open[i]
		}
		if i < len(quote.High) && quote.High[i] != nil {
			bar.High = *quote.High[i]
		}
		if i < len(quote.Low) && quote.Low[i] != nil {
			bar.Low = *quote.Low[i]
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			bar.Volume = *quote.Volume[i]
		}
		if i < len(adjClose) && adjClose[i] != nil {
			bar.AdjClose = *adjClose[i]
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func (c *Client) Actions(ctx context.Context, symbol string, start time.Time) ([]models.CorporateAction, error) {
	if start.IsZero() {
		start = DefaultHistoryStart
	}

	data, err := c.fetchChart(ctx, symbol, start, time.Time{}, true)
	if err != nil {
		return nil, fmt.Errorf("Actions: %w", err)
	}

	events := data.Chart.Result[0].Events

	var actions []models.CorporateAction
	for _, d := range events.Dividends {
		actions = append(actions, models.CorporateAction{
			Date:  time.Unix(d.Date, 0).UTC().Truncate(24 * time.Hour),
			Kind:  models.ActionDividend,
			Value: d.Amount,
		})
	}

	for _, s := range events.Splits {
		if s.Denominator == 0 {
			continue
		}
		actions = append(actions, models.CorporateAction{
			Date:  time.Unix(s.Date, 0).UTC().Truncate(24 * time.Hour),
			Kind:  models.ActionSplit,
			Value: float64(s.Numerator) / float64(s.Denominator),
		})
	}

	sort.Slice(actions, func(i, j int) bool {
		return actions[i].Date.Before(actions[j].Date)
	})

	return actions, nil
}
