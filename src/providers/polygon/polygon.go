// Package polygon adapts the Polygon.io REST client to the provider
// contract. It serves history, corporate actions, quotes, and profiles;
// option chains are not supported on this adapter.
package polygon

import (
	"context"
	"fmt"
	"sort"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	polygonmodels "github.com/polygon-io/client-go/rest/models"
	log "github.com/sirupsen/logrus"

	"github.com/jklein88/finq/src/httpcache"
	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/providers"
)

type Client struct {
	rest *polygon.Client
}

// NewClient builds an adapter over the given API key. When a session is
// provided its cached HTTP client backs the REST calls.
func NewClient(apiKey string, session *httpcache.Session) *Client {
	if session != nil {
		return &Client{rest: polygon.NewWithClient(apiKey, session.Client())}
	}

	return &Client{rest: polygon.New(apiKey)}
}

func (c *Client) Name() string {
	return "polygon"
}

func (c *Client) History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	if end.IsZero() {
		end = time.Now()
	}

	params := polygonmodels.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   polygonmodels.Day,
		From:       polygonmodels.Millis(start),
		To:         polygonmodels.Millis(end),
	}.WithOrder(polygonmodels.Asc).WithAdjusted(true)

	iter := c.rest.ListAggs(ctx, params)

	var bars []models.Bar
	for iter.Next() {
		item := iter.Item()
		bars = append(bars, models.Bar{
			Date:     time.Time(item.Timestamp).UTC().Truncate(24 * time.Hour),
			Open:     item.Open,
			High:     item.High,
			Low:      item.Low,
			Close:    item.Close,
			AdjClose: item.Close,
			Volume:   int64(item.Volume),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("History: failed to list aggs: %w", err)
	}

	log.Debugf("polygon: fetched %d bars for %s", len(bars), symbol)

	return bars, nil
}

func (c *Client) Actions(ctx context.Context, symbol string, start time.Time) ([]models.CorporateAction, error) {
	var actions []models.CorporateAction

	divParams := polygonmodels.ListDividendsParams{}.WithTicker(polygonmodels.EQ, symbol)
	divIter := c.rest.ListDividends(ctx, divParams)
	for divIter.Next() {
		item := divIter.Item()
		date, err := time.Parse("2006-01-02", item.ExDividendDate)
		if err != nil {
			return nil, fmt.Errorf("Actions: failed to parse ex-dividend date: %w", err)
		}
		if !start.IsZero() && date.Before(start) {
			continue
		}

		actions = append(actions, models.CorporateAction{
			Date:  date,
			Kind:  models.ActionDividend,
			Value: item.CashAmount,
		})
	}
	if err := divIter.Err(); err != nil {
		return nil, fmt.Errorf("Actions: failed to list dividends: %w", err)
	}

	splitParams := polygonmodels.ListSplitsParams{}.WithTicker(polygonmodels.EQ, symbol)
	splitIter := c.rest.ListSplits(ctx, splitParams)
	for splitIter.Next() {
		item := splitIter.Item()
		if item.SplitFrom == 0 {
			continue
		}

		date := time.Time(item.ExecutionDate)
		if !start.IsZero() && date.Before(start) {
			continue
		}

		actions = append(actions, models.CorporateAction{
			Date:  date,
			Kind:  models.ActionSplit,
			Value: item.SplitTo / item.SplitFrom,
		})
	}
	if err := splitIter.Err(); err != nil {
		return nil, fmt.Errorf("Actions: failed to list splits: %w", err)
	}

	sortActionsByDate(actions)

	return actions, nil
}

func (c *Client) Quote(ctx context.Context, symbol string) (*models.QuoteSnapshot, error) {
	prevParams := polygonmodels.GetPreviousCloseAggParams{Ticker: symbol}.WithAdjusted(true)
	prev, err := c.rest.GetPreviousCloseAgg(ctx, prevParams)
	if err != nil {
		return nil, fmt.Errorf("Quote: failed to fetch previous close: %w", err)
	}

	if len(prev.Results) == 0 {
		return nil, fmt.Errorf("Quote: no previous close for symbol %s", symbol)
	}

	details, err := c.rest.GetTickerDetails(ctx, &polygonmodels.GetTickerDetailsParams{Ticker: symbol})
	if err != nil {
		return nil, fmt.Errorf("Quote: failed to fetch ticker details: %w", err)
	}

	return &models.QuoteSnapshot{
		Symbol:            symbol,
		Price:             prev.Results[0].Close,
		MarketCap:         details.Results.MarketCap,
		SharesOutstanding: float64(details.Results.WeightedSharesOutstanding),
		Currency:          details.Results.CurrencyName,
	}, nil
}

func (c *Client) Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error) {
	details, err := c.rest.GetTickerDetails(ctx, &polygonmodels.GetTickerDetailsParams{Ticker: symbol})
	if err != nil {
		return nil, fmt.Errorf("Profile: failed to fetch ticker details: %w", err)
	}

	return &models.CompanyProfile{
		Name:      details.Results.Name,
		Industry:  details.Results.SICDescription,
		Employees: int64(details.Results.TotalEmployees),
		Summary:   details.Results.Description,
	}, nil
}

func (c *Client) OptionChain(ctx context.Context, symbol string) (*models.OptionChainData, error) {
	return nil, fmt.Errorf("OptionChain: %w", providers.ErrNotSupported)
}

func sortActionsByDate(actions []models.CorporateAction) {
	sort.Slice(actions, func(i, j int) bool {
		return actions[i].Date.Before(actions[j].Date)
	})
}
