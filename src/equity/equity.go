// Package equity is the data accessor for one ticker: trading history,
// corporate actions, quote snapshots, fundamentals, and the analytics
// derived from them. Every accessor re-fetches through the shared cached
// session; no results are held in memory.
package equity

import (
	"context"
	"fmt"
	"time"

	"github.com/jklein88/finq/src/httpcache"
	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/options"
	"github.com/jklein88/finq/src/providers"
	"github.com/jklein88/finq/src/providers/yahoo"
)

// Config carries the tunables that used to be module constants. Tests
// override them per instance.
type Config struct {
	// TradingDays is the annualization factor base. Default 252.
	TradingDays int

	// HistoryStart is the fixed start of full-history fetches.
	HistoryStart time.Time

	// RiskFreeRate is the default decimal rate for option valuation.
	RiskFreeRate float64

	// NearWindow is the near-the-money contract count.
	NearWindow int

	// CacheDir, CacheTTL, and CacheInMemory configure the session built
	// when none is supplied.
	CacheDir      string
	CacheTTL      time.Duration
	CacheInMemory bool
}

func DefaultConfig() Config {
	return Config{
		TradingDays:  252,
		HistoryStart: yahoo.DefaultHistoryStart,
		RiskFreeRate: options.DefaultRiskFreeRate,
		NearWindow:   options.DefaultNearWindow,
		CacheTTL:     httpcache.DefaultTTL,
	}
}

// Equity wraps a ticker, a cached HTTP session, and a provider.
type Equity struct {
	Ticker string

	cfg         Config
	session     *httpcache.Session
	provider    providers.Provider
	ownsSession bool
}

type Option func(*Equity)

func WithConfig(cfg Config) Option {
	return func(e *Equity) {
		e.cfg = cfg
	}
}

// WithProvider replaces the default Yahoo adapter.
func WithProvider(p providers.Provider) Option {
	return func(e *Equity) {
		e.provider = p
	}
}

// WithSession shares an existing cached session instead of owning one.
func WithSession(s *httpcache.Session) Option {
	return func(e *Equity) {
		e.session = s
	}
}

func New(ticker string, opts ...Option) (*Equity, error) {
	e := &Equity{
		Ticker: ticker,
		cfg:    DefaultConfig(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.provider == nil {
		if e.session == nil {
			session, err := httpcache.NewSession(httpcache.Config{
				Dir:      e.cfg.CacheDir,
				TTL:      e.cfg.CacheTTL,
				InMemory: e.cfg.CacheInMemory,
			})
			if err != nil {
				return nil, fmt.Errorf("equity.New: failed to create session: %w", err)
			}

			e.session = session
			e.ownsSession = true
		}

		e.provider = yahoo.NewClient(e.session)
	}

	return e, nil
}

// Close releases the session when this equity owns it.
func (e *Equity) Close() error {
	if e.ownsSession && e.session != nil {
		return e.session.Close()
	}

	return nil
}

// sibling builds an equity for another ticker sharing this one's provider
// and session.
func (e *Equity) sibling(ticker string) *Equity {
	return &Equity{
		Ticker:   ticker,
		cfg:      e.cfg,
		session:  e.session,
		provider: e.provider,
	}
}

// TradingData fetches the full OHLCV history from the configured start
// date to the present. Provider errors surface untranslated.
func (e *Equity) TradingData(ctx context.Context) (*models.TradingHistory, error) {
	bars, err := e.provider.History(ctx, e.Ticker, e.cfg.HistoryStart, time.Time{})
	if err != nil {
		return nil, err
	}

	return models.NewTradingHistory(bars)
}

// ClosePrices is the closing price series.
func (e *Equity) ClosePrices(ctx context.Context) (*models.Series, error) {
	data, err := e.TradingData(ctx)
	if err != nil {
		return nil, err
	}

	return data.Close(), nil
}

// AdjClose is the adjusted closing price series.
func (e *Equity) AdjClose(ctx context.Context) (*models.Series, error) {
	data, err := e.TradingData(ctx)
	if err != nil {
		return nil, err
	}

	return data.AdjClose(), nil
}

// Returns is the percent change of adjusted close. The first element is
// NaN.
func (e *Equity) Returns(ctx context.Context) (*models.Series, error) {
	adjClose, err := e.AdjClose(ctx)
	if err != nil {
		return nil, err
	}

	return adjClose.PctChange(), nil
}

func (e *Equity) Actions(ctx context.Context) ([]models.CorporateAction, error) {
	return e.provider.Actions(ctx, e.Ticker, e.cfg.HistoryStart)
}

func (e *Equity) Dividends(ctx context.Context) ([]models.CorporateAction, error) {
	actions, err := e.Actions(ctx)
	if err != nil {
		return nil, err
	}

	return models.FilterActions(actions, models.ActionDividend), nil
}

func (e *Equity) Splits(ctx context.Context) ([]models.CorporateAction, error) {
	actions, err := e.Actions(ctx)
	if err != nil {
		return nil, err
	}

	return models.FilterActions(actions, models.ActionSplit), nil
}

func (e *Equity) Quote(ctx context.Context) (*models.QuoteSnapshot, error) {
	return e.provider.Quote(ctx, e.Ticker)
}

func (e *Equity) Profile(ctx context.Context) (*models.CompanyProfile, error) {
	return e.provider.Profile(ctx, e.Ticker)
}

func (e *Equity) Price(ctx context.Context) (float64, error) {
	quote, err := e.Quote(ctx)
	if err != nil {
		return 0, err
	}

	return quote.Price, nil
}

func (e *Equity) Currency(ctx context.Context) (string, error) {
	quote, err := e.Quote(ctx)
	if err != nil {
		return "", err
	}

	return quote.Currency, nil
}

func (e *Equity) MarketCap(ctx context.Context) (float64, error) {
	quote, err := e.Quote(ctx)
	if err != nil {
		return 0, err
	}

	return quote.MarketCap, nil
}

func (e *Equity) SharesOutstanding(ctx context.Context) (float64, error) {
	quote, err := e.Quote(ctx)
	if err != nil {
		return 0, err
	}

	return quote.SharesOutstanding, nil
}

// Closed reports whether the market is outside its regular session.
func (e *Equity) Closed(ctx context.Context) (bool, error) {
	quote, err := e.Quote(ctx)
	if err != nil {
		return false, err
	}

	return quote.MarketState != "REGULAR", nil
}

func (e *Equity) Name(ctx context.Context) (string, error) {
	profile, err := e.Profile(ctx)
	if err != nil {
		return "", err
	}

	return profile.Name, nil
}

func (e *Equity) Sector(ctx context.Context) (string, error) {
	profile, err := e.Profile(ctx)
	if err != nil {
		return "", err
	}

	return profile.Sector, nil
}

func (e *Equity) Industry(ctx context.Context) (string, error) {
	profile, err := e.Profile(ctx)
	if err != nil {
		return "", err
	}

	return profile.Industry, nil
}

func (e *Equity) Employees(ctx context.Context) (int64, error) {
	profile, err := e.Profile(ctx)
	if err != nil {
		return 0, err
	}

	return profile.Employees, nil
}

// AnnualDividend prefers the forward dividend-rate field from the quote
// snapshot, falls back to the trailing field, and defaults to zero when
// neither is present.
func (e *Equity) AnnualDividend(ctx context.Context) (float64, error) {
	quote, err := e.Quote(ctx)
	if err != nil {
		return 0, err
	}

	if quote.ForwardDividendRate != 0 {
		return quote.ForwardDividendRate, nil
	}

	return quote.TrailingDividendRate, nil
}

// DividendYield is the annual dividend over the current price.
func (e *Equity) DividendYield(ctx context.Context) (float64, error) {
	annual, err := e.AnnualDividend(ctx)
	if err != nil {
		return 0, err
	}

	price, err := e.Price(ctx)
	if err != nil {
		return 0, err
	}

	if price == 0 {
		return 0, fmt.Errorf("DividendYield: division by zero: price for %s is zero", e.Ticker)
	}

	return annual / price, nil
}
