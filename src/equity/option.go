package equity

import (
	"context"
	"fmt"
	"time"

	"github.com/jklein88/finq/src/options"
	"github.com/jklein88/finq/src/utils"
)

// Options returns the chain accessor for this equity, sharing its provider
// and session. Near-the-money filters fetch this equity's live price.
func (e *Equity) Options() *options.Chain {
	return options.NewChain(e.Ticker, e.provider,
		options.WithNearWindow(e.cfg.NearWindow),
		options.WithSpotFunc(e.Price),
	)
}

// Option builds a valuation for a contract on this equity, resolving the
// market inputs the valuation itself never fetches: the spot price, the
// dividend yield, and (when no volatility assumption is given) the
// historical volatility over a window equal to the contract's calendar
// days to expiration. That window deliberately mixes calendar days with a
// trading-day volatility estimate, matching the accessor's long-standing
// proxy assumption. The hist-vol default applies even when a market price
// is supplied; implied volatility stays an explicit accessor.
func (e *Equity) Option(ctx context.Context, p options.Params) (*options.Option, error) {
	p.Underlying = e.Ticker

	if p.Spot == 0 {
		price, err := e.Price(ctx)
		if err != nil {
			return nil, fmt.Errorf("Option: failed to fetch spot price: %w", err)
		}
		p.Spot = price
	}

	if p.DividendYield == 0 {
		annual, err := e.AnnualDividend(ctx)
		if err != nil {
			return nil, fmt.Errorf("Option: failed to fetch annual dividend: %w", err)
		}
		if p.Spot != 0 {
			p.DividendYield = annual / p.Spot
		}
	}

	if p.Rate == nil {
		rate := e.cfg.RiskFreeRate
		p.Rate = &rate
	}

	if p.Vol == nil {
		valuation := p.ValuationDate
		if valuation.IsZero() {
			valuation = time.Now()
		}

		days := utils.CalendarDaysBetween(valuation, p.Expiration)
		vol, err := e.HistVol(ctx, days, time.Time{})
		if err != nil {
			return nil, fmt.Errorf("Option: failed to derive default volatility: %w", err)
		}

		p.Vol = &vol
	}

	return options.NewOption(p)
}
