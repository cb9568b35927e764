// Package options holds the option chain accessor and the closed-form
// option valuation.
package options

import (
	"errors"
	"fmt"
	"time"

	"github.com/jklein88/finq/src/models"
	"github.com/jklein88/finq/src/utils"
)

// DefaultRiskFreeRate is a placeholder decimal rate used when none is
// supplied. TODO: source this from current treasury yields instead of a
// constant.
const DefaultRiskFreeRate = 0.02

// ErrNoPrice is returned by ImpliedVolatility when the contract was built
// without a market price.
var ErrNoPrice = errors.New("no price provided")

// Params are the scalar inputs to a valuation. All rates, yields, and
// volatilities are decimal fractions (0.05 = 5%); the conversion to the
// percentage-scaled pricing routines happens at the pricing-call boundary
// and nowhere else.
type Params struct {
	Underlying string
	Strike     float64
	Expiration time.Time

	// Type accepts c, call, p, put in any case.
	Type string

	// Spot is the underlying price at valuation.
	Spot float64

	// DividendYield is the underlying's continuous annual yield.
	DividendYield float64

	// Price is the observed market price, required for implied
	// volatility.
	Price *float64

	// Vol is the volatility assumption. When absent, Greeks derive it
	// from Price; constructing with neither fails.
	Vol *float64

	// Rate overrides DefaultRiskFreeRate.
	Rate *float64

	// ValuationDate defaults to today.
	ValuationDate time.Time
}

// Option is an immutable valuation of one contract. Greeks are recomputed
// from the stored inputs on every call; nothing is cached.
type Option struct {
	underlying    string
	strike        float64
	spot          float64
	yield         float64
	expiration    time.Time
	valuationDate time.Time
	optionType    models.OptionType
	rate          float64
	price         *float64
	vol           *float64
}

func NewOption(p Params) (*Option, error) {
	optionType, err := models.ParseOptionType(p.Type)
	if err != nil {
		return nil, fmt.Errorf("NewOption: %w", err)
	}

	if p.Vol == nil && p.Price == nil {
		return nil, fmt.Errorf("NewOption: either a volatility assumption or a market price is required")
	}

	valuationDate := p.ValuationDate
	if valuationDate.IsZero() {
		valuationDate = time.Now()
	}

	rate := DefaultRiskFreeRate
	if p.Rate != nil {
		rate = *p.Rate
	}

	return &Option{
		underlying:    p.Underlying,
		strike:        p.Strike,
		spot:          p.Spot,
		yield:         p.DividendYield,
		expiration:    p.Expiration,
		valuationDate: valuationDate,
		optionType:    optionType,
		rate:          rate,
		price:         p.Price,
		vol:           p.Vol,
	}, nil
}

func (o *Option) Underlying() string {
	return o.underlying
}

func (o *Option) Strike() float64 {
	return o.strike
}

func (o *Option) Type() models.OptionType {
	return o.optionType
}

func (o *Option) Rate() float64 {
	return o.rate
}

// DaysToExpiration is the calendar-day difference between expiration and
// the valuation date. It is negative for already-expired contracts; the
// pricing formulas produce meaningless results in that case and no guard is
// applied.
func (o *Option) DaysToExpiration() int {
	return utils.CalendarDaysBetween(o.valuationDate, o.expiration)
}

// Volatility returns the decimal volatility the Greeks are computed at:
// the assumption supplied at construction, or the implied volatility of the
// supplied market price.
func (o *Option) Volatility() (float64, error) {
	if o.vol != nil {
		return *o.vol, nil
	}

	return o.ImpliedVolatility()
}

func (o *Option) input() (bsInput, error) {
	vol, err := o.Volatility()
	if err != nil {
		return bsInput{}, err
	}

	in := o.baseInput()
	in.volPct = vol * 100
	return in, nil
}

func (o *Option) baseInput() bsInput {
	return bsInput{
		spot:    o.spot,
		strike:  o.strike,
		ratePct: o.rate * 100,
		divPct:  o.yield * 100,
		years:   float64(o.DaysToExpiration()) / 365,
	}
}

// Value is the theoretical price under Black-Scholes with continuous
// dividend yield.
func (o *Option) Value() (float64, error) {
	in, err := o.input()
	if err != nil {
		return 0, fmt.Errorf("Value: %w", err)
	}

	return bsValue(in, o.optionType), nil
}

func (o *Option) Delta() (float64, error) {
	in, err := o.input()
	if err != nil {
		return 0, fmt.Errorf("Delta: %w", err)
	}

	return bsDelta(in, o.optionType), nil
}

func (o *Option) Gamma() (float64, error) {
	in, err := o.input()
	if err != nil {
		return 0, fmt.Errorf("Gamma: %w", err)
	}

	return bsGamma(in), nil
}

// Theta is per calendar day.
func (o *Option) Theta() (float64, error) {
	in, err := o.input()
	if err != nil {
		return 0, fmt.Errorf("Theta: %w", err)
	}

	return bsTheta(in, o.optionType), nil
}

// Vega is per one percentage point of volatility.
func (o *Option) Vega() (float64, error) {
	in, err := o.input()
	if err != nil {
		return 0, fmt.Errorf("Vega: %w", err)
	}

	return bsVega(in), nil
}

// Rho is per one percentage point of rate.
func (o *Option) Rho() (float64, error) {
	in, err := o.input()
	if err != nil {
		return 0, fmt.Errorf("Rho: %w", err)
	}

	return bsRho(in, o.optionType), nil
}

// ImpliedVolatility solves for the decimal volatility that reproduces the
// market price supplied at construction.
func (o *Option) ImpliedVolatility() (float64, error) {
	if o.price == nil {
		return 0, fmt.Errorf("ImpliedVolatility: %w", ErrNoPrice)
	}

	sigma, ok := solveImpliedVol(o.baseInput(), o.optionType, *o.price)
	if !ok {
		return 0, fmt.Errorf("ImpliedVolatility: failed to converge for price %.4f", *o.price)
	}

	return sigma, nil
}
