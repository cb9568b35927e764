package options

import (
	"math"

	"github.com/jklein88/finq/src/models"
)

// The pricing routines below implement Black-Scholes with a continuous
// dividend yield. They take volatility and rates percentage-scaled (5.0 =
// 5%), matching the boundary the public Option methods convert at; time is
// in years. Theta is per calendar day, vega and rho are per one percentage
// point.

type bsInput struct {
	spot    float64
	strike  float64
	ratePct float64
	divPct  float64
	years   float64
	volPct  float64
}

func normCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func normPDF(x float64) float64 {
	return (1.0 / math.Sqrt(2*math.Pi)) * math.Exp(-0.5*x*x)
}

func (in bsInput) d1d2() (float64, float64) {
	r := in.ratePct / 100
	q := in.divPct / 100
	v := in.volPct / 100

	d1 := (math.Log(in.spot/in.strike) + (r-q+0.5*v*v)*in.years) / (v * math.Sqrt(in.years))
	d2 := d1 - v*math.Sqrt(in.years)

	return d1, d2
}

func bsValue(in bsInput, t models.OptionType) float64 {
	r := in.ratePct / 100
	q := in.divPct / 100

	d1, d2 := in.d1d2()

	if t == models.Call {
		return in.spot*math.Exp(-q*in.years)*normCDF(d1) - in.strike*math.Exp(-r*in.years)*normCDF(d2)
	}

	return in.strike*math.Exp(-r*in.years)*normCDF(-d2) - in.spot*math.Exp(-q*in.years)*normCDF(-d1)
}

func bsDelta(in bsInput, t models.OptionType) float64 {
	q := in.divPct / 100

	d1, _ := in.d1d2()

	if t == models.Call {
		return math.Exp(-q*in.years) * normCDF(d1)
	}

	return math.Exp(-q*in.years) * (normCDF(d1) - 1)
}

// bsGamma has no call/put branch under this model.
func bsGamma(in bsInput) float64 {
	q := in.divPct / 100
	v := in.volPct / 100

	d1, _ := in.d1d2()

	return math.Exp(-q*in.years) * normPDF(d1) / (in.spot * v * math.Sqrt(in.years))
}

// bsVega has no call/put branch under this model.
func bsVega(in bsInput) float64 {
	q := in.divPct / 100

	d1, _ := in.d1d2()

	return in.spot * math.Exp(-q*in.years) * normPDF(d1) * math.Sqrt(in.years) / 100
}

func bsTheta(in bsInput, t models.OptionType) float64 {
	r := in.ratePct / 100
	q := in.divPct / 100
	v := in.volPct / 100

	d1, d2 := in.d1d2()

	common := -in.spot * math.Exp(-q*in.years) * normPDF(d1) * v / (2 * math.Sqrt(in.years))

	var annual float64
	if t == models.Call {
		annual = common + q*in.spot*math.Exp(-q*in.years)*normCDF(d1) - r*in.strike*math.Exp(-r*in.years)*normCDF(d2)
	} else {
		annual = common - q*in.spot*math.Exp(-q*in.years)*normCDF(-d1) + r*in.strike*math.Exp(-r*in.years)*normCDF(-d2)
	}

	return annual / 365
}

func bsRho(in bsInput, t models.OptionType) float64 {
	r := in.ratePct / 100

	_, d2 := in.d1d2()

	if t == models.Call {
		return in.strike * in.years * math.Exp(-r*in.years) * normCDF(d2) / 100
	}

	return -in.strike * in.years * math.Exp(-r*in.years) * normCDF(-d2) / 100
}

const (
	ivMaxIterations = 100
	ivTolerance     = 1e-6
	ivMin           = 1e-4
	ivMax           = 10.0
)

// solveImpliedVol finds the decimal volatility that reproduces price under
// the pricing model. Newton iteration with a bisection fallback when vega
// flattens out or the iterate escapes the bracket.
func solveImpliedVol(in bsInput, t models.OptionType, price float64) (float64, bool) {
	sigma := 0.5

	for i := 0; i < ivMaxIterations; i++ {
		in.volPct = sigma * 100

		diff := bsValue(in, t) - price
		if math.Abs(diff) < ivTolerance {
			return sigma, true
		}

		vega := bsVega(in) * 100 // per unit vol, not per percentage point
		if math.Abs(vega) < 1e-10 {
			break
		}

		next := sigma - diff/vega
		if next <= ivMin || next >= ivMax || math.IsNaN(next) {
			break
		}

		sigma = next
	}

	// Bisection on [ivMin, ivMax]; the model price is monotone in vol.
	lo, hi := ivMin, ivMax
	for i := 0; i < ivMaxIterations; i++ {
		sigma = (lo + hi) / 2
		in.volPct = sigma * 100

		diff := bsValue(in, t) - price
		if math.Abs(diff) < ivTolerance {
			return sigma, true
		}

		if diff > 0 {
			hi = sigma
		} else {
			lo = sigma
		}
	}

	// A tight bracket is not convergence: prices outside the model's
	// range (below the zero-vol bound, above the vega-exhausted ceiling)
	// pin sigma to a bracket edge without ever matching the price.
	in.volPct = sigma * 100
	return sigma, math.Abs(bsValue(in, t)-price) < ivTolerance
}
