package equity

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/jklein88/finq/src/models"
)

// HistVol is the annualized sample standard deviation of the trailing
// `days` returns ending at endDate (zero endDate means the latest date).
// When fewer returns are available the estimate silently uses what there
// is.
func (e *Equity) HistVol(ctx context.Context, days int, endDate time.Time) (float64, error) {
	returns, err := e.Returns(ctx)
	if err != nil {
		return 0, err
	}

	window := dropNaN(returns.Truncate(endDate).Tail(days).Values)
	if len(window) < 2 {
		return math.NaN(), nil
	}

	sd, err := stats.StandardDeviationSample(window)
	if err != nil {
		return 0, fmt.Errorf("HistVol: failed to calculate the standard deviation: %v", err)
	}

	return sd * math.Sqrt(float64(e.cfg.TradingDays)), nil
}

// RollingHistVol is the full annualized rolling standard deviation series
// with a window of `days`, aligned to the return dates. Entries before the
// window fills are NaN.
func (e *Equity) RollingHistVol(ctx context.Context, days int, endDate time.Time) (*models.Series, error) {
	returns, err := e.Returns(ctx)
	if err != nil {
		return nil, err
	}

	data := returns.Truncate(endDate)
	annualize := math.Sqrt(float64(e.cfg.TradingDays))

	values := rollingSampleStd(data.Values, days)
	for i := range values {
		values[i] *= annualize
	}

	return &models.Series{Dates: data.Dates, Values: values}, nil
}

// rollingSampleStd computes a sliding-window sample standard deviation in
// one pass, carrying running sums instead of re-slicing per window. Output
// is NaN until a full window of defined values is available; the leading
// NaN return stays excluded from every window.
func rollingSampleStd(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	if window < 2 || len(values) == 0 {
		return out
	}

	// Index 0 is the undefined first return.
	var sum, sumSq float64
	count := 0

	for i := 1; i < len(values); i++ {
		v := values[i]
		sum += v
		sumSq += v * v
		count++

		if count > window {
			old := values[i-window]
			sum -= old
			sumSq -= old * old
			count--
		}

		if count == window {
			variance := (sumSq - sum*sum/float64(window)) / float64(window-1)
			if variance < 0 {
				variance = 0
			}
			out[i] = math.Sqrt(variance)
		}
	}

	return out
}

// HistVolByDays maps each window length in [minDays, maxDays) to the
// annualized volatility of the trailing window of that length ending at
// endDate. A single reverse Welford pass serves every window length.
func (e *Equity) HistVolByDays(ctx context.Context, endDate time.Time, minDays, maxDays int) (map[int]float64, error) {
	if minDays < 2 {
		return nil, fmt.Errorf("HistVolByDays: minDays must be at least 2, got %d", minDays)
	}
	if maxDays <= minDays {
		return nil, fmt.Errorf("HistVolByDays: maxDays (%d) must exceed minDays (%d)", maxDays, minDays)
	}

	returns, err := e.Returns(ctx)
	if err != nil {
		return nil, err
	}

	window := dropNaN(returns.Truncate(endDate).Values)
	annualize := math.Sqrt(float64(e.cfg.TradingDays))

	out := make(map[int]float64, maxDays-minDays)

	// Welford over the returns newest-first: after n samples the
	// accumulator holds exactly the trailing window of length n.
	var mean, m2 float64
	n := 0

	for i := len(window) - 1; i >= 0 && n < maxDays-1; i-- {
		n++
		delta := window[i] - mean
		mean += delta / float64(n)
		m2 += delta * (window[i] - mean)

		if n >= minDays && n < maxDays {
			out[n] = math.Sqrt(m2/float64(n-1)) * annualize
		}
	}

	return out, nil
}

// AlphaBeta regresses this instrument's returns on a benchmark's under the
// OLS market model. The two return series are aligned by date with missing
// values treated as zero return, optionally restricted to [start, end].
func (e *Equity) AlphaBeta(ctx context.Context, benchmark string, start, end time.Time) (alpha float64, beta float64, err error) {
	returns, err := e.Returns(ctx)
	if err != nil {
		return 0, 0, err
	}

	benchReturns, err := e.sibling(benchmark).Returns(ctx)
	if err != nil {
		return 0, 0, err
	}

	instrument, bench := returns.AlignZeroFill(benchReturns)
	instrument = instrument.Since(start).Truncate(end)
	bench = bench.Since(start).Truncate(end)

	if instrument.Len() < 2 {
		return 0, 0, fmt.Errorf("AlphaBeta: not enough aligned returns for %s vs %s", e.Ticker, benchmark)
	}

	cov, err := stats.Covariance(bench.Values, instrument.Values)
	if err != nil {
		return 0, 0, fmt.Errorf("AlphaBeta: failed to calculate covariance: %v", err)
	}

	variance, err := stats.SampleVariance(bench.Values)
	if err != nil {
		return 0, 0, fmt.Errorf("AlphaBeta: failed to calculate variance: %v", err)
	}

	if variance == 0 {
		return 0, 0, fmt.Errorf("AlphaBeta: benchmark %s has zero return variance", benchmark)
	}

	benchMean, err := stats.Mean(bench.Values)
	if err != nil {
		return 0, 0, fmt.Errorf("AlphaBeta: failed to calculate mean: %v", err)
	}

	instrumentMean, err := stats.Mean(instrument.Values)
	if err != nil {
		return 0, 0, fmt.Errorf("AlphaBeta: failed to calculate mean: %v", err)
	}

	beta = cov / variance
	alpha = instrumentMean - beta*benchMean

	return alpha, beta, nil
}

// Alpha is the OLS intercept versus the benchmark over full history.
func (e *Equity) Alpha(ctx context.Context, benchmark string) (float64, error) {
	alpha, _, err := e.AlphaBeta(ctx, benchmark, time.Time{}, time.Time{})
	return alpha, err
}

// Beta is the OLS slope versus the benchmark over full history.
func (e *Equity) Beta(ctx context.Context, benchmark string) (float64, error) {
	_, beta, err := e.AlphaBeta(ctx, benchmark, time.Time{}, time.Time{})
	return beta, err
}

// VWAP is sum(close x volume) / sum(volume) over the trailing `days` bars
// ending at endDate.
func (e *Equity) VWAP(ctx context.Context, days int, endDate time.Time) (float64, error) {
	data, err := e.TradingData(ctx)
	if err != nil {
		return 0, err
	}

	bars := data.Bars
	if !endDate.IsZero() {
		cut := len(bars)
		for cut > 0 && bars[cut-1].Date.After(endDate) {
			cut--
		}
		bars = bars[:cut]
	}

	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}

	var notional, volume float64
	for _, b := range bars {
		notional += b.Close * float64(b.Volume)
		volume += float64(b.Volume)
	}

	if volume == 0 {
		return 0, fmt.Errorf("VWAP: no volume traded for %s in window", e.Ticker)
	}

	return notional / volume, nil
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}

	return out
}
