package models

import (
	"math"
	"sort"
	"time"
)

// Series is a date-indexed slice of float64 values. Dates are ascending and
// parallel to Values. Operations return new series; a Series is never
// mutated in place.
type Series struct {
	Dates  []time.Time
	Values []float64
}

func (s *Series) Len() int {
	return len(s.Values)
}

// Last returns the final value, or NaN for an empty series.
func (s *Series) Last() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}

	return s.Values[len(s.Values)-1]
}

// PctChange returns the period-over-period fractional change. The first
// element has no prior observation and is NaN.
func (s *Series) PctChange() *Series {
	values := make([]float64, len(s.Values))
	if len(values) > 0 {
		values[0] = math.NaN()
	}

	for i := 1; i < len(s.Values); i++ {
		values[i] = s.Values[i]/s.Values[i-1] - 1
	}

	return &Series{Dates: append([]time.Time(nil), s.Dates...), Values: values}
}

// Truncate returns the subseries with dates on or before end. A zero end
// returns the series unchanged.
func (s *Series) Truncate(end time.Time) *Series {
	if end.IsZero() {
		return s
	}

	n := sort.Search(len(s.Dates), func(i int) bool {
		return s.Dates[i].After(end)
	})

	return &Series{Dates: s.Dates[:n], Values: s.Values[:n]}
}

// Since returns the subseries with dates on or after start. A zero start
// returns the series unchanged.
func (s *Series) Since(start time.Time) *Series {
	if start.IsZero() {
		return s
	}

	n := sort.Search(len(s.Dates), func(i int) bool {
		return !s.Dates[i].Before(start)
	})

	return &Series{Dates: s.Dates[n:], Values: s.Values[n:]}
}

// Tail returns the trailing n elements, or the whole series when it holds
// fewer than n.
func (s *Series) Tail(n int) *Series {
	if n >= len(s.Values) {
		return s
	}

	return &Series{Dates: s.Dates[len(s.Dates)-n:], Values: s.Values[len(s.Values)-n:]}
}

// AlignZeroFill merges two series onto the union of their dates. Dates
// missing from either side are filled with zero. NaN values are also zeroed
// so that return series with an undefined first element can be regressed.
func (s *Series) AlignZeroFill(other *Series) (*Series, *Series) {
	union := make(map[time.Time]struct{}, len(s.Dates)+len(other.Dates))
	for _, d := range s.Dates {
		union[d] = struct{}{}
	}
	for _, d := range other.Dates {
		union[d] = struct{}{}
	}

	dates := make([]time.Time, 0, len(union))
	for d := range union {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	left := &Series{Dates: dates, Values: fillByDate(dates, s)}
	right := &Series{Dates: dates, Values: fillByDate(dates, other)}

	return left, right
}

func fillByDate(dates []time.Time, s *Series) []float64 {
	byDate := make(map[time.Time]float64, len(s.Dates))
	for i, d := range s.Dates {
		byDate[d] = s.Values[i]
	}

	values := make([]float64, len(dates))
	for i, d := range dates {
		if v, ok := byDate[d]; ok && !math.IsNaN(v) {
			values[i] = v
		}
	}

	return values
}
