package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestPctChange(t *testing.T) {
	t.Run("first element is NaN", func(t *testing.T) {
		s := &Series{
			Dates:  []time.Time{day(0), day(1), day(2)},
			Values: []float64{100, 110, 99},
		}

		returns := s.PctChange()

		require.Equal(t, 3, returns.Len())
		assert.True(t, math.IsNaN(returns.Values[0]))
		assert.InDelta(t, 0.10, returns.Values[1], 1e-9)
		assert.InDelta(t, -0.10, returns.Values[2], 1e-9)
	})

	t.Run("defined count is one fewer than prices", func(t *testing.T) {
		s := &Series{
			Dates:  []time.Time{day(0), day(1), day(2), day(3)},
			Values: []float64{10, 11, 12, 13},
		}

		returns := s.PctChange()

		defined := 0
		for _, v := range returns.Values {
			if !math.IsNaN(v) {
				defined++
			}
		}

		assert.Equal(t, s.Len()-1, defined)
	})

	t.Run("empty series", func(t *testing.T) {
		s := &Series{}
		assert.Equal(t, 0, s.PctChange().Len())
	})
}

func TestTruncateAndTail(t *testing.T) {
	s := &Series{
		Dates:  []time.Time{day(0), day(1), day(2), day(3), day(4)},
		Values: []float64{1, 2, 3, 4, 5},
	}

	t.Run("truncate keeps dates on or before end", func(t *testing.T) {
		out := s.Truncate(day(2))
		require.Equal(t, 3, out.Len())
		assert.Equal(t, 3.0, out.Last())
	})

	t.Run("zero end is a no-op", func(t *testing.T) {
		assert.Equal(t, 5, s.Truncate(time.Time{}).Len())
	})

	t.Run("tail returns trailing n", func(t *testing.T) {
		out := s.Tail(2)
		require.Equal(t, 2, out.Len())
		assert.Equal(t, []float64{4, 5}, out.Values)
	})

	t.Run("tail larger than series returns all", func(t *testing.T) {
		assert.Equal(t, 5, s.Tail(10).Len())
	})

	t.Run("since keeps dates on or after start", func(t *testing.T) {
		out := s.Since(day(3))
		require.Equal(t, 2, out.Len())
		assert.Equal(t, []float64{4, 5}, out.Values)
	})
}

func TestAlignZeroFill(t *testing.T) {
	left := &Series{
		Dates:  []time.Time{day(0), day(1), day(3)},
		Values: []float64{math.NaN(), 0.02, 0.01},
	}
	right := &Series{
		Dates:  []time.Time{day(1), day(2), day(3)},
		Values: []float64{0.05, -0.01, 0.03},
	}

	l, r := left.AlignZeroFill(right)

	require.Equal(t, 4, l.Len())
	require.Equal(t, 4, r.Len())

	// day(0): right missing, left NaN zeroed
	assert.Equal(t, 0.0, l.Values[0])
	assert.Equal(t, 0.0, r.Values[0])

	// day(2): left missing
	assert.Equal(t, 0.0, l.Values[2])
	assert.Equal(t, -0.01, r.Values[2])

	assert.Equal(t, 0.01, l.Values[3])
	assert.Equal(t, 0.03, r.Values[3])
}

func TestNewTradingHistory(t *testing.T) {
	t.Run("accepts ascending dates", func(t *testing.T) {
		history, err := NewTradingHistory([]Bar{
			{Date: day(0), Close: 1},
			{Date: day(1), Close: 2},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, history.Len())
	})

	t.Run("rejects equal or descending dates", func(t *testing.T) {
		_, err := NewTradingHistory([]Bar{
			{Date: day(1), Close: 1},
			{Date: day(1), Close: 2},
		})
		assert.Error(t, err)
	})
}
