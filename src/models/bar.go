package models

import (
	"fmt"
	"time"
)

// Bar is one daily OHLCV record. AdjClose carries the provider's
// split/dividend adjusted close.
type Bar struct {
	Date     time.Time `csv:"date"`
	Open     float64   `csv:"open"`
	High     float64   `csv:"high"`
	Low      float64   `csv:"low"`
	Close    float64   `csv:"close"`
	AdjClose float64   `csv:"adj_close"`
	Volume   int64     `csv:"volume"`
}

// TradingHistory is a date-ascending sequence of daily bars.
type TradingHistory struct {
	Bars []Bar
}

// NewTradingHistory validates that dates are strictly increasing.
func NewTradingHistory(bars []Bar) (*TradingHistory, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("NewTradingHistory: dates must be strictly increasing, bar %d (%s) does not follow %s", i, bars[i].Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}

	return &TradingHistory{Bars: bars}, nil
}

func (h *TradingHistory) Len() int {
	return len(h.Bars)
}

// Close projects the close column as a series.
func (h *TradingHistory) Close() *Series {
	return h.column(func(b Bar) float64 { return b.Close })
}

// AdjClose projects the adjusted close column as a series.
func (h *TradingHistory) AdjClose() *Series {
	return h.column(func(b Bar) float64 { return b.AdjClose })
}

// Volume projects the volume column as a series.
func (h *TradingHistory) Volume() *Series {
	return h.column(func(b Bar) float64 { return float64(b.Volume) })
}

func (h *TradingHistory) column(get func(Bar) float64) *Series {
	dates := make([]time.Time, len(h.Bars))
	values := make([]float64, len(h.Bars))
	for i, b := range h.Bars {
		dates[i] = b.Date
		values[i] = get(b)
	}

	return &Series{Dates: dates, Values: values}
}
