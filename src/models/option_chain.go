package models

import "time"

// ChainContract is one row of an option chain.
type ChainContract struct {
	Symbol       string
	Underlying   string
	Expiration   time.Time
	Strike       float64
	Type         OptionType
	Bid          float64
	Ask          float64
	Last         float64
	Volume       int64
	OpenInterest int64
	ContractSize int
}

// OptionChainData is the full chain for one underlying at fetch time.
type OptionChainData struct {
	Underlying  string
	Spot        float64
	Expirations []time.Time
	Contracts   []ChainContract
}

// ByType returns the contracts of the given type, preserving order.
func (d *OptionChainData) ByType(t OptionType) []ChainContract {
	var out []ChainContract
	for _, c := range d.Contracts {
		if c.Type == t {
			out = append(out, c)
		}
	}

	return out
}
