package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jklein88/finq/src/models"
)

type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			UnderlyingSymbol string  `json:"underlyingSymbol"`
			ExpirationDates  []int64 `json:"expirationDates"`
			Quote            struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"quote"`
			// The per-type contract arrays are keyed by the schema
			// literal ("calls"/"puts" today, singular historically), so
			// they stay raw until the literal resolves them.
			Options []map[string]json.RawMessage `json:"options"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"optionChain"`
}

type chainContractDTO struct {
	ContractSymbol string  `json:"contractSymbol"`
	Strike         float64 `json:"strike"`
	LastPrice      float64 `json:"lastPrice"`
	Bid            float64 `json:"bid"`
	Ask            float64 `json:"ask"`
	Volume         int64   `json:"volume"`
	OpenInterest   int64   `json:"openInterest"`
	Expiration     int64   `json:"expiration"`
	ContractSize   string  `json:"contractSize"`
}

func (c *Client) fetchOptionsPage(ctx context.Context, symbol string, expiration int64) (*optionsResponse, error) {
	url := fmt.Sprintf("%s/v7/finance/options/%s", c.BaseURL, symbol)
	if expiration > 0 {
		url += fmt.Sprintf("?date=%d", expiration)
	}

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var data optionsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("fetchOptionsPage: failed to unmarshal response: %w", err)
	}

	if data.OptionChain.Error != nil {
		return nil, fmt.Errorf("fetchOptionsPage: %w", data.OptionChain.Error)
	}

	if len(data.OptionChain.Result) == 0 {
		return nil, fmt.Errorf("fetchOptionsPage: no option data found for symbol %s", symbol)
	}

	return &data, nil
}

// OptionChain fetches every expiration of the chain. One request per
// expiration; the response cache absorbs repeats within the TTL.
func (c *Client) OptionChain(ctx context.Context, symbol string) (*models.OptionChainData, error) {
	first, err := c.fetchOptionsPage(ctx, symbol, 0)
	if err != nil {
		return nil, fmt.Errorf("OptionChain: %w", err)
	}

	result := first.OptionChain.Result[0]

	chain := &models.OptionChainData{
		Underlying: symbol,
		Spot:       result.Quote.RegularMarketPrice,
	}

	for _, ts := range result.ExpirationDates {
		chain.Expirations = append(chain.Expirations, time.Unix(ts, 0).UTC())
	}

	for _, ts := range result.ExpirationDates {
		page, err := c.fetchOptionsPage(ctx, symbol, ts)
		if err != nil {
			return nil, fmt.Errorf("OptionChain: expiration %d: %w", ts, err)
		}

		for _, raw := range page.OptionChain.Result[0].Options {
			calls, err := decodeContracts(raw, c.schema.CallLiteral)
			if err != nil {
				return nil, fmt.Errorf("OptionChain: %w", err)
			}
			puts, err := decodeContracts(raw, c.schema.PutLiteral)
			if err != nil {
				return nil, fmt.Errorf("OptionChain: %w", err)
			}

			chain.Contracts = append(chain.Contracts, toContracts(calls, symbol, models.Call)...)
			chain.Contracts = append(chain.Contracts, toContracts(puts, symbol, models.Put)...)
		}
	}

	return chain, nil
}

// decodeContracts resolves a contract array by schema literal, accepting
// the pluralized spelling used by newer API revisions.
func decodeContracts(raw map[string]json.RawMessage, literal string) ([]chainContractDTO, error) {
	data, ok := raw[literal]
	if !ok {
		data, ok = raw[literal+"s"]
	}
	if !ok {
		return nil, nil
	}

	var dtos []chainContractDTO
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, fmt.Errorf("decodeContracts: failed to unmarshal %q contracts: %w", literal, err)
	}

	return dtos, nil
}

func toContracts(dtos []chainContractDTO, underlying string, optionType models.OptionType) []models.ChainContract {
	contracts := make([]models.ChainContract, 0, len(dtos))
	for _, dto := range dtos {
		contracts = append(contracts, models.ChainContract{
			Symbol:       dto.ContractSymbol,
			Underlying:   underlying,
			Expiration:   time.Unix(dto.Expiration, 0).UTC(),
			Strike:       dto.Strike,
			Type:         optionType,
			Bid:          dto.Bid,
			Ask:          dto.Ask,
			Last:         dto.LastPrice,
			Volume:       dto.Volume,
			OpenInterest: dto.OpenInterest,
			ContractSize: 100,
		})
	}

	return contracts
}
