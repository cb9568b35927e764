// Package providers defines the market-data provider contract and the
// versioned schema knobs that track provider API revisions.
package providers

import (
	"context"
	"errors"
	"time"

	"github.com/jklein88/finq/src/models"
)

// ErrNotSupported is returned by adapters for operations their provider
// does not serve.
var ErrNotSupported = errors.New("operation not supported by provider")

// Provider is the enumerated set of operations the accessors forward to a
// data source. Adapters translate provider payloads into models types and
// surface provider errors untranslated.
type Provider interface {
	Name() string

	// History returns daily bars from start to end, date ascending. A
	// zero end means the present.
	History(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error)

	// Actions returns dividends and splits from start, date ascending.
	Actions(ctx context.Context, symbol string, start time.Time) ([]models.CorporateAction, error)

	Quote(ctx context.Context, symbol string) (*models.QuoteSnapshot, error)

	Profile(ctx context.Context, symbol string) (*models.CompanyProfile, error)

	OptionChain(ctx context.Context, symbol string) (*models.OptionChainData, error)
}
