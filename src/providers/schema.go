package providers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Schema captures the parts of a provider's wire contract that have changed
// across API revisions, so a revision is a config change rather than a code
// change. The chain type literal has historically flipped between "call"
// and "calls"; the dividend rate has moved between field names.
type Schema struct {
	// CallLiteral and PutLiteral are the values of the chain's contract
	// type field.
	CallLiteral string `yaml:"call_literal"`
	PutLiteral  string `yaml:"put_literal"`

	// DividendRateFields is the preference order of quote fields holding
	// the annual dividend rate. The first non-zero field wins.
	DividendRateFields []string `yaml:"dividend_rate_fields"`
}

func DefaultSchema() Schema {
	return Schema{
		CallLiteral:        "call",
		PutLiteral:         "put",
		DividendRateFields: []string{"dividendRate", "trailingAnnualDividendRate"},
	}
}

// LoadSchema reads a schema override file, filling unset fields from the
// defaults.
func LoadSchema(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("LoadSchema: failed to read %s: %w", path, err)
	}

	schema := DefaultSchema()
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return Schema{}, fmt.Errorf("LoadSchema: failed to parse %s: %w", path, err)
	}

	if schema.CallLiteral == "" {
		schema.CallLiteral = "call"
	}
	if schema.PutLiteral == "" {
		schema.PutLiteral = "put"
	}

	return schema, nil
}
