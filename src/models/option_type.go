package models

import (
	"fmt"
	"strings"
)

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType normalizes a contract type spelling. Single-letter and
// full-word spellings are accepted case-insensitively, as are the plural
// forms some provider API revisions emit.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(s) {
	case "c", "call", "calls":
		return Call, nil
	case "p", "put", "puts":
		return Put, nil
	}

	return "", fmt.Errorf("ParseOptionType: invalid option type %q, must be one of c, call, p, put", s)
}

func (o OptionType) Validate() error {
	if o != Call && o != Put {
		return fmt.Errorf("OptionType: Validate: invalid option type: %s", o)
	}

	return nil
}
