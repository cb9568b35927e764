package models

import "time"

type ActionKind string

const (
	ActionDividend ActionKind = "dividend"
	ActionSplit    ActionKind = "split"
)

// CorporateAction is a dividend or split record. For dividends Value is the
// cash amount per share; for splits it is the ratio (new shares per old).
type CorporateAction struct {
	Date  time.Time
	Kind  ActionKind
	Value float64
}

// FilterActions returns the actions of the given kind, preserving order.
func FilterActions(actions []CorporateAction, kind ActionKind) []CorporateAction {
	var out []CorporateAction
	for _, a := range actions {
		if a.Kind == kind {
			out = append(out, a)
		}
	}

	return out
}
