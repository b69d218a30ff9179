// Package screen decides whether an inbound call is allowed or blocked and
// commits that decision to the call-screening boundary.
package screen

import (
	"strings"

	"github.com/rcliao/callguard/internal/model"
)

// DefaultKeywords are carrier-injected risk labels, in match priority order.
var DefaultKeywords = []string{
	"spam risk",
	"scam likely",
	"potential spam",
	"fraud risk",
	"spam caller",
	"scam risk",
	"suspected spam",
	"telemarketer",
}

// Classifier matches caller display names against an ordered phrase list.
// The zero value matches nothing.
type Classifier struct {
	keywords []string
}

// NewClassifier lowercases keywords and drops empty ones. Order is kept.
func NewClassifier(keywords []string) Classifier {
	c := Classifier{keywords: make([]string, 0, len(keywords))}
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			c.keywords = append(c.keywords, k)
		}
	}
	return c
}

// DefaultClassifier uses DefaultKeywords.
func DefaultClassifier() Classifier {
	return NewClassifier(DefaultKeywords)
}

// Keywords returns a copy of the phrase list.
func (c Classifier) Keywords() []string {
	return append([]string(nil), c.keywords...)
}

// Classify returns BLOCK with the first phrase contained in the lowercased
// name, ALLOW/NO_MATCH when none is, and ALLOW/DISABLED without looking at
// the name when enabled is false.
func (c Classifier) Classify(name string, enabled bool) model.Decision {
	if !enabled {
		return model.Decision{Action: model.Allow, Reason: model.Reason{Code: model.ReasonDisabled}}
	}

	normalized := strings.ToLower(name)
	for _, k := range c.keywords {
		if strings.Contains(normalized, k) {
			return model.Decision{
				Action: model.Block,
				Reason: model.Reason{Code: model.ReasonKeywordMatch, Keyword: k},
			}
		}
	}
	return model.Decision{Action: model.Allow, Reason: model.Reason{Code: model.ReasonNoMatch}}
}
