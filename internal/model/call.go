// Package model defines the core call-screening data types.
package model

import "fmt"

// CallEvent is one inbound call as delivered by the call-screening boundary.
type CallEvent struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name,omitempty"`
	Number string `json:"number,omitempty"`
}

// Action is the outcome of screening a call.
type Action int

const (
	Allow Action = iota
	Block
)

func (a Action) String() string {
	if a == Block {
		return "BLOCK"
	}
	return "ALLOW"
}

// MarshalText renders the action as ALLOW or BLOCK.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses ALLOW or BLOCK.
func (a *Action) UnmarshalText(b []byte) error {
	switch string(b) {
	case "ALLOW":
		*a = Allow
	case "BLOCK":
		*a = Block
	default:
		return fmt.Errorf("unknown action %q", b)
	}
	return nil
}

// ReasonCode tags why a decision was made.
type ReasonCode string

const (
	ReasonNoMatch      ReasonCode = "NO_MATCH"
	ReasonDisabled     ReasonCode = "DISABLED"
	ReasonKeywordMatch ReasonCode = "KEYWORD_MATCH"
)

// Reason explains a Decision. Keyword is set only for ReasonKeywordMatch.
type Reason struct {
	Code    ReasonCode `json:"code"`
	Keyword string     `json:"keyword,omitempty"`
}

func (r Reason) String() string {
	if r.Code == ReasonKeywordMatch {
		return fmt.Sprintf("%s(%s)", r.Code, r.Keyword)
	}
	return string(r.Code)
}

// Decision is the classifier output for one call.
type Decision struct {
	Action Action `json:"action"`
	Reason Reason `json:"reason"`
}

// Blocked reports whether the call should be rejected.
func (d Decision) Blocked() bool { return d.Action == Block }

// BlockReasonSpam is the persisted reason for keyword blocks.
const BlockReasonSpam = "Suspected spam"

// UnknownCaller stands in for an absent number or name in log entries.
const UnknownCaller = "Unknown"

// Record sources.
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
)

// BlockedCall is one persisted BLOCK decision.
type BlockedCall struct {
	ID          int64  `json:"id"`
	PhoneNumber string `json:"phone_number"`
	CallerName  string `json:"caller_name,omitempty"`
	Timestamp   int64  `json:"timestamp"`
	Reason      string `json:"reason"`
	Keyword     string `json:"keyword,omitempty"`
	Source      string `json:"source,omitempty"`
}
