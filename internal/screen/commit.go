package screen

import (
	"context"

	"github.com/rcliao/callguard/internal/model"
)

// Response is the four-flag answer handed to the call-screening boundary.
type Response struct {
	Disallow         bool `json:"disallow"`
	Reject           bool `json:"reject"`
	SkipCallLog      bool `json:"skip_call_log"`
	SkipNotification bool `json:"skip_notification"`
}

// Commit maps a decision to a boundary response. Blocked calls are rejected
// but stay visible in the call log and notifications.
func Commit(d model.Decision) Response {
	if d.Blocked() {
		return Response{Disallow: true, Reject: true, SkipCallLog: false, SkipNotification: false}
	}
	return Response{}
}

// Responder delivers a response to the call-screening boundary. d is the
// decision r was committed from, passed along so hosts can report why.
type Responder interface {
	Respond(ctx context.Context, ev model.CallEvent, d model.Decision, r Response) error
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, ev model.CallEvent, d model.Decision, r Response) error

// Respond calls f.
func (f ResponderFunc) Respond(ctx context.Context, ev model.CallEvent, d model.Decision, r Response) error {
	return f(ctx, ev, d, r)
}
