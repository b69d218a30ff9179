package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/rcliao/callguard/internal/model"
	"github.com/rcliao/callguard/internal/recorder"
	"github.com/rcliao/callguard/internal/screen"
)

func init() {
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen one call",
		Long:  "Screen one inbound call, print the response for the call-screening boundary, and log it if blocked.",
		Run:   runScreen,
	}

	cmd.Flags().String("name", "", "Caller display name (may be empty)")
	cmd.Flags().String("number", "", "Caller number (may be empty)")
	cmd.Flags().String("id", "", "Call id (default: generated)")

	RootCmd.AddCommand(cmd)
}

// screenResult is one line written back to the host.
type screenResult struct {
	CallID   string          `json:"call_id"`
	Number   string          `json:"number,omitempty"`
	Name     string          `json:"name,omitempty"`
	Decision *model.Decision `json:"decision,omitempty"`
	Response screen.Response `json:"response"`
}

// jsonResponder writes one JSON line per response. Safe for concurrent use.
type jsonResponder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newJSONResponder(w io.Writer) *jsonResponder {
	return &jsonResponder{enc: json.NewEncoder(w)}
}

func (j *jsonResponder) Respond(ctx context.Context, ev model.CallEvent, d model.Decision, r screen.Response) error {
	return j.write(screenResult{CallID: ev.ID, Number: ev.Number, Name: ev.Name, Decision: &d, Response: r})
}

func (j *jsonResponder) write(v screenResult) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.enc.Encode(v)
}

func runScreen(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("name")
	number, _ := cmd.Flags().GetString("number")
	id, _ := cmd.Flags().GetString("id")
	ctx := cmd.Context()

	p, err := openPipeline(ctx)
	if err != nil {
		exitErr("open log", err)
	}
	defer p.Close()

	rec := recorder.New(p.log, recorder.Options{QueueSize: cfg.QueueSize, Workers: 1}, logger)
	rec.Start(ctx)

	var result screenResult
	responder := screen.ResponderFunc(func(ctx context.Context, ev model.CallEvent, d model.Decision, r screen.Response) error {
		result = screenResult{CallID: ev.ID, Number: ev.Number, Name: ev.Name, Decision: &d, Response: r}
		return nil
	})

	s := screen.NewScreener(openSettings(), responder, rec, logger)
	d, err := s.Screen(ctx, model.CallEvent{ID: id, Name: name, Number: number})
	rec.Stop()
	if err != nil {
		exitErr("screen", err)
	}

	if formatFlag == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s (%s)\n", d.Action, d.Reason, number, name)
		return
	}
	b, _ := json.Marshal(result)
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
