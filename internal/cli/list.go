package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/callguard/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blocked calls, most recent first",
		Long:  "List blocked calls from the database and the fallback log, most recent first.",
		Run:   runList,
	}

	cmd.Flags().IntP("limit", "l", 20, "Max results (0 for all)")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	p, err := openPipeline(cmd.Context())
	if err != nil {
		exitErr("open log", err)
	}
	defer p.Close()

	calls, err := p.log.ListRecent(cmd.Context(), limit)
	if err != nil {
		// Partial results are still worth showing.
		logger.Warn("blocked call list incomplete", slog.String("error", err.Error()))
	}

	if formatFlag == "text" {
		for _, c := range calls {
			name := c.CallerName
			if name == "" {
				name = model.UnknownCaller
			}
			when := time.UnixMilli(c.Timestamp).Format("01/02 15:04")
			fmt.Fprintf(cmd.OutOrStdout(), "%s - %s (%s) [%s]\n", when, name, c.PhoneNumber, c.Source)
		}
		return
	}

	if calls == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return
	}
	b, _ := json.MarshalIndent(calls, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
