package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rcliao/callguard/internal/fallback"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Show the fallback blocked-call log",
		Long:  "Show entries written to the fallback store while the database was failing. Malformed entries are shown as-is.",
		Run:   runFallback,
	}

	RootCmd.AddCommand(cmd)
}

func runFallback(cmd *cobra.Command, args []string) {
	kv, err := openFallback(cmd.Context())
	if err != nil {
		exitErr("open fallback", err)
	}
	defer kv.Close()

	entries, err := kv.Members(cmd.Context(), fallback.Namespace, fallback.LogsKey)
	if err != nil {
		exitErr("read fallback", err)
	}

	lines := fallback.FormatEntries(entries, time.Local)
	if formatFlag == "text" {
		if len(lines) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No blocked calls yet")
			return
		}
		for _, l := range lines {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
		return
	}

	b, _ := json.MarshalIndent(lines, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
