package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of blocked calls",
		Run:   runCount,
	}

	RootCmd.AddCommand(cmd, count)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.DBPath)
	if err != nil {
		exitErr("stats", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func runCount(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Count(cmd.Context())
	if err != nil {
		exitErr("count", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"count":%d}`+"\n", n)
}
