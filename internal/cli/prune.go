package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/callguard/internal/retention"
)

func init() {
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Run the retention sweep now",
		Long:  "Delete blocked calls older than the retention age, if the log is over its size threshold.",
		Run:   runPrune,
	}

	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete every blocked call (irreversible)",
		Run:   runPurge,
	}
	purge.Flags().Bool("yes", false, "Confirm the purge")
	purge.MarkFlagRequired("yes")

	RootCmd.AddCommand(prune, purge)
}

func runPrune(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rm := retention.NewManager(s, cfg.Retention, logger)
	n, err := rm.MaybePrune(cmd.Context())
	if err != nil {
		exitErr("prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"pruned":%d}`+"\n", n)
}

func runPurge(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Purge(cmd.Context())
	if err != nil {
		exitErr("purge", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"deleted":%d}`+"\n", n)
}
