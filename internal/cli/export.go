package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export blocked calls as JSON",
		Long:  "Export every blocked call in the database as a JSON array, oldest first.",
		Run:   runExport,
	}

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	calls, err := s.ExportAll(cmd.Context())
	if err != nil {
		exitErr("export", err)
	}
	if calls == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "[]")
		return
	}

	b, _ := json.MarshalIndent(calls, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
