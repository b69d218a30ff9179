package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one blocked call",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		exitErr("get", fmt.Errorf("invalid id %q", args[0]))
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	c, err := s.Get(cmd.Context(), id)
	if err != nil {
		exitErr("get", err)
	}

	b, _ := json.Marshal(c)
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
