package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rcliao/callguard/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import blocked calls from JSON",
		Long:  "Import blocked calls from JSON on stdin, in the format produced by export. Ids are reassigned.",
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

func runImport(cmd *cobra.Command, args []string) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		exitErr("read stdin", err)
	}

	var calls []model.BlockedCall
	if err := json.Unmarshal(data, &calls); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore(cmd.Context())
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	imported, err := s.Import(cmd.Context(), calls)
	if err != nil {
		exitErr("import", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"imported":%d}`+"\n", imported)
}
